// Package httpserver serves the HTML joke board over chi.
package httpserver

import (
	"context"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/and161185/jokes/internal/auth"
	"github.com/and161185/jokes/internal/service"
)

// Deps wires the server to its services.
type Deps struct {
	Log   *zap.Logger
	Gate  *auth.Gate
	Auth  service.AuthService
	Jokes service.JokeService
	// Health is checked by /healthz when set.
	Health func(ctx context.Context) error
}

// Server routes requests to handlers returning web.Result values.
type Server struct {
	router *chi.Mux
	log    *zap.Logger
	gate   *auth.Gate
	auth   service.AuthService
	jokes  service.JokeService
	health func(ctx context.Context) error
	pages  map[string]*template.Template
}

// New builds the router.
func New(d Deps) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		router: chi.NewRouter(),
		log:    log,
		gate:   d.Gate,
		auth:   d.Auth,
		jokes:  d.Jokes,
		health: d.Health,
		pages:  pages,
	}

	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(Logging(log))
	s.router.Use(Recover(log))

	s.router.Get("/", s.handle(s.index))
	s.router.Get("/healthz", s.healthz)
	s.router.Get("/login", s.handle(s.loginForm))
	s.router.Post("/login", s.handle(s.login))

	s.router.Route("/jokes", func(r chi.Router) {
		r.Get("/", s.handle(s.randomJoke))
		r.Get("/new", s.handle(s.newJokeForm))
		r.Post("/new", s.handle(s.createJoke))
		r.Post("/logout", s.handle(s.logout))
		r.Get("/{id}", s.handle(s.showJoke))
		r.Post("/{id}", s.handle(s.jokeAction))
	})

	s.router.NotFound(s.handle(s.notFound))
	return s, nil
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.log.Warn("health check failed", zap.Error(err))
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
