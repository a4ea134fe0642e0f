package httpserver

import (
	"bytes"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/and161185/jokes/internal/web"
)

// handlerFunc is the shape of every route handler.
type handlerFunc func(r *http.Request) web.Result

// handle adapts a handlerFunc to net/http by writing its result.
func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.write(w, r, h(r))
	}
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, res web.Result) {
	switch res := res.(type) {
	case *web.Redirect:
		for _, c := range res.Cookies {
			http.SetCookie(w, c)
		}
		http.Redirect(w, r, res.Location, http.StatusFound)
	case *web.Page:
		status := res.Status
		if status == 0 {
			status = http.StatusOK
		}
		s.render(w, r, status, res.Template, res.Data, res.Cookies)
	case *web.Failure:
		if res.Status >= http.StatusInternalServerError {
			s.log.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", res.Status),
				zap.String("request_id", chimw.GetReqID(r.Context())),
				zap.Error(res.Err),
			)
		}
		s.render(w, r, res.Status, "error", view{Message: res.Message}, nil)
	default:
		s.log.Error("handler returned no result", zap.String("path", r.URL.Path))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any, cookies []*http.Cookie) {
	t, ok := s.pages[name]
	if !ok {
		s.log.Error("unknown template", zap.String("template", name), zap.String("path", r.URL.Path))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.log.Error("render", zap.String("template", name), zap.Error(err))
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	for _, c := range cookies {
		http.SetCookie(w, c)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
