package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"

	"github.com/and161185/jokes/internal/errs"
	"github.com/and161185/jokes/internal/service"
	"github.com/and161185/jokes/internal/web"
)

const (
	jokesPath    = "/jokes"
	intentKey    = "intent"
	intentDelete = "delete"
)

func (s *Server) index(*http.Request) web.Result {
	return web.Render("index", view{})
}

func (s *Server) notFound(*http.Request) web.Result {
	return web.Fail(http.StatusNotFound, "Not found")
}

// jokesView resolves the header user and the sidebar list shared by every
// page under /jokes. A non-nil result must be returned as-is.
func (s *Server) jokesView(r *http.Request) (view, web.Result) {
	u, res := s.gate.GetUser(r.Context(), r)
	if res != nil {
		return view{}, res
	}
	list, err := s.jokes.List(r.Context(), service.DefaultListLimit)
	if err != nil {
		return view{}, web.Internal(err)
	}
	return view{User: u, JokesSection: true, Jokes: list}, nil
}

func jokesPage(status int, tmpl string, v view) *web.Page {
	return &web.Page{Status: status, Template: tmpl, Data: v}
}

func (s *Server) randomJoke(r *http.Request) web.Result {
	v, res := s.jokesView(r)
	if res != nil {
		return res
	}
	j, err := s.jokes.Random(r.Context())
	switch {
	case errors.Is(err, errs.ErrNotFound):
		v.Message = "No jokes to display"
		return jokesPage(http.StatusNotFound, "error", v)
	case err != nil:
		return web.Internal(err)
	}
	v.Joke = j
	return jokesPage(http.StatusOK, "random", v)
}

func (s *Server) showJoke(r *http.Request) web.Result {
	v, res := s.jokesView(r)
	if res != nil {
		return res
	}
	raw := chi.URLParam(r, "id")
	notFound := func() web.Result {
		v.Message = raw + " not found"
		return jokesPage(http.StatusNotFound, "error", v)
	}

	id, err := uuid.FromString(raw)
	if err != nil {
		return notFound()
	}
	j, err := s.jokes.Get(r.Context(), id)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return notFound()
	case err != nil:
		return web.Internal(err)
	}
	uid, _ := s.gate.GetUserID(r)
	v.Joke = j
	v.IsOwner = j.OwnedBy(uid)
	return jokesPage(http.StatusOK, "joke", v)
}

// jokeAction handles form posts to a joke page. The intent is checked before
// the session so unsupported operations fail the same way for everyone.
func (s *Server) jokeAction(r *http.Request) web.Result {
	if err := r.ParseForm(); err != nil {
		return web.Fail(http.StatusBadRequest, "Not allowed")
	}
	if r.PostForm.Get(intentKey) != intentDelete {
		return web.Fail(http.StatusBadRequest, "Not allowed")
	}
	uid, res := s.gate.RequireUserSession(r, "")
	if res != nil {
		return res
	}

	raw := chi.URLParam(r, "id")
	id, err := uuid.FromString(raw)
	if err != nil {
		return web.Fail(http.StatusNotFound, raw+" not found")
	}
	err = s.jokes.Delete(r.Context(), uid, id)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return web.Fail(http.StatusNotFound, raw+" not found")
	case errors.Is(err, errs.ErrForbidden):
		return web.Fail(http.StatusForbidden, "Forbidden")
	case err != nil:
		return web.Internal(err)
	}
	return web.RedirectTo(jokesPath)
}

func (s *Server) newJokeForm(r *http.Request) web.Result {
	if _, res := s.gate.RequireUserSession(r, ""); res != nil {
		return res
	}
	v, res := s.jokesView(r)
	if res != nil {
		return res
	}
	return jokesPage(http.StatusOK, "new", v)
}

func (s *Server) createJoke(r *http.Request) web.Result {
	uid, res := s.gate.RequireUserSession(r, "")
	if res != nil {
		return res
	}
	v, res := s.jokesView(r)
	if res != nil {
		return res
	}

	if err := r.ParseForm(); err != nil {
		v.Form.FormError = "Form submitted incorrectly"
		return jokesPage(http.StatusBadRequest, "new", v)
	}
	name, okName := formValue(r, "name")
	content, okContent := formValue(r, "content")
	if !okName || !okContent {
		v.Form.FormError = "Form submitted incorrectly"
		return jokesPage(http.StatusBadRequest, "new", v)
	}

	j, err := s.jokes.Create(r.Context(), uid, name, content)
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		v.Form.FieldErrors = ve.FieldErrors
		v.Form.Fields = map[string]string{"name": name, "content": content}
		return jokesPage(http.StatusBadRequest, "new", v)
	case err != nil:
		return web.Internal(err)
	}
	return web.RedirectTo(jokesPath + "/" + j.ID.String())
}

func (s *Server) logout(r *http.Request) web.Result {
	res, ok := s.gate.Logout(r)
	if !ok {
		return web.RedirectTo("/")
	}
	return res
}

// formValue reports whether key was submitted at all, unlike PostForm.Get.
func formValue(r *http.Request, key string) (string, bool) {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
