package httpserver

import (
	"errors"
	"net"
	"net/http"
	"path"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/jokes/internal/errs"
	"github.com/and161185/jokes/internal/service"
	"github.com/and161185/jokes/internal/web"
)

const (
	loginTypeLogin    = "login"
	loginTypeRegister = "register"
)

// safeRedirect keeps post-login redirects on this site. Browsers treat `\`
// as `/` and drop tabs and newlines, so those never pass. The result is
// cleaned here, as http.Redirect would, and Clean collapses repeated slashes.
func safeRedirect(to string) string {
	if !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//") {
		return jokesPath
	}
	for _, c := range to {
		if c == '\\' || c < 0x20 || c == 0x7f {
			return jokesPath
		}
	}
	return path.Clean(to)
}

// clientAddr returns the caller's IP without the port. RealIP has already
// rewritten RemoteAddr from forwarding headers.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) loginForm(r *http.Request) web.Result {
	return web.Render("login", view{RedirectTo: safeRedirect(r.URL.Query().Get("redirectTo"))})
}

func (s *Server) login(r *http.Request) web.Result {
	v := view{}
	badForm := func(msg string) web.Result {
		v.Form.FormError = msg
		return &web.Page{Status: http.StatusBadRequest, Template: "login", Data: v}
	}

	if err := r.ParseForm(); err != nil {
		return badForm("Form submitted incorrectly")
	}
	v.RedirectTo = safeRedirect(r.PostForm.Get("redirectTo"))
	loginType, ok1 := formValue(r, "loginType")
	username, ok2 := formValue(r, "username")
	password, ok3 := formValue(r, "password")
	if !ok1 || !ok2 || !ok3 {
		return badForm("Form submitted incorrectly")
	}
	v.Form.Fields = map[string]string{"loginType": loginType, "username": username}

	fe := map[string]string{}
	if msg := service.ValidateUsername(username); msg != "" {
		fe["username"] = msg
	}
	if msg := service.ValidatePassword(password); msg != "" {
		fe["password"] = msg
	}
	if len(fe) > 0 {
		v.Form.FieldErrors = fe
		return &web.Page{Status: http.StatusBadRequest, Template: "login", Data: v}
	}

	switch loginType {
	case loginTypeLogin:
		uid, ok, err := s.auth.Login(r.Context(), username, password, clientAddr(r))
		switch {
		case errors.Is(err, errs.ErrRateLimited):
			v.Form.FormError = "Too many failed attempts, try again later"
			return &web.Page{Status: http.StatusTooManyRequests, Template: "login", Data: v}
		case err != nil:
			return web.Internal(err)
		case !ok:
			return badForm("Username/Password combination is incorrect")
		}
		return s.startSession(uid, v.RedirectTo)
	case loginTypeRegister:
		uid, err := s.auth.Register(r.Context(), username, password)
		switch {
		case errors.Is(err, errs.ErrAlreadyExists):
			return badForm("User with username " + username + " already exists")
		case err != nil:
			return web.Internal(err)
		}
		return s.startSession(uid, v.RedirectTo)
	default:
		return badForm("Login type invalid")
	}
}

func (s *Server) startSession(uid uuid.UUID, redirectTo string) web.Result {
	res, err := s.gate.CreateUserSession(uid, redirectTo)
	if err != nil {
		return web.Internal(err)
	}
	return res
}
