// Package auth derives the caller's identity from the session cookie and
// turns missing or stale identities into redirects.
package auth

import (
	"context"
	"net/http"

	"github.com/and161185/jokes/internal/model"
	"github.com/and161185/jokes/internal/session"
	"github.com/and161185/jokes/internal/web"
	"github.com/gofrs/uuid/v5"
)

// DefaultLoginPath is where unauthenticated users are sent.
const DefaultLoginPath = "/login"

// UserLoader loads the user referenced by a session.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Gate resolves identities from requests. It keeps no per-request state.
type Gate struct {
	codec     *session.Codec
	users     UserLoader
	loginPath string
}

// NewGate constructs a Gate. An empty loginPath means DefaultLoginPath.
func NewGate(codec *session.Codec, users UserLoader, loginPath string) *Gate {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &Gate{codec: codec, users: users, loginPath: loginPath}
}

// LoginPath returns the login route used for redirects.
func (g *Gate) LoginPath() string { return g.loginPath }

// GetUserID returns the session's user id. It never redirects.
func (g *Gate) GetUserID(r *http.Request) (uuid.UUID, bool) {
	raw, ok := g.codec.Decode(r).UserID()
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.FromString(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// RequireUserSession returns the session's user id, or a redirect to the
// login page that the caller must return as-is. An empty redirectTo means
// the request path.
func (g *Gate) RequireUserSession(r *http.Request, redirectTo string) (uuid.UUID, web.Result) {
	if redirectTo == "" {
		redirectTo = r.URL.Path
	}
	id, ok := g.GetUserID(r)
	if !ok {
		return uuid.Nil, web.LoginRedirect(g.loginPath, redirectTo)
	}
	return id, nil
}

// CreateUserSession starts a session for userID and redirects to redirectTo.
func (g *Gate) CreateUserSession(userID uuid.UUID, redirectTo string) (web.Result, error) {
	s := session.New()
	s.SetUserID(userID.String())
	ck, err := g.codec.Encode(s)
	if err != nil {
		return nil, err
	}
	return web.RedirectTo(redirectTo, ck), nil
}

// Logout destroys the session and redirects to the login page. When the
// request carries no session cookie there is nothing to destroy and ok is false.
func (g *Gate) Logout(r *http.Request) (res web.Result, ok bool) {
	if !g.codec.Present(r) {
		return nil, false
	}
	return web.RedirectTo(g.loginPath, g.codec.Destroy()), true
}

// GetUser loads the signed-in user. Anonymous requests get (nil, nil).
// If the referenced user cannot be loaded the session is treated as stale
// and the logout redirect is returned as the exit result.
func (g *Gate) GetUser(ctx context.Context, r *http.Request) (*model.User, web.Result) {
	id, ok := g.GetUserID(r)
	if !ok {
		return nil, nil
	}
	u, err := g.users.GetByID(ctx, id)
	if err != nil {
		res, _ := g.Logout(r)
		return nil, res
	}
	return u, nil
}
