// Package session converts between the signed "__session" cookie and an
// in-memory Session. The cookie value is a compact HS256 JWS; anything that
// fails to verify decodes to an empty session.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the name of the session cookie.
const CookieName = "__session"

// Defaults applied by NewCodec for zero Options fields.
const (
	DefaultPath   = "/jokes"
	DefaultMaxAge = time.Hour
)

// ErrNoSecret is returned by NewCodec when the signing secret is empty.
var ErrNoSecret = errors.New("session: signing secret is not set")

// Options fixes the cookie attributes. HttpOnly and SameSite=Lax are always set.
type Options struct {
	Path   string
	MaxAge time.Duration
	Secure bool
}

// Codec signs and verifies session cookies with a server-held secret.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	secret []byte
	opts   Options
	now    func() time.Time
}

type claims struct {
	UserID string `json:"uid,omitempty"`
	Flash  string `json:"flash,omitempty"`
	jwt.RegisteredClaims
}

// NewCodec returns a codec for secret. It fails if secret is empty.
func NewCodec(secret []byte, opts Options) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Codec{secret: key, opts: opts, now: time.Now}, nil
}

// Options returns the cookie attributes used by the codec.
func (c *Codec) Options() Options { return c.opts }

// Present reports whether the request carries a session cookie at all,
// regardless of whether it verifies.
func (c *Codec) Present(r *http.Request) bool {
	_, err := r.Cookie(CookieName)
	return err == nil
}

// Decode reads the session from the request. Absent, malformed, tampered or
// expired cookies yield an empty session.
func (c *Codec) Decode(r *http.Request) *Session {
	ck, err := r.Cookie(CookieName)
	if err != nil {
		return &Session{}
	}
	return c.DecodeValue(ck.Value)
}

// DecodeValue verifies a raw cookie value. It never returns nil.
func (c *Codec) DecodeValue(value string) *Session {
	if value == "" {
		return &Session{}
	}
	var cl claims
	tok, err := jwt.ParseWithClaims(value, &cl,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !tok.Valid {
		return &Session{}
	}
	return &Session{userID: cl.UserID, flash: cl.Flash}
}

// Encode signs s into a Set-Cookie value. A flash message that has already
// been read is not carried forward.
func (c *Codec) Encode(s *Session) (*http.Cookie, error) {
	now := c.now()
	cl := claims{
		UserID: s.userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.opts.MaxAge)),
		},
	}
	if !s.flashRead {
		cl.Flash = s.flash
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	if err != nil {
		return nil, err
	}
	ck := c.cookie(signed)
	ck.MaxAge = int(c.opts.MaxAge / time.Second)
	ck.Expires = now.Add(c.opts.MaxAge)
	return ck, nil
}

// Destroy returns a cookie that makes the browser drop the session.
func (c *Codec) Destroy() *http.Cookie {
	ck := c.cookie("")
	ck.MaxAge = -1
	ck.Expires = time.Unix(0, 0)
	return ck
}

func (c *Codec) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     c.opts.Path,
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
