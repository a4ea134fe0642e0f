// Package service contains application services for accounts and jokes.
package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	pkgcrypto "github.com/and161185/jokes/internal/crypto"
	"github.com/and161185/jokes/internal/errs"
	"github.com/and161185/jokes/internal/limiter"
	"github.com/and161185/jokes/internal/model"
	"github.com/and161185/jokes/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// Minimum credential lengths accepted by the login form.
const (
	MinUsernameLen = 3
	MinPasswordLen = 6
)

// AuthService registers and authenticates users.
type AuthService interface {
	// Register creates a new user with a hashed password.
	Register(ctx context.Context, username, password string) (uuid.UUID, error)
	// Login verifies credentials. ok is false for an unknown user and for a
	// wrong password alike.
	Login(ctx context.Context, username, password, client string) (userID uuid.UUID, ok bool, err error)
}

type AuthServiceImpl struct {
	users repository.UserRepository
	lim   limiter.Limiter
}

// NewAuthService constructs AuthService. A nil limiter disables throttling.
func NewAuthService(users repository.UserRepository, lim limiter.Limiter) *AuthServiceImpl {
	if lim == nil {
		lim = limiter.Nop{}
	}
	return &AuthServiceImpl{users: users, lim: lim}
}

// ValidateUsername returns a field error message or "".
func ValidateUsername(username string) string {
	if utf8.RuneCountInString(username) < MinUsernameLen {
		return "Usernames must be at least 3 characters long"
	}
	return ""
}

// ValidatePassword returns a field error message or "".
func ValidatePassword(password string) string {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return "Passwords must be at least 6 characters long"
	}
	return ""
}

// Register stores a new user. errs.ErrAlreadyExists is returned when the
// username is taken.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (uuid.UUID, error) {
	if username == "" || password == "" {
		return uuid.Nil, fmt.Errorf("empty username/password: %w", errs.ErrBadRequest)
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	hash, err := pkgcrypto.HashPassword([]byte(password))
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{ID: uid, Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return uuid.Nil, err
	}
	return uid, nil
}

// Login authenticates with throttling by (username, client).
func (s *AuthServiceImpl) Login(ctx context.Context, username, password, client string) (uuid.UUID, bool, error) {
	clientHash := limiter.HashClient(client)

	allowed, _, err := s.lim.Allow(ctx, username, clientHash)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("login throttle: %w", err)
	}
	if !allowed {
		return uuid.Nil, false, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return uuid.Nil, false, err
	}
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.PasswordHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, username, clientHash); ferr == nil && blocked {
			return uuid.Nil, false, errs.ErrRateLimited
		}
		return uuid.Nil, false, nil
	}

	// best-effort reset
	_ = s.lim.Success(ctx, username, clientHash)
	return u.ID, true, nil
}
