// Package limiter throttles repeated failed logins per (username, client).
package limiter

import (
	"context"
	"crypto/sha256"
	"time"
)

// Limiter controls login attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether a login attempt may proceed and, if not, how long to wait.
	Allow(ctx context.Context, username string, client []byte) (bool, time.Duration, error)
	// Success clears recorded failures after a successful login.
	Success(ctx context.Context, username string, client []byte) error
	// Failure records a failed attempt and reports whether the pair is now blocked.
	Failure(ctx context.Context, username string, client []byte) (bool, time.Duration, error)
}

// Policy describes the sliding window and lockout.
type Policy struct {
	Window   time.Duration
	MaxFails int
	BlockFor time.Duration
}

// Enabled reports whether the policy throttles anything.
func (p Policy) Enabled() bool { return p.MaxFails > 0 }

// HashClient returns a stable hash of a client address so raw IPs are not stored.
func HashClient(addr string) []byte {
	h := sha256.Sum256([]byte(addr))
	return h[:]
}

// Nop never throttles.
type Nop struct{}

func (Nop) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	return true, 0, nil
}

func (Nop) Success(context.Context, string, []byte) error { return nil }

func (Nop) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	return false, 0, nil
}
