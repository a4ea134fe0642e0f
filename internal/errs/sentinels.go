// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service/http layers.
var (
	// ErrNotFound indicates the requested entity does not exist (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the caller is authenticated but does not own the entity (HTTP 403).
	ErrForbidden = errors.New("forbidden")

	// ErrBadRequest indicates malformed input or an unsupported intent (HTTP 400).
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized indicates a missing session where one is required.
	// It is realized as a redirect to the login page, never as a 401 body.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to repeated failures.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (username taken).
	ErrAlreadyExists = errors.New("already exists")
)
