// Package repository declares the storage ports used by the services.
// Implementations live in the postgres and memory subpackages and report
// missing rows as errs.ErrNotFound.
package repository

import (
	"context"

	"github.com/and161185/jokes/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository stores accounts. Users are write-once.
type UserRepository interface {
	// Create inserts u and fills CreatedAt. A taken username yields errs.ErrAlreadyExists.
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// JokeRepository stores jokes. Calls are independent; no multi-statement
// transactions are exposed.
type JokeRepository interface {
	// Create inserts j and fills CreatedAt.
	Create(ctx context.Context, j *model.Joke) error
	Get(ctx context.Context, id uuid.UUID) (*model.Joke, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
	// AtOffset returns the joke at offset in (created_at, id) order.
	AtOffset(ctx context.Context, offset int) (*model.Joke, error)
	// ListRecent returns up to limit jokes, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.JokeListItem, error)
}
