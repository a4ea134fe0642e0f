package postgres

import (
	"context"
	"fmt"

	"github.com/and161185/jokes/internal/errs"
	"github.com/and161185/jokes/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `INSERT INTO users (id, username, password_hash) VALUES ($1, $2, $3) RETURNING created_at`
	err := r.db.Pool.QueryRow(ctx, q, u.ID, u.Username, u.PasswordHash).Scan(&u.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT id, username, password_hash, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, errs.ErrNotFound)
	}
	return &u, nil
}

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT id, username, password_hash, created_at FROM users WHERE username=$1`
	var u model.User
	err := r.db.Pool.QueryRow(ctx, q, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, errs.ErrNotFound)
	}
	return &u, nil
}
