package postgres

import (
	"context"
	"fmt"

	"github.com/and161185/jokes/internal/errs"
	"github.com/and161185/jokes/internal/model"
	"github.com/gofrs/uuid/v5"
)

// JokeRepo implements JokeRepository using PostgreSQL.
type JokeRepo struct{ db *DB }

// NewJokeRepo constructs a joke repository.
func NewJokeRepo(db *DB) *JokeRepo { return &JokeRepo{db: db} }

// Create inserts a joke and fills CreatedAt from the database.
func (r *JokeRepo) Create(ctx context.Context, j *model.Joke) error {
	const q = `INSERT INTO jokes (id, name, content, user_id) VALUES ($1, $2, $3, $4) RETURNING created_at`
	if err := r.db.Pool.QueryRow(ctx, q, j.ID, j.Name, j.Content, j.UserID).Scan(&j.CreatedAt); err != nil {
		return fmt.Errorf("insert joke: %w", err)
	}
	return nil
}

// Get selects a joke by ID.
func (r *JokeRepo) Get(ctx context.Context, id uuid.UUID) (*model.Joke, error) {
	const q = `SELECT id, name, content, user_id, created_at FROM jokes WHERE id=$1`
	var j model.Joke
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&j.ID, &j.Name, &j.Content, &j.UserID, &j.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, errs.ErrNotFound)
	}
	return &j, nil
}

// Delete removes a joke; a missing row is reported as errs.ErrNotFound.
func (r *JokeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM jokes WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete joke: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Count returns the number of jokes.
func (r *JokeRepo) Count(ctx context.Context) (int, error) {
	const q = `SELECT count(*) FROM jokes`
	var n int
	if err := r.db.Pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count jokes: %w", err)
	}
	return n, nil
}

// AtOffset returns the joke at position offset ordered by creation time.
func (r *JokeRepo) AtOffset(ctx context.Context, offset int) (*model.Joke, error) {
	const q = `SELECT id, name, content, user_id, created_at FROM jokes ORDER BY created_at, id LIMIT 1 OFFSET $1`
	var j model.Joke
	err := r.db.Pool.QueryRow(ctx, q, offset).Scan(&j.ID, &j.Name, &j.Content, &j.UserID, &j.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, errs.ErrNotFound)
	}
	return &j, nil
}

// ListRecent returns the newest jokes first.
func (r *JokeRepo) ListRecent(ctx context.Context, limit int) ([]model.JokeListItem, error) {
	const q = `SELECT id, name FROM jokes ORDER BY created_at DESC, id LIMIT $1`
	rows, err := r.db.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list jokes: %w", err)
	}
	defer rows.Close()

	out := make([]model.JokeListItem, 0, limit)
	for rows.Next() {
		var it model.JokeListItem
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
