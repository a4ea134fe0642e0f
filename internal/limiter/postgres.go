package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of a pgx pool the limiter needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PG is a PostgreSQL-backed limiter shared by every server instance.
type PG struct {
	q      Querier
	policy Policy
	now    func() time.Time
}

// NewPG constructs a PostgreSQL-backed limiter over the login_attempts table.
func NewPG(q Querier, p Policy) *PG {
	return &PG{q: q, policy: p, now: time.Now}
}

// Allow reports whether the pair is currently unblocked.
func (l *PG) Allow(ctx context.Context, username string, client []byte) (bool, time.Duration, error) {
	const q = `SELECT blocked_until FROM login_attempts WHERE username=$1 AND client_hash=$2`
	var blockedUntil time.Time
	err := l.q.QueryRow(ctx, q, username, client).Scan(&blockedUntil)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return true, 0, nil
	case err != nil:
		return false, 0, err
	}
	now := l.now()
	if blockedUntil.After(now) {
		return false, blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success removes the pair's record.
func (l *PG) Success(ctx context.Context, username string, client []byte) error {
	const q = `DELETE FROM login_attempts WHERE username=$1 AND client_hash=$2`
	_, err := l.q.Exec(ctx, q, username, client)
	return err
}

// Failure increments the failure counter, restarting it when the window has
// elapsed, and blocks the pair once the threshold is reached.
func (l *PG) Failure(ctx context.Context, username string, client []byte) (bool, time.Duration, error) {
	const q = `
INSERT INTO login_attempts (username, client_hash, failures, window_start)
VALUES ($1, $2, 1, $3)
ON CONFLICT (username, client_hash) DO UPDATE SET
  failures = CASE WHEN login_attempts.window_start < $4 THEN 1 ELSE login_attempts.failures + 1 END,
  window_start = CASE WHEN login_attempts.window_start < $4 THEN $3 ELSE login_attempts.window_start END
RETURNING failures`
	now := l.now()
	var failures int
	if err := l.q.QueryRow(ctx, q, username, client, now, now.Add(-l.policy.Window)).Scan(&failures); err != nil {
		return false, 0, err
	}
	if failures < l.policy.MaxFails {
		return false, 0, nil
	}

	const block = `UPDATE login_attempts SET blocked_until=$3, failures=0, window_start=$4 WHERE username=$1 AND client_hash=$2`
	if _, err := l.q.Exec(ctx, block, username, client, now.Add(l.policy.BlockFor), now); err != nil {
		return false, 0, err
	}
	return true, l.policy.BlockFor, nil
}
