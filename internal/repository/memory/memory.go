// Package memory contains in-process implementations of repository interfaces.
// It backs the server when no database DSN is configured and is used by tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/and161185/jokes/internal/errs"
	"github.com/and161185/jokes/internal/model"
	"github.com/gofrs/uuid/v5"
)

// Store keeps users and jokes in maps guarded by a single mutex.
type Store struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
	jokes map[uuid.UUID]model.Joke
	now   func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users: make(map[uuid.UUID]model.User),
		jokes: make(map[uuid.UUID]model.Joke),
		now:   time.Now,
	}
}

// Users returns the store as a repository.UserRepository.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Jokes returns the store as a repository.JokeRepository.
func (s *Store) Jokes() *JokeRepo { return &JokeRepo{s: s} }

// DeleteUser removes a user and, like the SQL schema's ON DELETE CASCADE,
// every joke that references it.
func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.users, id)
	for jid, j := range s.jokes {
		if j.UserID == id {
			delete(s.jokes, jid)
		}
	}
	return nil
}

// UserRepo implements repository.UserRepository over a Store.
type UserRepo struct{ s *Store }

// Create inserts a user; usernames are unique.
func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return errs.ErrAlreadyExists
		}
	}
	u.CreatedAt = r.s.now()
	r.s.users[u.ID] = *u
	return nil
}

// GetByID loads a user by ID.
func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

// GetByUsername loads a user by username.
func (r *UserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, errs.ErrNotFound
}

// JokeRepo implements repository.JokeRepository over a Store.
type JokeRepo struct{ s *Store }

// Create inserts a joke. The owner must exist.
func (r *JokeRepo) Create(_ context.Context, j *model.Joke) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[j.UserID]; !ok {
		return errs.ErrNotFound
	}
	j.CreatedAt = r.s.now()
	r.s.jokes[j.ID] = *j
	return nil
}

// Get returns a joke by ID.
func (r *JokeRepo) Get(_ context.Context, id uuid.UUID) (*model.Joke, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	j, ok := r.s.jokes[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &j, nil
}

// Delete removes a joke by ID.
func (r *JokeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.jokes[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.s.jokes, id)
	return nil
}

// Count returns the number of jokes.
func (r *JokeRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.jokes), nil
}

// AtOffset returns the joke at offset ordered by creation time, then ID.
func (r *JokeRepo) AtOffset(_ context.Context, offset int) (*model.Joke, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := r.sorted(false)
	if offset < 0 || offset >= len(all) {
		return nil, errs.ErrNotFound
	}
	j := all[offset]
	return &j, nil
}

// ListRecent returns up to limit jokes, newest first.
func (r *JokeRepo) ListRecent(_ context.Context, limit int) ([]model.JokeListItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := r.sorted(true)
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]model.JokeListItem, 0, len(all))
	for _, j := range all {
		out = append(out, model.JokeListItem{ID: j.ID, Name: j.Name})
	}
	return out, nil
}

// sorted must be called with the read lock held.
func (r *JokeRepo) sorted(newestFirst bool) []model.Joke {
	all := make([]model.Joke, 0, len(r.s.jokes))
	for _, j := range r.s.jokes {
		all = append(all, j)
	}
	sort.Slice(all, func(a, b int) bool {
		ja, jb := all[a], all[b]
		if !ja.CreatedAt.Equal(jb.CreatedAt) {
			if newestFirst {
				return ja.CreatedAt.After(jb.CreatedAt)
			}
			return ja.CreatedAt.Before(jb.CreatedAt)
		}
		return ja.ID.String() < jb.ID.String()
	})
	return all
}
