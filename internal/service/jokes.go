package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/and161185/jokes/internal/errs"
	"github.com/and161185/jokes/internal/model"
	"github.com/and161185/jokes/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// Minimum joke field lengths, in characters.
const (
	MinJokeNameLen    = 3
	MinJokeContentLen = 10
)

// DefaultListLimit bounds the sidebar listing.
const DefaultListLimit = 20

// JokeService defines operations over jokes.
type JokeService interface {
	// Random returns a uniformly chosen joke.
	Random(ctx context.Context) (*model.Joke, error)
	// Get returns a joke by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Joke, error)
	// List returns the newest jokes.
	List(ctx context.Context, limit int) ([]model.JokeListItem, error)
	// Create validates and stores a joke owned by userID.
	Create(ctx context.Context, userID uuid.UUID, name, content string) (*model.Joke, error)
	// Delete removes a joke if userID owns it.
	Delete(ctx context.Context, userID, jokeID uuid.UUID) error
}

// ValidationError carries per-field messages for a rejected joke form.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error lists the field errors ordered by field name.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.FieldErrors))
	for k := range e.FieldErrors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.FieldErrors[k])
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return errs.ErrBadRequest }

// ValidateJokeName returns a field error message or "".
func ValidateJokeName(name string) string {
	if utf8.RuneCountInString(name) < MinJokeNameLen {
		return "Name is too short"
	}
	return ""
}

// ValidateJokeContent returns a field error message or "".
func ValidateJokeContent(content string) string {
	if utf8.RuneCountInString(content) < MinJokeContentLen {
		return "Joke is too short"
	}
	return ""
}

type JokeServiceImpl struct {
	repo repository.JokeRepository
	intN func(n int) int
}

// NewJokeService constructs JokeService over repo.
func NewJokeService(repo repository.JokeRepository) *JokeServiceImpl {
	return &JokeServiceImpl{repo: repo, intN: rand.IntN}
}

// Random picks a uniform offset into the corpus. An empty corpus, or a row
// removed between the count and the fetch, yields errs.ErrNotFound.
func (s *JokeServiceImpl) Random(ctx context.Context) (*model.Joke, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count jokes: %w", err)
	}
	if n <= 0 {
		return nil, errs.ErrNotFound
	}
	return s.repo.AtOffset(ctx, s.intN(n))
}

func (s *JokeServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.Joke, error) {
	return s.repo.Get(ctx, id)
}

func (s *JokeServiceImpl) List(ctx context.Context, limit int) ([]model.JokeListItem, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.repo.ListRecent(ctx, limit)
}

// Create runs both field checks before rejecting.
func (s *JokeServiceImpl) Create(ctx context.Context, userID uuid.UUID, name, content string) (*model.Joke, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	fe := map[string]string{}
	if msg := ValidateJokeName(name); msg != "" {
		fe["name"] = msg
	}
	if msg := ValidateJokeContent(content); msg != "" {
		fe["content"] = msg
	}
	if len(fe) > 0 {
		return nil, &ValidationError{FieldErrors: fe}
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	j := &model.Joke{ID: id, Name: name, Content: content, UserID: userID}
	if err := s.repo.Create(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// Delete checks existence, then ownership, then removes. A concurrent delete
// between the check and the removal surfaces as errs.ErrNotFound.
func (s *JokeServiceImpl) Delete(ctx context.Context, userID, jokeID uuid.UUID) error {
	j, err := s.repo.Get(ctx, jokeID)
	if err != nil {
		return err
	}
	if !j.OwnedBy(userID) {
		return errs.ErrForbidden
	}
	if err := s.repo.Delete(ctx, jokeID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete joke: %w", err)
	}
	return nil
}
