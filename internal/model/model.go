// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// User represents a registered account. Users are never mutated after creation.
type User struct {
	ID           uuid.UUID // PK
	Username     string    // unique
	PasswordHash []byte    // bcrypt(password)
	CreatedAt    time.Time
}

// Joke is a short text posted by a user.
type Joke struct {
	ID        uuid.UUID
	Name      string
	Content   string
	UserID    uuid.UUID // FK -> users.id, ON DELETE CASCADE
	CreatedAt time.Time
}

// OwnedBy reports whether the joke was posted by userID.
func (j *Joke) OwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && j.UserID == userID
}

// JokeListItem is the projection used for joke listings.
type JokeListItem struct {
	ID   uuid.UUID
	Name string
}
