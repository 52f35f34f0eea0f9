package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means no user exists for the given email.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateEmail means a user already exists for the given email.
	// The users table's unique index is the authoritative arbiter of the
	// one-registration-per-email invariant.
	ErrDuplicateEmail = errors.New("user already registered")
)

// User is a registered account. A successful code verification is the only
// write path; users are never mutated or deleted by this service.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// New builds a user for a normalized email with a fresh ID.
func New(email string) *User {
	return &User{ID: uuid.New(), Email: email}
}
