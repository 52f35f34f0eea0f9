package ports

import (
	"context"

	"github.com/mailcode/registrator/internal/core/domain/user"
)

// UserRepository persists registered users.
type UserRepository interface {
	// Create inserts a new user. Returns an error wrapping
	// user.ErrDuplicateEmail when the email is already registered.
	Create(ctx context.Context, u *user.User) error

	// GetByEmail returns the user for a normalized email, or an error
	// wrapping user.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}
