package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/mailcode/registrator/internal/core/domain/user"
	"github.com/mailcode/registrator/internal/core/ports"
	"github.com/mailcode/registrator/internal/infrastructure/db"
)

// uniqueViolation is the postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// UserRepository implements the user repository interface over postgres.
type UserRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(database *db.Database, logger *logrus.Logger) ports.UserRepository {
	return &UserRepository{
		db:     database,
		logger: logger,
	}
}

// Create inserts a new user. The unique index on email is the final word
// on the one-registration-per-email invariant: a concurrent duplicate
// insert surfaces as user.ErrDuplicateEmail, never as a second row.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (id, email) VALUES ($1, $2)`

	_, err := r.db.DB.ExecContext(ctx, query, u.ID, u.Email)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if r.logger != nil {
				r.logger.WithField("email", u.Email).Debug("db: duplicate email on insert")
			}
			return fmt.Errorf("failed to create user: %w", user.ErrDuplicateEmail)
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).WithError(err).Error("db: failed to create user")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("db: user created")
	}

	return nil
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	query := `SELECT id, email, created_at FROM users WHERE email = $1`

	err := r.db.DB.GetContext(ctx, &u, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user with email %s: %w", email, user.ErrNotFound)
		}
		if r.logger != nil {
			r.logger.WithField("email", email).WithError(err).Error("db: failed to get user by email")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &u, nil
}
