package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/mailcode/registrator/internal/core/domain/registration"
	"github.com/mailcode/registrator/internal/core/domain/user"
	"github.com/mailcode/registrator/internal/core/ports"
)

// RegistrationService orchestrates code issuance and verification against
// the code store, the user repository and the notification publisher.
type RegistrationService struct {
	codes     ports.CodeStore
	users     ports.UserRepository
	publisher ports.NotificationPublisher
	tokens    ports.TokenIssuer
	validate  *validator.Validate
	codeTTL   time.Duration
	codeLen   int
	logger    *logrus.Logger
	now       func() time.Time
}

// RegistrationConfig groups the issuance parameters.
type RegistrationConfig struct {
	CodeTTL    time.Duration
	CodeLength int
}

func NewRegistrationService(codes ports.CodeStore, users ports.UserRepository, publisher ports.NotificationPublisher, tokens ports.TokenIssuer, cfg *RegistrationConfig, logger *logrus.Logger) ports.RegistrationService {
	ttl := 3 * time.Minute
	length := 4
	if cfg != nil {
		if cfg.CodeTTL > 0 {
			ttl = cfg.CodeTTL
		}
		if cfg.CodeLength > 0 {
			length = cfg.CodeLength
		}
	}
	return &RegistrationService{
		codes:     codes,
		users:     users,
		publisher: publisher,
		tokens:    tokens,
		validate:  validator.New(),
		codeTTL:   ttl,
		codeLen:   length,
		logger:    logger,
		now:       time.Now,
	}
}

// IssueCode validates the email, generates a pending code bound to it and
// hands delivery off to the mail queue. At most one live code may exist per
// email: the store write is an atomic create-if-absent, so of two
// concurrent calls exactly one wins and the other observes a conflict.
func (s *RegistrationService) IssueCode(ctx context.Context, email string) (string, error) {
	if err := s.validateEmail(email); err != nil {
		return "", err
	}

	email = registration.NormalizeEmail(email)

	// Cheap pre-check before generating anything. The atomic create below
	// still guards the race between two concurrent issuances.
	existing, err := s.codes.Get(ctx, email)
	switch {
	case err == nil:
		return "", s.codeConflict(existing)
	case !errors.Is(err, registration.ErrCodeNotFound):
		return "", fmt.Errorf("failed to read pending code: %w", err)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return "", &registration.ConflictError{Message: "already registered"}
	} else if !errors.Is(err, user.ErrNotFound) {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	code, err := registration.NewCode(s.codeLen)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	pending := &registration.PendingCode{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().Add(s.codeTTL),
	}

	created, err := s.codes.TryCreate(ctx, pending, s.codeTTL)
	if err != nil {
		return "", fmt.Errorf("failed to store pending code: %w", err)
	}
	if !created {
		// Lost the race to a concurrent issuance; report the winner's
		// remaining window so the client knows when to retry.
		if winner, err := s.codes.Get(ctx, email); err == nil {
			return "", s.codeConflict(winner)
		}
		return "", &registration.ConflictError{Message: "a code was already issued", RetryAfter: s.codeTTL}
	}

	// Best-effort handoff: the code is already accepted, a failed publish
	// is logged and never surfaced to the caller.
	notification := &registration.CodeNotification{
		Email:     pending.Email,
		Code:      pending.Code,
		ExpiresAt: pending.ExpiresAt,
	}
	if err := s.publisher.Publish(ctx, notification); err != nil {
		if s.logger != nil {
			s.logger.WithField("email", email).WithError(err).Error("failed to publish code notification")
		}
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"email": email, "expires_at": pending.ExpiresAt}).Info("pending code issued")
	}

	return email, nil
}

// Verify exchanges a pending code for a signed access token. The first
// successful verification creates the user; the unique index on the users
// table turns a duplicate-insert race into a conflict, never a duplicate
// record. A mismatched code leaves the pending code in place for retries
// within its TTL.
func (s *RegistrationService) Verify(ctx context.Context, email, code string) (string, error) {
	email = registration.NormalizeEmail(email)

	pending, err := s.codes.Get(ctx, email)
	if err != nil {
		if errors.Is(err, registration.ErrCodeNotFound) {
			return "", registration.ErrCodeNotFound
		}
		return "", fmt.Errorf("failed to read pending code: %w", err)
	}

	if pending.Code != code {
		return "", registration.ErrInvalidCode
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return "", &registration.ConflictError{Message: "already registered"}
	} else if !errors.Is(err, user.ErrNotFound) {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	u := user.New(email)
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return "", &registration.ConflictError{Message: "already registered"}
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	// Consume the code. Expiry would clear it anyway, so a failed delete
	// only shortens nothing and is not worth failing the registration.
	if err := s.codes.Delete(ctx, email); err != nil {
		if s.logger != nil {
			s.logger.WithField("email", email).WithError(err).Warn("failed to delete consumed code")
		}
	}

	token, err := s.tokens.Issue(email)
	if err != nil {
		// The user is registered at this point; token issuance failure is
		// retryable via a fresh login, not grounds to roll anything back.
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": u.ID, "email": email}).Info("user registered")
	}

	return token, nil
}

func (s *RegistrationService) validateEmail(email string) error {
	err := s.validate.Var(registration.NormalizeEmail(email), "required,email")
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	fields := []registration.FieldError{{Field: "email", Message: "email must be a valid email address"}}
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
		fields = []registration.FieldError{{Field: "email", Message: "email must not be empty"}}
	}
	return &registration.ValidationError{Fields: fields}
}

func (s *RegistrationService) codeConflict(pending *registration.PendingCode) error {
	retry := pending.Remaining(s.now())
	// Round up, matching the Retry-After header, so a sub-second
	// remainder never reads as "0 seconds".
	return &registration.ConflictError{
		Message:    fmt.Sprintf("a new code can be requested in %d seconds", int(math.Ceil(retry.Seconds()))),
		RetryAfter: retry,
	}
}
