package ports

import "context"

// RegistrationService exposes the two public registration operations.
//
// Expected outcomes are returned as the typed errors of the registration
// domain package (*ValidationError, *ConflictError, ErrCodeNotFound,
// ErrInvalidCode); any other error is an infrastructure failure.
type RegistrationService interface {
	// IssueCode validates and normalizes the email, stores a fresh pending
	// code and hands its delivery off to the mail queue. Returns the
	// normalized email that was accepted.
	IssueCode(ctx context.Context, email string) (string, error)

	// Verify exchanges a pending code for a signed access token, creating
	// the user record on first success.
	Verify(ctx context.Context, email, code string) (string, error)
}
