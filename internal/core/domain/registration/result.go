package registration

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Expected business outcomes, modeled as typed errors. Handlers translate
// them into HTTP statuses; anything else coming out of the service is an
// infrastructure failure and surfaces as a generic server error.
var (
	// ErrCodeNotFound means no pending code exists for the email: it was
	// never issued or it already expired.
	ErrCodeNotFound = errors.New("no pending code or it expired")

	// ErrInvalidCode means a live pending code exists but the submitted
	// code does not match it. The pending code stays valid for retries.
	ErrInvalidCode = errors.New("invalid code")
)

// FieldError is a single (field, message) validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports syntactically malformed client input. It carries
// one entry per failed field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// ConflictError reports state that already satisfies or blocks the request.
// RetryAfter is non-zero when waiting makes the request retryable, i.e. a
// live code already exists and a new one can be requested after it expires.
type ConflictError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *ConflictError) Error() string { return e.Message }
