package ports

import (
	"context"
	"time"

	"github.com/mailcode/registrator/internal/core/domain/registration"
)

// CodeStore holds pending codes in an ephemeral TTL-capable store.
// Implementations must expire entries on their own; no sweep is run here.
type CodeStore interface {
	// TryCreate stores the pending code only if no live entry exists for
	// its email. The create must be atomic (create-if-absent), never a
	// check followed by a set: two concurrent issuances for the same email
	// must resolve to exactly one stored code. Returns false when an entry
	// already existed; existing state is left untouched.
	TryCreate(ctx context.Context, code *registration.PendingCode, ttl time.Duration) (bool, error)

	// Get returns the live pending code for a normalized email, or
	// registration.ErrCodeNotFound when absent or expired.
	Get(ctx context.Context, email string) (*registration.PendingCode, error)

	// Delete removes the pending code; absence is not an error.
	Delete(ctx context.Context, email string) error
}
