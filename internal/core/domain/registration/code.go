package registration

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// PendingCode is a short-lived numeric credential proving control of an
// email address. It lives in the code store until it is consumed or its
// TTL elapses; the store is the only source of truth for it.
type PendingCode struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the code's validity window has passed.
func (p *PendingCode) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// Remaining returns the time left until the code expires. Never negative.
func (p *PendingCode) Remaining(now time.Time) time.Duration {
	d := p.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// CodeNotification is the flat payload handed to the mail queue. The
// consumer formats it into an email; there is no feedback channel back.
type CodeNotification struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

const digitAlphabet = "0123456789"

// NewCode generates a numeric code of the given length, each digit drawn
// independently and uniformly. Codes are not unique across requests; they
// only prove receipt of the delivery email.
func NewCode(length int) (string, error) {
	var sb strings.Builder
	sb.Grow(length)
	max := big.NewInt(int64(len(digitAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate code digit: %w", err)
		}
		sb.WriteByte(digitAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// NormalizeEmail lower-cases and trims an email address. All storage keys
// and user records use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
