package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/mailcode/registrator/internal/core/domain/registration"
	"github.com/mailcode/registrator/internal/core/ports"
)

const (
	// codeKeyPrefix prefixes Redis keys for pending codes.
	// It's a static prefix and not a credential; silence gosec G101 here.
	codeKeyPrefix = "registrator:code" //nolint:gosec
)

// CodeRedisRepository stores pending codes in Redis. The TTL on the entry
// makes expiry automatic; no sweep runs anywhere.
type CodeRedisRepository struct {
	r      redis.Cmdable
	logger *logrus.Logger
}

func NewCodeRedisRepository(r redis.Cmdable, logger *logrus.Logger) *CodeRedisRepository {
	return &CodeRedisRepository{r: r, logger: logger}
}

// Ensure CodeRedisRepository implements ports.CodeStore
var _ ports.CodeStore = (*CodeRedisRepository)(nil)

func (r *CodeRedisRepository) key(email string) string {
	return fmt.Sprintf("%s:%s", codeKeyPrefix, email)
}

// TryCreate writes the code with SETNX semantics so that of two concurrent
// issuances for the same email exactly one entry survives.
func (r *CodeRedisRepository) TryCreate(ctx context.Context, code *registration.PendingCode, ttl time.Duration) (bool, error) {
	b, err := json.Marshal(code)
	if err != nil {
		return false, fmt.Errorf("failed to marshal pending code: %w", err)
	}

	created, err := r.r.SetNX(ctx, r.key(code.Email), b, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to store pending code in redis: %w", err)
	}

	if r.logger != nil && created {
		r.logger.WithFields(logrus.Fields{"email": code.Email, "expires_at": code.ExpiresAt}).Debug("redis: pending code stored")
	}

	return created, nil
}

func (r *CodeRedisRepository) Get(ctx context.Context, email string) (*registration.PendingCode, error) {
	b, err := r.r.Get(ctx, r.key(email)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, registration.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to get pending code from redis: %w", err)
	}

	var code registration.PendingCode
	if err := json.Unmarshal(b, &code); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending code: %w", err)
	}

	// The key TTL normally handles expiry; the embedded timestamp guards
	// against an entry written with a longer TTL than its window.
	if code.Expired(time.Now()) {
		return nil, registration.ErrCodeNotFound
	}

	return &code, nil
}

func (r *CodeRedisRepository) Delete(ctx context.Context, email string) error {
	if err := r.r.Del(ctx, r.key(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete pending code from redis: %w", err)
	}
	return nil
}
