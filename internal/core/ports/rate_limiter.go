package ports

import (
	"context"
	"time"
)

// RateLimitRepository stores fixed-window request counters.
type RateLimitRepository interface {
	// IncrementWindow bumps the counter for key in the current window and
	// returns the new count together with the window start.
	IncrementWindow(ctx context.Context, key string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}

// RateLimiter decides whether a request identified by key (the client IP)
// may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, limit int, reset time.Time, err error)
}
