package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mailcode/registrator/internal/core/ports"
)

// RateLimiterService applies a fixed-window limit per client IP, backed by
// counters in Redis. Limiter failures fail open: the request proceeds.
type RateLimiterService struct {
	repo      ports.RateLimitRepository
	limit     int
	window    time.Duration
	keyPrefix string
	logger    *logrus.Logger
}

// RateLimiterConfig groups configuration parameters for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	KeyPrefix         string
}

func NewRateLimiterService(repo ports.RateLimitRepository, cfg *RateLimiterConfig, logger *logrus.Logger) ports.RateLimiter {
	// Apply defaults
	limit := 20
	w := time.Minute
	kp := "ratelimit:ip"
	if cfg != nil {
		if cfg.RequestsPerWindow > 0 {
			limit = cfg.RequestsPerWindow
		}
		if cfg.Window > 0 {
			w = cfg.Window
		}
		if cfg.KeyPrefix != "" {
			kp = cfg.KeyPrefix
		}
	}
	return &RateLimiterService{repo: repo, limit: limit, window: w, keyPrefix: kp, logger: logger}
}

func (s *RateLimiterService) Allow(ctx context.Context, key string) (bool, int, int, time.Time, error) {
	ttl := s.window * 2 // retain overlap window
	count, windowStart, err := s.repo.IncrementWindow(ctx, key, s.window, s.keyPrefix, ttl)
	reset := windowStart.Add(s.window)
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("key", key).WithError(err).Error("rate limiter: failed to increment window")
		}
		// fail open
		return true, s.limit, s.limit, reset, err
	}
	remaining := s.limit - count
	if remaining < 0 {
		remaining = 0
	}
	if count > s.limit {
		return false, 0, s.limit, reset, nil
	}
	return true, remaining, s.limit, reset, nil
}
