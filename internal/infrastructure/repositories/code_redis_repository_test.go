package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/mailcode/registrator/internal/core/domain/registration"
	"github.com/mailcode/registrator/internal/infrastructure/repositories"
)

// redisFake implements the three commands the code store issues over an
// in-memory map. Anything else panics through the nil embedded Cmdable.
type redisFake struct {
	redis.Cmdable
	values map[string]string
}

func newRedisFake() *redisFake {
	return &redisFake{values: make(map[string]string)}
}

func (f *redisFake) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = string(value.([]byte))
	return redis.NewBoolResult(true, nil)
}

func (f *redisFake) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *redisFake) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestCodeRedisRepository_RoundTrip(t *testing.T) {
	repo := repositories.NewCodeRedisRepository(newRedisFake(), logrus.New())
	pending := &registration.PendingCode{Email: "a@b.com", Code: "4821", ExpiresAt: time.Now().Add(3 * time.Minute)}

	created, err := repo.TryCreate(context.Background(), pending, 3*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected the first create to win")
	}

	got, err := repo.Get(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Code != "4821" || got.Email != "a@b.com" {
		t.Fatalf("unexpected pending code: %+v", got)
	}

	if err := repo.Delete(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.Get(context.Background(), "a@b.com"); !errors.Is(err, registration.ErrCodeNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestCodeRedisRepository_TryCreateKeepsExistingEntry(t *testing.T) {
	repo := repositories.NewCodeRedisRepository(newRedisFake(), logrus.New())
	first := &registration.PendingCode{Email: "a@b.com", Code: "4821", ExpiresAt: time.Now().Add(3 * time.Minute)}
	second := &registration.PendingCode{Email: "a@b.com", Code: "9999", ExpiresAt: time.Now().Add(3 * time.Minute)}

	if _, err := repo.TryCreate(context.Background(), first, 3*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created, err := repo.TryCreate(context.Background(), second, 3*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatal("the second create for the same email must lose")
	}

	got, err := repo.Get(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Code != "4821" {
		t.Fatalf("the winning code must survive, got %q", got.Code)
	}
}

func TestCodeRedisRepository_GetExpiredEntry(t *testing.T) {
	// The key TTL normally clears expired entries; an entry whose embedded
	// expiry has passed while the key lingers must still read as absent,
	// so a stale code can never verify.
	repo := repositories.NewCodeRedisRepository(newRedisFake(), logrus.New())
	stale := &registration.PendingCode{Email: "a@b.com", Code: "4821", ExpiresAt: time.Now().Add(-time.Second)}

	if _, err := repo.TryCreate(context.Background(), stale, 3*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := repo.Get(context.Background(), "a@b.com")
	if !errors.Is(err, registration.ErrCodeNotFound) {
		t.Fatalf("expected not found for an expired entry, got %v", err)
	}
}

func TestCodeRedisRepository_GetMissing(t *testing.T) {
	repo := repositories.NewCodeRedisRepository(newRedisFake(), logrus.New())

	_, err := repo.Get(context.Background(), "missing@b.com")
	if !errors.Is(err, registration.ErrCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
