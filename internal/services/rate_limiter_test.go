package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// memKVStore — in-memory замена Redis для тестов (TTL запоминаем,
// но не применяем: тесты живут внутри одного окна).
type memKVStore struct {
	counters map[string]int64
	values   map[string]string
	ttls     map[string]time.Duration
	failAll  bool
}

func newMemKVStore() *memKVStore {
	return &memKVStore{
		counters: make(map[string]int64),
		values:   make(map[string]string),
		ttls:     make(map[string]time.Duration),
	}
}

func (s *memKVStore) Incr(ctx context.Context, key string) (int64, error) {
	if s.failAll {
		return 0, errors.New("store down")
	}
	s.counters[key]++
	return s.counters[key], nil
}

func (s *memKVStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if s.failAll {
		return errors.New("store down")
	}
	s.ttls[key] = ttl
	return nil
}

func (s *memKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failAll {
		return "", false, errors.New("store down")
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memKVStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if s.failAll {
		return errors.New("store down")
	}
	s.values[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *memKVStore) singleTTL(t *testing.T) time.Duration {
	t.Helper()
	if len(s.ttls) != 1 {
		t.Fatalf("expected exactly one TTL record, got %d", len(s.ttls))
	}
	for _, ttl := range s.ttls {
		return ttl
	}
	return 0
}

func TestCheckRateLimitAllowsUpToMax(t *testing.T) {
	store := newMemKVStore()
	l := NewRateLimiter(store)
	ctx := context.Background()

	// часовое окно, чтобы тест не перескочил границу бакета
	for i := 0; i < 5; i++ {
		res := l.CheckRateLimit(ctx, "ip:1.2.3.4", 5, time.Hour)
		assert.True(t, res.Allowed, "request %d should pass", i+1)
		assert.Equal(t, 4-i, res.Remaining)
	}

	res := l.CheckRateLimit(ctx, "ip:1.2.3.4", 5, time.Hour)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, time.Hour)
}

func TestCheckRateLimitSetsDoubleWindowTTL(t *testing.T) {
	store := newMemKVStore()
	l := NewRateLimiter(store)

	l.CheckRateLimit(context.Background(), "phone:+15551234567", 10, time.Hour)

	assert.Equal(t, 2*time.Hour, store.singleTTL(t))
}

func TestCheckRateLimitIndependentKeys(t *testing.T) {
	store := newMemKVStore()
	l := NewRateLimiter(store)
	ctx := context.Background()

	l.CheckRateLimit(ctx, "ip:1.1.1.1", 1, time.Hour)
	res := l.CheckRateLimit(ctx, "ip:1.1.1.1", 1, time.Hour)
	assert.False(t, res.Allowed)

	res = l.CheckRateLimit(ctx, "ip:2.2.2.2", 1, time.Hour)
	assert.True(t, res.Allowed)
}

func TestCheckRateLimitFailOpen(t *testing.T) {
	store := newMemKVStore()
	store.failAll = true
	l := NewRateLimiter(store)

	for i := 0; i < 20; i++ {
		res := l.CheckRateLimit(context.Background(), "ip:1.2.3.4", 5, time.Minute)
		assert.True(t, res.Allowed)
	}
}

func TestCheckRateLimitNilStoreAllows(t *testing.T) {
	l := NewRateLimiter(nil)
	res := l.CheckRateLimit(context.Background(), "ip:1.2.3.4", 5, time.Minute)
	assert.True(t, res.Allowed)
}

func TestCheckCooldownBlocksSecondCall(t *testing.T) {
	store := newMemKVStore()
	l := NewRateLimiter(store)
	ctx := context.Background()

	res := l.CheckCooldown(ctx, "phone:+15551234567", 30*time.Second)
	assert.True(t, res.Allowed)

	res = l.CheckCooldown(ctx, "phone:+15551234567", 30*time.Second)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, 30*time.Second)
}

func TestCheckCooldownTTLFloorsAtMinute(t *testing.T) {
	store := newMemKVStore()
	l := NewRateLimiter(store)

	l.CheckCooldown(context.Background(), "phone:+15551234567", 30*time.Second)

	assert.Equal(t, time.Minute, store.singleTTL(t))
}

func TestCheckCooldownFailOpen(t *testing.T) {
	store := newMemKVStore()
	store.failAll = true
	l := NewRateLimiter(store)

	res := l.CheckCooldown(context.Background(), "phone:+15551234567", 30*time.Second)
	assert.True(t, res.Allowed)
}

func TestNewRedisKVStoreNilClient(t *testing.T) {
	assert.Nil(t, NewRedisKVStore(nil))
}
