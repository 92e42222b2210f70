package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// KVStore — минимальный TTL key-value интерфейс поверх Redis.
// В тестах подменяется in-memory реализацией.
type KVStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type redisKVStore struct {
	client *redis.Client
}

// NewRedisKVStore — nil клиент (Redis не настроен) даёт nil store,
// лимитер в этом случае всё пропускает.
func NewRedisKVStore(client *redis.Client) KVStore {
	if client == nil {
		return nil
	}
	return &redisKVStore{client: client}
}

func (s *redisKVStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

func (s *redisKVStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, key, ttl).Err()
}

func (s *redisKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *redisKVStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter — fixed-window счётчик плюс cooldown-гейт. Мягкий лимит:
// read-modify-write без строгой атомарности нас устраивает, INCR закрывает
// основную гонку. Ошибки стора не блокируют запрос (fail-open).
type RateLimiter struct {
	store KVStore
}

func NewRateLimiter(store KVStore) *RateLimiter {
	return &RateLimiter{store: store}
}

// CheckRateLimit — окно window, не более maxRequests запросов на ключ.
// Ключ бакета: {key}:{floor(now/window)}, TTL = 2×window.
func (l *RateLimiter) CheckRateLimit(ctx context.Context, key string, maxRequests int, window time.Duration) RateLimitResult {
	if l == nil || l.store == nil {
		return RateLimitResult{Allowed: true, Remaining: maxRequests}
	}

	now := time.Now().Unix()
	winSecs := int64(window.Seconds())
	bucket := now / winSecs
	k := fmt.Sprintf("%s:%d", key, bucket)

	n, err := l.store.Incr(ctx, k)
	if err != nil {
		log.Printf("[ratelimit] incr failed key=%s: %v", k, err)
		return RateLimitResult{Allowed: true, Remaining: maxRequests}
	}
	if n == 1 {
		if err := l.store.Expire(ctx, k, 2*window); err != nil {
			log.Printf("[ratelimit] expire failed key=%s: %v", k, err)
		}
	}

	if n > int64(maxRequests) {
		retryAfter := time.Duration((bucket+1)*winSecs-now) * time.Second
		return RateLimitResult{Allowed: false, RetryAfter: retryAfter}
	}
	return RateLimitResult{Allowed: true, Remaining: maxRequests - int(n)}
}

// CheckCooldown пропускает не чаще одного раза в cooldown на ключ.
// Храним unix-время последнего пропуска, TTL = max(cooldown, 60s).
func (l *RateLimiter) CheckCooldown(ctx context.Context, key string, cooldown time.Duration) RateLimitResult {
	if l == nil || l.store == nil {
		return RateLimitResult{Allowed: true}
	}

	k := "cooldown:" + key
	now := time.Now().Unix()

	v, ok, err := l.store.Get(ctx, k)
	if err != nil {
		log.Printf("[ratelimit] get failed key=%s: %v", k, err)
		return RateLimitResult{Allowed: true}
	}
	if ok {
		last, parseErr := strconv.ParseInt(v, 10, 64)
		if parseErr == nil {
			elapsed := time.Duration(now-last) * time.Second
			if elapsed < cooldown {
				return RateLimitResult{Allowed: false, RetryAfter: cooldown - elapsed}
			}
		}
	}

	ttl := cooldown
	if ttl < time.Minute {
		ttl = time.Minute
	}
	if err := l.store.Set(ctx, k, strconv.FormatInt(now, 10), ttl); err != nil {
		log.Printf("[ratelimit] set failed key=%s: %v", k, err)
	}
	return RateLimitResult{Allowed: true}
}
