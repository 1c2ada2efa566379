// Package ratelimit implements a fixed-window request limiter backed by Redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrNoClient is returned when the store has no Redis client.
var ErrNoClient = errors.New("ratelimit: redis client is nil")

// Store counts hits in fixed windows.
type Store interface {
	// IncrementWindow bumps the counter for key, starting a window of the given length on the
	// first hit. Returns the count so far and the time left in the window.
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisStore keeps counters in Redis with INCR + EXPIRE.
type RedisStore struct {
	client *goredis.Client
}

// NewRedisStore returns a Store using client.
func NewRedisStore(client *goredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// IncrementWindow implements Store.
func (s *RedisStore) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if s.client == nil {
		return 0, 0, ErrNoClient
	}
	if key == "" || window <= 0 {
		return 0, 0, fmt.Errorf("ratelimit: invalid window for key %q", key)
	}

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("increment rate key: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("set rate key ttl: %w", err)
		}
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("read rate key ttl: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return count, ttl, nil
}
