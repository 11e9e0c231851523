// Package lock provides a best-effort per-user lock backed by Redis SETNX.
// It narrows the window where two concurrent match computations for the same
// user interleave their delete-then-insert replacement; it is not a fencing
// mechanism, and callers proceed when the lock cannot be acquired.
package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "matchlock:"

type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(addr, password string, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisLocker{client: c, ttl: ttl}
}

// Acquire takes the lock for key, returning a release func and true on
// success. Redis errors count as a failed acquire; the TTL bounds how long a
// crashed holder can block others.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), bool) {
	token := uuid.NewString()
	full := keyPrefix + key
	ok, err := l.client.SetNX(ctx, full, token, l.ttl).Result()
	if err != nil || !ok {
		return nil, false
	}
	return func() {
		// Only delete our own lock; an expired lock may belong to someone else.
		if v, err := l.client.Get(context.Background(), full).Result(); err == nil && v == token {
			_ = l.client.Del(context.Background(), full).Err()
		}
	}, true
}

func (l *RedisLocker) Close() error { return l.client.Close() }
