package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport failures talking to Redis.
var ErrRedisUnavailable = errors.New("redis unavailable")

// RedisCache is a Redis-backed Cache. Keys are namespaced as "<prefix>:<key>".
type RedisCache struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a RedisCache. A zero ttl stores values without expiry.
func NewRedisCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "memberauth"
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisCache{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RedisCache) key(key string) string {
	return c.prefix + ":" + key
}

// Get returns the value stored under key, or ErrNotFound.
//
//	Performance: 1 Redis GET.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	data, err := c.redis.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return data, nil
}

// Set stores value under key with the configured TTL.
//
//	Performance: 1 Redis SET.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := c.redis.Set(ctx, c.key(key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}

// Delete removes all keys in one command.
//
//	Performance: 1 Redis DEL.
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		full = append(full, c.key(k))
	}
	if len(full) == 0 {
		return nil
	}
	if err := c.redis.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (c *RedisCache) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
