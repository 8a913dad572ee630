package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisVerificationCache memoizes availability-check results in Redis.
type RedisVerificationCache struct {
	client *redis.Client
}

// NewRedisVerificationCache creates a verification cache backed by Redis
// string keys with per-entry TTL.
func NewRedisVerificationCache(client *redis.Client) *RedisVerificationCache {
	return &RedisVerificationCache{client: client}
}

func (c *RedisVerificationCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, "accounts:verify:"+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (c *RedisVerificationCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, "accounts:verify:"+key, value, ttl).Err()
}
