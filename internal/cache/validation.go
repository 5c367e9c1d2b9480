package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// validationCachePrefix is the Redis key prefix for validated tokens.
const validationCachePrefix = "apikey:valid:"

// IsValid reports whether cacheKey was marked valid and has not expired.
func (c *Cache) IsValid(ctx context.Context, cacheKey string) (bool, error) {
	err := c.client.Get(ctx, validationCachePrefix+cacheKey).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkValid records a positive validation for the configured TTL.
func (c *Cache) MarkValid(ctx context.Context, cacheKey string) error {
	return c.client.Set(ctx, validationCachePrefix+cacheKey, "1", c.ttl).Err()
}

// Forget removes a cached validation.
// Used when a key is revoked.
func (c *Cache) Forget(ctx context.Context, cacheKey string) error {
	return c.client.Del(ctx, validationCachePrefix+cacheKey).Err()
}
