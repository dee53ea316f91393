package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/homeplate/backend/internal/domain"
)

// RedisCache is a Redis-backed product cache for deployments where sync
// runs on more than one instance and the cache has to be shared.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis at the given URL and verifies the
// connection before returning.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// GetProduct retrieves a cached lookup. Redis TTL handles expiry, so a
// present key is always fresh.
func (c *RedisCache) GetProduct(ctx context.Context, ingredientName, locationID string) (*domain.CachedLookup, error) {
	raw, err := c.client.Get(ctx, Key(ingredientName, locationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var lookup domain.CachedLookup
	if err := json.Unmarshal(raw, &lookup); err != nil {
		// Malformed entry: treat as a miss so the caller re-fetches
		return nil, domain.ErrCacheMiss
	}

	return &lookup, nil
}

// PutProduct stores a lookup with the cache TTL, overwriting any prior
// entry for the same key.
func (c *RedisCache) PutProduct(ctx context.Context, ingredientName, locationID string, product domain.Product) error {
	lookup := domain.CachedLookup{Product: product, CachedAt: time.Now()}

	raw, err := json.Marshal(lookup)
	if err != nil {
		return fmt.Errorf("marshal cached lookup: %w", err)
	}

	if err := c.client.Set(ctx, Key(ingredientName, locationID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
