package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tts-guard-backend/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DashboardResource prefixes every cached dashboard read model. Any mutation
// of the store invalidates it.
const DashboardResource = "dashboard"

// Cache stores serialized read models under "<resource>:<hash>" keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	InvalidateCache(ctx context.Context, resourceType string) error
}

type redisCache struct {
	rdb *redis.Client
}

// NewRedisCache wraps rdb. A nil client yields a cache that never hits.
func NewRedisCache(rdb *redis.Client) Cache {
	if rdb == nil {
		return NopCache{}
	}
	return &redisCache{rdb: rdb}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// InvalidateCache will invalidate all cached keys for the given resource type
func (c *redisCache) InvalidateCache(ctx context.Context, resourceType string) error {
	// Use SCAN instead of KEYS for better performance in production
	pattern := fmt.Sprintf("%s:*", resourceType)
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()

	for iter.Next(ctx) {
		key := iter.Val()
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error during SCAN iteration: %w", err)
	}
	return nil
}

// NopCache is used when redis is unavailable.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopCache) InvalidateCache(context.Context, string) error            { return nil }

// InvalidateQuietly drops every key of resourceType. Failures are logged and
// swallowed: a stale cache entry expires on its own TTL.
func InvalidateQuietly(ctx context.Context, cache Cache, resourceType string) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateCache(ctx, resourceType); err != nil {
		config.Logger.Warn("Cache invalidation failed",
			zap.String("resource_type", resourceType), zap.Error(err))
	}
}
