package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedisServer connects to REDIS_ADDRESS. Callers decide whether a missing
// redis is fatal; the dashboard runs uncached without it.
func InitRedisServer(ctx context.Context) (*redis.Client, error) {
	addr := GetEnv("REDIS_ADDRESS")
	if addr == "" {
		return nil, fmt.Errorf("REDIS_ADDRESS is not set")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: GetEnv("REDIS_PASSWORD"),
		DB:       GetEnvInt("REDIS_DB", 0),
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := client.Ping(pingCtx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	return client, nil
}
