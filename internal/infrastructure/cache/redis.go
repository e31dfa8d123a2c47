// Package cache holds the redis client used as the cache store.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"waveline/internal/shared/config"
	"waveline/internal/shared/logger"
)

var (
	client   *redis.Client
	clientMu sync.RWMutex
)

// Init connects to the cache store and verifies the connection.
func Init(ctx context.Context, cfg *config.RedisConfig) error {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	clientMu.Lock()
	client = c
	clientMu.Unlock()

	logger.Info("redis connection established", "addr", cfg.GetAddr(), "db", cfg.DB)

	return nil
}

// Get returns the redis client.
func Get() *redis.Client {
	clientMu.RLock()
	defer clientMu.RUnlock()
	return client
}

// Close closes the redis client.
func Close() error {
	clientMu.RLock()
	c := client
	clientMu.RUnlock()

	if c == nil {
		return nil
	}
	return c.Close()
}
