// Package redis provides the Redis client and the cache-aside layer used for
// portfolio summaries, insight snapshots, and API rate limiting.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wealthdesk/wealthdesk/internal/config"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
)

// Client wraps the go-redis client with the module's config and logging.
type Client struct {
	rdb    *redis.Client
	logger logging.Logger
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "redis connection failed")
	}

	log.Info("connected to Redis", logging.String("addr", cfg.Addr), logging.Int("db", cfg.DB))
	return &Client{rdb: rdb, logger: log}, nil
}

// NewClientWithRedis wraps an existing go-redis client, used by tests with
// miniredis or a mock transport.
func NewClientWithRedis(rdb *redis.Client, log logging.Logger) *Client {
	return &Client{rdb: rdb, logger: log}
}

// Redis exposes the underlying go-redis client.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "redis health check failed")
	}
	return nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
