package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"social-hub-backend/internal/common/config"
	"social-hub-backend/internal/common/logger"
)

// Client wraps go-redis client to allow future extensions.
type Client struct {
	*redis.Client
}

// Open creates a new Redis client and pings it to validate the connection.
func Open(ctx context.Context, addr, password string, db int) (*Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty redis addr")
	}
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &Client{Client: c}, nil
}

// OpenFromConfig opens the client described by cfg.Redis.
func OpenFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	c, err := Open(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("addr", cfg.RedisAddr()).Int("db", cfg.Redis.DB).Msg("Redis client initialized")
	return c, nil
}

// Wrap adapts an existing go-redis client (used with miniredis in tests).
func Wrap(c *redis.Client) *Client {
	return &Client{Client: c}
}

// IsNil reports whether err is the go-redis "key does not exist" error.
func IsNil(err error) bool {
	return err == redis.Nil
}
