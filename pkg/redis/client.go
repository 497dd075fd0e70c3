package redis

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/planetprotrader/backend/pkg/config"
)

const defaultPrefix = "protrader"

// Client is the shared Redis connection behind the cache, limiter and bus.
// A disabled client never dials and its helpers become no-ops.
// ⭐ SSOT: Redis connections are managed here
type Client struct {
	rdb    *redis.Client
	prefix string
}

// New dials and pings Redis when cfg.Redis.Enabled, otherwise returns a disabled client.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	c := &Client{prefix: cfg.Redis.Prefix}
	if !cfg.Redis.Enabled {
		return c, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", rdb.Options().Addr, err)
	}

	c.rdb = rdb
	return c, nil
}

// NewDisabled returns a client that never touches the network.
func NewDisabled() *Client {
	return &Client{}
}

// Enabled reports whether a live connection backs the client.
func (c *Client) Enabled() bool {
	return c.rdb != nil
}

// Prefix is the key namespace shared by cache, limiter and bus.
func (c *Client) Prefix() string {
	if c.prefix == "" {
		return defaultPrefix
	}
	return c.prefix
}

// Key joins parts under the client prefix: "<prefix>:cache:profile:42".
func (c *Client) Key(parts ...string) string {
	return c.Prefix() + ":" + strings.Join(parts, ":")
}

// Redis exposes the go-redis client. Nil when disabled.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
