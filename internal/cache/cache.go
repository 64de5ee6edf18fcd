package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/account_service/internal/config"
)

type Options struct {
	Addr     string
	Username string
	Password string
	TLS      bool
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Addr:     cfg.Redis.Addr(),
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		TLS:      cfg.IsProduction(),
	}
}

type Client struct {
	rdb *redis.Client
}

// New builds one client and checks it answers before returning.
func New(ctx context.Context, opts Options) (*Client, error) {
	ro := &redis.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	if opts.TLS {
		ro.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	c := &Client{rdb: redis.NewClient(ro)}
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error { return c.rdb.Close() }
