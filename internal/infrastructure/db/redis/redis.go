package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

// Connect dials Redis and fails fast when it does not answer a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	t := cfg.timeout()
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  t,
		ReadTimeout:  t,
		WriteTimeout: t,
	})

	pingCtx, cancel := context.WithTimeout(ctx, t)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// OpenRevocationStore connects and wraps the client in a RevocationStore.
// The returned close func releases the connection pool.
func OpenRevocationStore(ctx context.Context, cfg Config) (*RevocationStore, func() error, error) {
	client, err := Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return NewRevocationStore(client), client.Close, nil
}
