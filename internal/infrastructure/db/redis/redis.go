// Package redis keeps provider sessions in Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	// PingTimeout bounds the startup check; 5s when unset.
	PingTimeout time.Duration
}

func (c Config) options() *redis.Options {
	return &redis.Options{
		Addr:       c.Addr,
		Password:   c.Password,
		DB:         c.DB,
		ClientName: "zaplanje",
	}
}

// Connect pings before returning. An unreachable server is an error, not a
// client that fails later.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	wait := cfg.PingTimeout
	if wait <= 0 {
		wait = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	client := redis.NewClient(cfg.options())
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}
