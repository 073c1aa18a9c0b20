package redisdb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/foodpod-bot/foodpod/core/logger"
)

// Connect builds the Redis client and pings the server once.
// An unreachable server is logged but not fatal: go-redis dials lazily and
// every later command reports its own connection error.
func Connect(cfg Config) (*redis.Client, error) {
	if cfg.DB < 0 {
		return nil, fmt.Errorf("redis: invalid db index %d", cfg.DB)
	}
	if applied := cfg.Defaults(); len(applied) > 0 {
		logger.Warn(context.Background(), "redis", "redis.defaults",
			slog.String("status", "ok"),
			slog.String("cause", fmt.Sprintf("unset settings: %v", applied)),
			slog.String("host", cfg.Host),
			slog.Int("port", cfg.Port),
		)
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		DB:          cfg.DB,
		Password:    cfg.Password,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	start := time.Now()
	err := client.Ping(ctx).Err()
	took := time.Since(start)
	if err != nil {
		logger.Warn(ctx, "redis", "redis.connect",
			slog.String("status", "fail"),
			slog.String("host", cfg.Host),
			slog.Int("port", cfg.Port),
			slog.Int("db", cfg.DB),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)
		return client, nil
	}

	logger.Info(ctx, "redis", "redis.connect",
		slog.String("status", "ok"),
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port),
		slog.Int("db", cfg.DB),
		slog.Duration("duration", took),
	)
	return client, nil
}
