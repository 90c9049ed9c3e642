package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	coreconfig "github.com/m3rciful/linkbot/core/config"
	"github.com/m3rciful/linkbot/core/logger"
)

// ConnectRedis builds a client and waits until PING succeeds or wait elapses.
func ConnectRedis(ctx context.Context, cfg coreconfig.RedisConfig, wait time.Duration) (*redis.Client, error) {
	if wait <= 0 {
		wait = 30 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = wait
	policy.MaxInterval = 5 * time.Second

	attempt := 0
	start := time.Now()
	err := backoff.RetryNotify(
		func() error {
			attempt++
			return client.Ping(ctx).Err()
		},
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			logger.State.Warn("redis not ready",
				slog.String("event", "redis.wait"),
				slog.String("addr", cfg.Addr),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", next),
				slog.String("err", err.Error()),
			)
		},
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	logger.State.Info("redis connected",
		slog.String("event", "redis.connect"),
		slog.String("status", "ok"),
		slog.String("addr", cfg.Addr),
		slog.Int("attempt", attempt),
		slog.Duration("duration", time.Since(start)),
	)
	return client, nil
}
