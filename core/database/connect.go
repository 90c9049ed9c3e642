package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/linkbot/core/logger"
)

// Connect waits for PostgreSQL to accept connections, configures the pool and
// verifies connectivity. Retries stop when ctx is done or WaitTimeout elapses.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	cfg = cfg.withDefaults()

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = cfg.WaitTimeout
	policy.MaxInterval = 5 * time.Second

	var (
		db      *sqlx.DB
		attempt int
	)
	start := time.Now()
	err := backoff.RetryNotify(
		func() error {
			attempt++
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			conn, err := sqlx.ConnectContext(pingCtx, "postgres", cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			db = conn
			return nil
		},
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			logger.DB.Warn("db not ready",
				slog.String("event", "db.wait"),
				slog.String("host", cfg.Host),
				slog.String("db", cfg.Name),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", next),
				slog.String("err", err.Error()),
			)
		},
	)
	took := time.Since(start)
	if err != nil {
		logger.DB.Error("db connect failed",
			slog.String("event", "db.connect"),
			slog.String("status", "fail"),
			slog.String("host", cfg.Host),
			slog.String("port", cfg.Port),
			slog.String("db", cfg.Name),
			slog.Int("attempt", attempt),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	logger.DB.Info("db connected",
		slog.String("event", "db.connect"),
		slog.String("status", "ok"),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
		slog.Int("attempt", attempt),
		slog.Duration("duration", took),
	)
	return db, nil
}
