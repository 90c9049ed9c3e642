package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	coreconfig "github.com/m3rciful/linkbot/core/config"
	coredatabase "github.com/m3rciful/linkbot/core/database"
	"github.com/m3rciful/linkbot/core/telegram/state"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunMemoryBackendRunsSeeders(t *testing.T) {
	cfg := &coreconfig.Config{State: coreconfig.StateConfig{Backend: coreconfig.StateBackendMemory}}
	var seeded bool
	res, err := Run(context.Background(), Options{
		Config:     cfg,
		LoggerInit: noLogger,
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			t.Fatal("database must not be touched without a database config")
			return nil, nil
		},
		Modules: Modules{Seeders: []Seeder{SeederFunc(func(_ context.Context, r *Result) error {
			seeded = r.Sessions != nil
			return nil
		})}},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := res.Sessions.(*state.MemoryStore); !ok {
		t.Fatalf("sessions = %T", res.Sessions)
	}
	if !seeded {
		t.Fatal("seeder did not see the session store")
	}
}

func TestRunRedisBackend(t *testing.T) {
	cfg := &coreconfig.Config{State: coreconfig.StateConfig{
		Backend:     coreconfig.StateBackendRedis,
		IdleTimeout: time.Hour,
		Redis:       coreconfig.RedisConfig{Addr: "localhost:6379", KeyPrefix: "p:"},
	}}
	res, err := Run(context.Background(), Options{
		Config:     cfg,
		LoggerInit: noLogger,
		ConnectRedis: func(_ context.Context, rc coreconfig.RedisConfig, _ time.Duration) (*redis.Client, error) {
			return redis.NewClient(&redis.Options{Addr: rc.Addr}), nil
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	defer res.Close()
	if _, ok := res.Sessions.(*state.RedisStore); !ok {
		t.Fatalf("sessions = %T", res.Sessions)
	}
}

func TestRunPropagatesFailures(t *testing.T) {
	boom := errors.New("boom")
	cfg := &coreconfig.Config{}

	if _, err := Run(context.Background(), Options{Config: cfg, LoggerInit: func(*coreconfig.Config) error { return boom }}); !errors.Is(err, boom) {
		t.Fatalf("logger failure: %v", err)
	}

	_, err := Run(context.Background(), Options{
		Config:     cfg,
		LoggerInit: noLogger,
		Database:   &coredatabase.Config{Host: "db"},
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			return nil, boom
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("connect failure: %v", err)
	}

	_, err = Run(context.Background(), Options{
		Config:     cfg,
		LoggerInit: noLogger,
		Modules:    Modules{Seeders: []Seeder{SeederFunc(func(context.Context, *Result) error { return boom })}},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("seeder failure: %v", err)
	}
}
