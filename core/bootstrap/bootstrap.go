package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	coreconfig "github.com/m3rciful/linkbot/core/config"
	coredatabase "github.com/m3rciful/linkbot/core/database"
	"github.com/m3rciful/linkbot/core/logger"
	"github.com/m3rciful/linkbot/core/telegram/state"
)

// Options control the generic bootstrap pipeline.
type Options struct {
	Config *coreconfig.Config

	// Database is optional; nil skips PostgreSQL entirely.
	Database      *coredatabase.Config
	Migrations    fs.FS
	MigrationsDir string

	Modules Modules

	LoggerInit   func(*coreconfig.Config) error
	Connect      func(context.Context, coredatabase.Config) (*sqlx.DB, error)
	Migrate      func(coredatabase.Config, fs.FS, string) error
	ConnectRedis func(context.Context, coreconfig.RedisConfig, time.Duration) (*redis.Client, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB    *sqlx.DB
	Redis *redis.Client
	// Sessions is the conversation store selected by state.backend.
	Sessions state.Store
}

// Close releases connections opened by Run.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.DB != nil {
		errs = append(errs, r.DB.Close())
	}
	if r.Redis != nil {
		errs = append(errs, r.Redis.Close())
	}
	return errors.Join(errs...)
}

// Run initializes the logger, optional PostgreSQL (connect, migrate, seed)
// and the conversation store.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	res := &Result{}
	if opts.Database != nil {
		if err := openDatabase(ctx, opts, res); err != nil {
			_ = res.Close()
			return nil, err
		}
	}

	sessions, err := openSessions(ctx, opts, res)
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	res.Sessions = sessions

	for i, s := range opts.Modules.Seeders {
		if err := s.Seed(ctx, res); err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("bootstrap: seeder %d failed: %w", i, err)
		}
	}
	return res, nil
}

func openDatabase(ctx context.Context, opts Options, res *Result) error {
	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(ctx, *opts.Database)
	if err != nil {
		return fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	res.DB = db

	if opts.Migrations == nil {
		return nil
	}
	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if err := migrate(*opts.Database, opts.Migrations, opts.MigrationsDir); err != nil {
		return fmt.Errorf("bootstrap: migrations failed: %w", err)
	}
	return nil
}

func openSessions(ctx context.Context, opts Options, res *Result) (state.Store, error) {
	sc := opts.Config.State
	if sc.Backend != coreconfig.StateBackendRedis {
		store := state.NewMemoryStore(sc.IdleTimeout)
		if sc.IdleTimeout > 0 {
			go store.RunSweeper(ctx, sc.IdleTimeout)
		}
		logStore(coreconfig.StateBackendMemory, sc.IdleTimeout)
		return store, nil
	}

	connect := opts.ConnectRedis
	if connect == nil {
		connect = coredatabase.ConnectRedis
	}
	client, err := connect(ctx, sc.Redis, 0)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: redis initialization failed: %w", err)
	}
	res.Redis = client
	logStore(coreconfig.StateBackendRedis, sc.IdleTimeout)
	return state.NewRedisStore(client, sc.Redis.KeyPrefix, sc.IdleTimeout), nil
}

func logStore(backend string, idle time.Duration) {
	logger.State.Info("session store ready",
		slog.String("event", "state.ready"),
		slog.String("backend", backend),
		slog.Duration("idle_timeout", idle),
	)
}
