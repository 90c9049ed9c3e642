// Package app assembles configuration, infrastructure and bot handlers.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/linkbot/core/bootstrap"
	corecmd "github.com/m3rciful/linkbot/core/cmd"
	"github.com/m3rciful/linkbot/core/logger"
	tg "github.com/m3rciful/linkbot/core/telegram"
	"github.com/m3rciful/linkbot/core/telegram/router"
	"github.com/m3rciful/linkbot/internal/bot"
	"github.com/m3rciful/linkbot/internal/catalog"
	"github.com/m3rciful/linkbot/internal/notify"
	"github.com/m3rciful/linkbot/internal/order"

	tele "gopkg.in/telebot.v4"
)

var errBotNotStarted = errors.New("bot is not started")

// botRef forwards sends to the bot once RunTelegram has created it.
type botRef struct {
	bot atomic.Pointer[tele.Bot]
}

func (r *botRef) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	b := r.bot.Load()
	if b == nil {
		return nil, errBotNotStarted
	}
	return b.Send(to, what, opts...)
}

// App is the bootstrapped bot ready to run.
type App struct {
	cfg      *Config
	infra    *bootstrap.Result
	catalog  *catalog.Catalog
	handlers *bot.Handlers
	ref      *botRef
}

type runBootstrap func(context.Context, bootstrap.Options) (*bootstrap.Result, error)

// Bootstrap implements corecmd.Options.Bootstrap.
func Bootstrap(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	return newApp(ctx, cfg, bootstrap.Run)
}

func newApp(ctx context.Context, cfg *Config, run runBootstrap) (*App, error) {
	opts := bootstrap.Options{Config: &cfg.Config}
	if cfg.Catalog.Source == SourcePostgres {
		opts.Database = &cfg.Database
		opts.Migrations = catalog.Migrations
		opts.MigrationsDir = catalog.MigrationsDir
		opts.Modules.Seeders = append(opts.Modules.Seeders, presetSeeder(cfg.Catalog.Preset))
	}

	infra, err := run(ctx, opts)
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(ctx, cfg.Catalog, infra)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}

	a := &App{cfg: cfg, infra: infra, catalog: cat, ref: &botRef{}}
	notifier := notify.NewTelegram(a.ref, cfg.Telegram.AdminID, cfg.Orders.location())

	bopts := bot.Options{Catalog: cat, Notifier: notifier, Pinger: notifier}
	if cfg.Orders.Enabled {
		bopts.Store = infra.Sessions
		bopts.Flow = order.NewFlow(infra.Sessions)
	}
	a.handlers, err = bot.New(bopts)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}

	logger.Component("app").Info("app assembled",
		slog.String("event", "app.bootstrap"),
		slog.String("source", cfg.Catalog.Source),
		slog.String("preset", cat.Name()),
		slog.Int("count", cat.Len()),
		slog.Bool("orders", cfg.Orders.Enabled),
		slog.Bool("admin", notifier.Enabled()),
	)
	return a, nil
}

func presetSeeder(name string) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, res *bootstrap.Result) error {
		preset, err := catalog.Preset(name)
		if err != nil {
			return err
		}
		seeded, err := catalog.NewRepository(res.DB).Seed(ctx, preset)
		if err != nil {
			return err
		}
		if !seeded {
			logger.SEED.Debug("catalog tables not empty",
				slog.String("event", "db.seed"),
				slog.String("status", "skip"),
			)
		}
		return nil
	})
}

func loadCatalog(ctx context.Context, cc CatalogConfig, infra *bootstrap.Result) (*catalog.Catalog, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	switch cc.Source {
	case SourceFile:
		cat, err = catalog.LoadFile(cc.File)
	case SourcePostgres:
		if infra == nil || infra.DB == nil {
			return nil, fmt.Errorf("app: postgres catalog without database")
		}
		return catalog.NewRepository(infra.DB).Load(ctx)
	default:
		cat, err = catalog.Preset(cc.Preset)
	}
	if err != nil {
		return nil, fmt.Errorf("app: load catalog: %w", err)
	}
	logger.Catalog.Info("catalog loaded",
		slog.String("event", "catalog.load"),
		slog.String("source", cc.Source),
		slog.String("preset", cat.Name()),
		slog.Int("count", cat.Len()),
	)
	return cat, nil
}

// TelegramRunOptions wires registry, routes and middlewares.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	if err := a.handlers.Register(reg); err != nil {
		return tg.RunOptions{}, fmt.Errorf("app: register handlers: %w", err)
	}

	var fsm router.FSM
	if d := a.handlers.Dispatcher(); d != nil {
		fsm = d
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: a.handlers.OnAdminReject,
	})
	routes = append(routes, router.CallbackRoute(reg))
	routes = append(routes, router.TextRoutes(fsm, reg, router.TextOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: a.handlers.OnAdminReject,
	})...)

	return tg.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Config, a.handlers.OnRateLimited),
		Routes:      routes,
		ApologyText: bot.TextApology,
		OnStart: func(_ context.Context, rt tg.Runtime) error {
			a.ref.bot.Store(rt.Bot)
			a.handlers.SetUsername(rt.Bot.Me.Username)
			return nil
		},
		OnStop: func(context.Context, tg.Runtime) error {
			a.ref.bot.Store(nil)
			return nil
		},
	}, nil
}

// Close releases infrastructure connections.
func (a *App) Close() error {
	return a.infra.Close()
}
