package router

import (
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/linkbot/core/logger"
	tg "github.com/m3rciful/linkbot/core/telegram"
	"github.com/m3rciful/linkbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes prepares command handlers, including one route per alias.
// Admin-only commands are wrapped with the admin check.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	adminOnly := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	var routes []tg.Route
	for _, cmd := range reg.CommandNames() {
		def := reg.Commands()[cmd]
		name := normalizeHandlerName(cmd)
		inner := def.Handler
		if def.AdminOnly {
			inner = adminOnly(inner)
		}
		h := func(c tele.Context) error {
			return handleWithSummary(c, "cmd."+name, time.Now(), "", "", func() error {
				return inner(c)
			}, slog.String("cmd", cmd))
		}
		routes = append(routes, tg.Route{Endpoint: cmd, Handler: h})
		for _, alias := range def.Aliases {
			if !strings.HasPrefix(alias, "/") {
				alias = "/" + alias
			}
			routes = append(routes, tg.Route{Endpoint: alias, Handler: h})
		}
	}

	logger.TWire.Info("routes wired",
		slog.String("event", "tg.wire"),
		slog.Int("count", len(routes)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
