package middleware

import (
	"log/slog"

	"github.com/m3rciful/linkbot/core/logger"
	tghelpers "github.com/m3rciful/linkbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware lets only the configured admin reach downstream handlers.
// With no admin configured nobody passes.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if opts.AdminID != 0 && sender != nil && sender.ID == opts.AdminID {
				return next(c)
			}
			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "tg.admin_reject",
				slog.String("status", "skip"),
				slog.Int64("admin_id", opts.AdminID),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
