package router

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/linkbot/core/logger"
	tg "github.com/m3rciful/linkbot/core/telegram"
	"github.com/m3rciful/linkbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/linkbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute returns a handler that routes callbacks through the registry.
// The callback is acknowledged before dispatch. Keys nobody registered, and
// handlers returning tg.ErrUnhandledCallback, are logged once at WARN as
// unhandled and send nothing else.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		key, _ := callbacks.ParseCallbackData(c.Callback())
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", logger.SanitizeLimit(key, 64))}

		_ = c.Respond()

		cbHandler, rest, ok := reg.ResolveCallback(key)
		if !ok || cbHandler == nil {
			reportUnhandled(c, name, "unknown_key")
			logHandlerSummary(c, name, start, "unhandled", "unhandled", nil, extras...)
			return nil
		}
		if rest != "" {
			callbacks.SetPayload(c, rest)
		}

		tghelpers.WithHandler(c, name)
		err := cbHandler(c)
		if errors.Is(err, tg.ErrUnhandledCallback) {
			reportUnhandled(c, name, unhandledCause(err))
			logHandlerSummary(c, name, start, "unhandled", "unhandled", nil, extras...)
			return nil
		}
		logHandlerSummary(c, name, start, "", "", err, extras...)
		return err
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  handler,
	}
}

func reportUnhandled(c tele.Context, name, cause string) {
	logger.LogEvent(tghelpers.WithHandler(c, name), logger.TG, slog.LevelWarn, "callback.unhandled",
		slog.String("status", "unhandled"),
		slog.String("payload", logger.SanitizeLimit(c.Callback().Data, 64)),
		slog.String("cause", cause),
	)
}

// unhandledCause extracts the text a handler wrapped around the sentinel.
func unhandledCause(err error) string {
	if cause, ok := strings.CutSuffix(err.Error(), ": "+tg.ErrUnhandledCallback.Error()); ok && cause != "" {
		return cause
	}
	return "handler"
}
