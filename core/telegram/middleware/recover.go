package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/linkbot/core/logger"
	tghelpers "github.com/m3rciful/linkbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// ErrPanic wraps a value recovered from a handler panic.
type ErrPanic struct {
	Value any
}

func (e *ErrPanic) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

// RecoverMiddleware turns handler panics into *ErrPanic so the bot's error
// hook can answer the user instead of the process crashing.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelError, "tg.panic",
					slog.String("status", "fail"),
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
				err = &ErrPanic{Value: r}
			}
		}()
		return next(c)
	}
}
