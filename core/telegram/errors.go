package telegram

import (
	"log/slog"

	"github.com/m3rciful/linkbot/core/logger"
	tghelpers "github.com/m3rciful/linkbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// ErrorReporter returns a bot error hook that logs the error and, when the
// update has a chat, answers with apology. Conversation state is not touched.
func ErrorReporter(apology string) func(error, tele.Context) {
	return func(err error, c tele.Context) {
		if c == nil {
			logger.TG.Error("bot error",
				slog.String("event", "tg.error"),
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
			return
		}
		ctx := tghelpers.BuildContext(c)
		logger.LogEvent(ctx, logger.TG, slog.LevelError, "tg.error",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		if apology == "" || c.Chat() == nil {
			return
		}
		if sendErr := c.Send(apology); sendErr != nil {
			logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "tg.error.reply_failed",
				slog.String("status", "fail"),
				slog.String("err", sendErr.Error()),
			)
		}
	}
}
