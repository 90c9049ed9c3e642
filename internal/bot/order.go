package bot

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/linkbot/core/logger"
	tghelpers "github.com/m3rciful/linkbot/core/telegram/helpers"
	"github.com/m3rciful/linkbot/core/telegram/keyboard"
	"github.com/m3rciful/linkbot/internal/notify"
	"github.com/m3rciful/linkbot/internal/order"

	tele "gopkg.in/telebot.v4"
)

func requester(c tele.Context) order.Requester {
	u := c.Sender()
	if u == nil {
		return order.Requester{}
	}
	return order.Requester{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

// Form messages carry user input and go out without a parse mode.
func sendPlain(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	return tghelpers.SendText(c, text, &tele.SendOptions{ReplyMarkup: markup})
}

func (h *Handlers) onOrder(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	reply, err := h.flow.Start(tghelpers.BuildContext(c), c.Sender().ID)
	if err != nil {
		return err
	}
	return sendPlain(c, reply.Text, cancelMenu())
}

func (h *Handlers) onCancel(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	reply, err := h.flow.Cancel(tghelpers.BuildContext(c), c.Sender().ID)
	if err != nil {
		return err
	}
	return sendPlain(c, reply.Text, keyboard.InlineButtons(backButton(btnOpenMenu)))
}

func (h *Handlers) onOrderInput(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply, err := h.flow.Input(ctx, requester(c), c.Text())
	switch {
	case errors.Is(err, order.ErrNotInProgress):
		return nil
	case errors.Is(err, order.ErrBrokenDraft):
		logger.LogEvent(ctx, logger.Order, slog.LevelWarn, "order.broken_draft",
			slog.String("status", "fail"),
		)
		return sendPlain(c, textBrokenDraft, nil)
	case err != nil:
		return err
	}

	if reply.Outcome != order.OutcomeCompleted {
		return sendPlain(c, reply.Text, cancelMenu())
	}

	// The user's confirmation goes out first; the admin copy is best effort.
	if err := sendPlain(c, reply.Text, keyboard.InlineButtons(backButton(btnOpenMenu))); err != nil {
		return err
	}
	if h.notifier == nil {
		return nil
	}
	if err := h.notifier.Notify(ctx, *reply.Record); err != nil {
		logger.LogEvent(ctx, logger.Notify, slog.LevelWarn, "notify.failed",
			slog.String("status", "fail"),
			slog.Int("order_number", reply.Record.Number),
			slog.String("err", err.Error()),
		)
	}
	return nil
}

func (h *Handlers) onNotifyTest(c tele.Context) error {
	if h.pinger == nil {
		return tghelpers.SendText(c, textPingNoAdmin)
	}
	err := h.pinger.Ping(tghelpers.BuildContext(c))
	switch {
	case errors.Is(err, notify.ErrNoAdmin):
		return tghelpers.SendText(c, textPingNoAdmin)
	case err != nil:
		return tghelpers.SendText(c, fmt.Sprintf(textPingFailed, err.Error()))
	}
	return tghelpers.SendText(c, textPingOK)
}
