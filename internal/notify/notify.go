// Package notify delivers completed orders to the administrator chat.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/linkbot/core/logger"
	"github.com/m3rciful/linkbot/internal/order"

	tele "gopkg.in/telebot.v4"
)

// TimeLayout formats order timestamps in admin messages.
const TimeLayout = "15:04 02.01.2006"

const textPing = "🔔 Тестовое уведомление: канал администратора работает."

// ErrNoAdmin is returned by Ping when no administrator is configured.
var ErrNoAdmin = errors.New("admin chat is not configured")

// Notifier reports completed orders.
type Notifier interface {
	Notify(ctx context.Context, rec order.Record) error
}

// Sender is the part of *tele.Bot used for delivery.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Telegram sends plain-text summaries to a single admin chat.
type Telegram struct {
	bot      Sender
	adminID  int64
	location *time.Location
}

// NewTelegram builds a notifier. adminID 0 turns Notify into a no-op.
func NewTelegram(bot Sender, adminID int64, loc *time.Location) *Telegram {
	if loc == nil {
		loc = time.Local
	}
	return &Telegram{bot: bot, adminID: adminID, location: loc}
}

// Enabled reports whether an admin chat is configured.
func (t *Telegram) Enabled() bool {
	return t != nil && t.adminID != 0 && t.bot != nil
}

// Notify sends the order summary to the admin. Without an admin it only logs.
func (t *Telegram) Notify(ctx context.Context, rec order.Record) error {
	if !t.Enabled() {
		logger.LogEvent(ctx, logger.Notify, slog.LevelDebug, "notify.skip",
			slog.String("status", "skip"),
			slog.Int("order_number", rec.Number),
		)
		return nil
	}
	start := time.Now()
	_, err := t.bot.Send(tele.ChatID(t.adminID), Summary(rec, t.location))
	status, level := logger.Result(err)
	logger.LogEvent(ctx, logger.Notify, level, "notify.order",
		slog.String("status", status),
		slog.Int("order_number", rec.Number),
		slog.Int64("admin_id", t.adminID),
		slog.Duration("took", logger.Took(start)),
	)
	if err != nil {
		return fmt.Errorf("notify admin %d: %w", t.adminID, err)
	}
	return nil
}

// Ping sends a test message to the admin chat.
func (t *Telegram) Ping(ctx context.Context) error {
	if !t.Enabled() {
		return ErrNoAdmin
	}
	_, err := t.bot.Send(tele.ChatID(t.adminID), textPing)
	status, level := logger.Result(err)
	logger.LogEvent(ctx, logger.Notify, level, "notify.ping",
		slog.String("status", status),
		slog.Int64("admin_id", t.adminID),
	)
	if err != nil {
		return fmt.Errorf("ping admin %d: %w", t.adminID, err)
	}
	return nil
}

// Summary renders the admin message for rec.
func Summary(rec order.Record, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return fmt.Sprintf(`🚨 НОВЫЙ ЗАКАЗ!

Номер: %d
ФИО: %s
Телефон: %s
Заказ: %s
Клиент: %s (ID: %d)
Время: %s`,
		rec.Number, rec.FullName, rec.Phone, rec.Product,
		rec.Requester.DisplayName(), rec.Requester.ID,
		rec.CreatedAt.In(loc).Format(TimeLayout))
}
