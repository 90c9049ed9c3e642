package state

import (
	"context"
	"log/slog"

	"github.com/m3rciful/linkbot/core/logger"
	tghelpers "github.com/m3rciful/linkbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Dispatcher routes free text to the handler registered for the sender's
// current conversation state.
type Dispatcher struct {
	store    Store
	handlers map[State]tele.HandlerFunc
}

// NewDispatcher builds a Dispatcher reading states from store.
func NewDispatcher(store Store) *Dispatcher {
	return &Dispatcher{store: store, handlers: make(map[State]tele.HandlerFunc)}
}

// RegisterHandler associates a state with its handler.
func (d *Dispatcher) RegisterHandler(st State, h tele.HandlerFunc) {
	if h == nil || st == StateIdle {
		return
	}
	d.handlers[st] = h
}

// InProgress reports whether the user has an active state with a handler.
func (d *Dispatcher) InProgress(userID int64) bool {
	sess, err := d.store.Get(context.Background(), userID)
	if err != nil {
		logger.State.Warn("session lookup failed",
			slog.String("event", "state.get"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return false
	}
	_, ok := d.handlers[sess.State]
	return ok
}

// ManagerHandler executes the handler registered for the user's current state, if any.
func (d *Dispatcher) ManagerHandler(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sess, err := d.store.Get(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	logger.Debug(ctx, "state", "state.dispatch",
		slog.String("status", "ok"),
		slog.String("state", string(sess.State)),
	)
	if h, ok := d.handlers[sess.State]; ok {
		return h(c)
	}
	return nil
}
