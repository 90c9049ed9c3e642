package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/m3rciful/linkbot/core/logger"
	"github.com/m3rciful/linkbot/core/telegram/state"
)

// FSM events.
const (
	EventStart   = "start"
	EventName    = "name"
	EventPhone   = "phone"
	EventProduct = "product"
	EventCancel  = "cancel"
)

var awaiting = []string{
	string(StateAwaitingName),
	string(StateAwaitingPhone),
	string(StateAwaitingProduct),
}

var events = fsm.Events{
	{Name: EventStart, Src: append([]string{string(state.StateIdle)}, awaiting...), Dst: string(StateAwaitingName)},
	{Name: EventName, Src: []string{string(StateAwaitingName)}, Dst: string(StateAwaitingPhone)},
	{Name: EventPhone, Src: []string{string(StateAwaitingPhone)}, Dst: string(StateAwaitingProduct)},
	{Name: EventProduct, Src: []string{string(StateAwaitingProduct)}, Dst: string(state.StateIdle)},
	{Name: EventCancel, Src: awaiting, Dst: string(state.StateIdle)},
}

type step struct {
	event  string
	field  string
	prompt string
}

var steps = map[state.State]step{
	StateAwaitingName:    {event: EventName, field: KeyFullName, prompt: textPromptName},
	StateAwaitingPhone:   {event: EventPhone, field: KeyPhone, prompt: textPromptPhone},
	StateAwaitingProduct: {event: EventProduct, field: KeyProduct, prompt: textPromptProduct},
}

// Flow drives the order form. Each operation loads the user's session,
// fires one FSM event and stores the result under a single lock.
type Flow struct {
	store   state.Store
	mu      sync.Mutex
	numbers func() int
	now     func() time.Time
}

// Option customizes a Flow.
type Option func(*Flow)

// WithNumbers replaces the order number generator.
func WithNumbers(gen func() int) Option {
	return func(f *Flow) {
		if gen != nil {
			f.numbers = gen
		}
	}
}

// WithClock replaces time.Now for order timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFlow builds a flow over store.
func NewFlow(store state.Store, opts ...Option) *Flow {
	f := &Flow{store: store, numbers: RandomNumber, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func newMachine(current state.State) *fsm.FSM {
	if current == "" {
		current = state.StateIdle
	}
	return fsm.NewFSM(string(current), events, fsm.Callbacks{
		"enter_state": func(ctx context.Context, e *fsm.Event) {
			logger.LogEvent(ctx, logger.Order, slog.LevelDebug, "order.transition",
				slog.String("cmd", e.Event),
				slog.String("from", e.Src),
				slog.String("to", e.Dst),
			)
		},
	})
}

// fire runs event and treats a self transition as success.
func fire(ctx context.Context, m *fsm.FSM, event string) error {
	err := m.Event(ctx, event)
	var same fsm.NoTransitionError
	if err == nil || errors.As(err, &same) {
		return nil
	}
	return err
}

// InProgress reports whether userID is somewhere inside the form.
func (f *Flow) InProgress(ctx context.Context, userID int64) bool {
	sess, err := f.store.Get(ctx, userID)
	if err != nil {
		logger.LogEvent(ctx, logger.Order, slog.LevelWarn, "order.session",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return false
	}
	_, ok := steps[sess.State]
	return ok
}

// Start opens the form with an empty draft. Starting again mid-form restarts it.
func (f *Flow) Start(ctx context.Context, userID int64) (Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sess, err := f.store.Get(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("load session: %w", err)
	}
	restarted := sess.Active()
	m := newMachine(sess.State)
	if err := fire(ctx, m, EventStart); err != nil {
		return Reply{}, fmt.Errorf("start order: %w", err)
	}
	sess.Reset()
	sess.State = state.State(m.Current())
	if err := f.store.Save(ctx, userID, sess); err != nil {
		return Reply{}, fmt.Errorf("save session: %w", err)
	}
	logger.LogEvent(ctx, logger.Order, slog.LevelInfo, "order.start",
		slog.String("outcome", string(OutcomePrompt)),
		slog.Bool("restarted", restarted),
	)
	return Reply{Outcome: OutcomePrompt, State: sess.State, Text: textPromptName}, nil
}

// Input records text for the current step and advances the form. The last
// step returns OutcomeCompleted with the Record and clears the session.
func (f *Flow) Input(ctx context.Context, req Requester, text string) (Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sess, err := f.store.Get(ctx, req.ID)
	if err != nil {
		return Reply{}, fmt.Errorf("load session: %w", err)
	}
	cur, ok := steps[sess.State]
	if !ok {
		return Reply{}, ErrNotInProgress
	}

	if strings.TrimSpace(text) == "" {
		return Reply{Outcome: OutcomeReprompt, State: sess.State, Text: textEmptyInput + cur.prompt}, nil
	}
	if cur.event == EventProduct && (sess.Data[KeyFullName] == "" || sess.Data[KeyPhone] == "") {
		_ = f.store.Delete(ctx, req.ID)
		return Reply{}, ErrBrokenDraft
	}

	m := newMachine(sess.State)
	if err := fire(ctx, m, cur.event); err != nil {
		return Reply{}, fmt.Errorf("order %s: %w", cur.event, err)
	}
	sess.Data[cur.field] = text
	next := state.State(m.Current())

	if next == state.StateIdle {
		rec := Record{
			Number:    f.numbers(),
			FullName:  sess.Data[KeyFullName],
			Phone:     sess.Data[KeyPhone],
			Product:   sess.Data[KeyProduct],
			Requester: req,
			CreatedAt: f.now(),
		}
		if err := f.store.Delete(ctx, req.ID); err != nil {
			return Reply{}, fmt.Errorf("clear session: %w", err)
		}
		logger.LogEvent(ctx, logger.Order, slog.LevelInfo, "order.completed",
			slog.String("outcome", string(OutcomeCompleted)),
			slog.Int("order_number", rec.Number),
		)
		return Reply{Outcome: OutcomeCompleted, State: next, Text: Confirmation(rec), Record: &rec}, nil
	}

	sess.State = next
	if err := f.store.Save(ctx, req.ID, sess); err != nil {
		return Reply{}, fmt.Errorf("save session: %w", err)
	}
	return Reply{Outcome: OutcomePrompt, State: next, Text: steps[next].prompt}, nil
}

// Cancel drops the draft. Idle users get OutcomeNothingToCancel.
func (f *Flow) Cancel(ctx context.Context, userID int64) (Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sess, err := f.store.Get(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("load session: %w", err)
	}
	if _, ok := steps[sess.State]; !ok {
		return Reply{Outcome: OutcomeNothingToCancel, State: state.StateIdle, Text: textNothing}, nil
	}
	from := sess.State
	m := newMachine(sess.State)
	if err := fire(ctx, m, EventCancel); err != nil {
		return Reply{}, fmt.Errorf("cancel order: %w", err)
	}
	if err := f.store.Delete(ctx, userID); err != nil {
		return Reply{}, fmt.Errorf("clear session: %w", err)
	}
	logger.LogEvent(ctx, logger.Order, slog.LevelInfo, "order.cancel",
		slog.String("outcome", string(OutcomeCancelled)),
		slog.String("from", string(from)),
	)
	return Reply{Outcome: OutcomeCancelled, State: state.StateIdle, Text: textCancelled}, nil
}

// Prompt returns the question for st, or "" outside the form.
func Prompt(st state.State) string {
	return steps[st].prompt
}
