package middleware

import (
	tele "gopkg.in/telebot.v4"
)

const countersKey = "send_counters"

// SendCounters tallies what a handler sent back for one update.
type SendCounters struct {
	Sent     int
	Edited   int
	Keyboard bool
}

// Messages is the number of messages sent or edited.
func (s SendCounters) Messages() int { return s.Sent + s.Edited }

// countingContext forwards outgoing calls and records the successful ones.
type countingContext struct {
	tele.Context
	n *SendCounters
}

func (c countingContext) track(edited bool, opts []any, err error) error {
	if err != nil {
		return err
	}
	if edited {
		c.n.Edited++
	} else {
		c.n.Sent++
	}
	if !c.n.Keyboard && withMarkup(opts) {
		c.n.Keyboard = true
	}
	return nil
}

func withMarkup(opts []any) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (c countingContext) Send(what any, opts ...any) error {
	return c.track(false, opts, c.Context.Send(what, opts...))
}

func (c countingContext) Reply(what any, opts ...any) error {
	return c.track(false, opts, c.Context.Reply(what, opts...))
}

func (c countingContext) Edit(what any, opts ...any) error {
	return c.track(true, opts, c.Context.Edit(what, opts...))
}

// EditOrSend counts as an edit for callbacks, where telebot edits in place.
func (c countingContext) EditOrSend(what any, opts ...any) error {
	return c.track(c.Callback() != nil, opts, c.Context.EditOrSend(what, opts...))
}

func (c countingContext) EditOrReply(what any, opts ...any) error {
	return c.track(c.Callback() != nil, opts, c.Context.EditOrReply(what, opts...))
}

// MessageMetricsMiddleware counts messages each handler sends or edits.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		n := &SendCounters{}
		c.Set(countersKey, n)
		return next(countingContext{Context: c, n: n})
	}
}

// Counters returns the tallies for the current update; zero without the middleware.
func Counters(c tele.Context) SendCounters {
	if n, ok := c.Get(countersKey).(*SendCounters); ok && n != nil {
		return *n
	}
	return SendCounters{}
}
