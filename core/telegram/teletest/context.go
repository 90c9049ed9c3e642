// Package teletest provides an in-memory tele.Context for handler tests.
package teletest

import (
	"sync"

	tele "gopkg.in/telebot.v4"
)

// Outgoing is one message sent or edited through a Context.
type Outgoing struct {
	Text   string
	Edited bool
	Opts   []any
}

// Markup returns the reply markup attached to the message, if any.
func (o Outgoing) Markup() *tele.ReplyMarkup {
	for _, opt := range o.Opts {
		switch v := opt.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return v.ReplyMarkup
			}
		case *tele.ReplyMarkup:
			return v
		}
	}
	return nil
}

// Context implements the subset of tele.Context used by handlers. Calling
// any other method panics through the nil embedded interface.
type Context struct {
	tele.Context

	mu        sync.Mutex
	update    tele.Update
	store     map[string]any
	Out       []Outgoing
	Responded int
	SendErr   error
}

// NewText builds a context for a text message from user.
func NewText(updateID int, user *tele.User, text string) *Context {
	return &Context{
		update: tele.Update{
			ID: updateID,
			Message: &tele.Message{
				ID:     updateID,
				Sender: user,
				Chat:   &tele.Chat{ID: user.ID, Type: tele.ChatPrivate},
				Text:   text,
			},
		},
		store: make(map[string]any),
	}
}

// NewCallback builds a context for an inline button press carrying data.
func NewCallback(updateID int, user *tele.User, data string) *Context {
	return &Context{
		update: tele.Update{
			ID: updateID,
			Callback: &tele.Callback{
				ID:     "cb",
				Sender: user,
				Data:   data,
				Message: &tele.Message{
					ID:   updateID,
					Chat: &tele.Chat{ID: user.ID, Type: tele.ChatPrivate},
				},
			},
		},
		store: make(map[string]any),
	}
}

func (c *Context) Update() tele.Update { return c.update }

func (c *Context) Message() *tele.Message {
	if c.update.Message != nil {
		return c.update.Message
	}
	if c.update.Callback != nil {
		return c.update.Callback.Message
	}
	return nil
}

func (c *Context) Callback() *tele.Callback { return c.update.Callback }

func (c *Context) Sender() *tele.User {
	switch {
	case c.update.Callback != nil:
		return c.update.Callback.Sender
	case c.update.Message != nil:
		return c.update.Message.Sender
	}
	return nil
}

func (c *Context) Chat() *tele.Chat {
	if m := c.Message(); m != nil {
		return m.Chat
	}
	return nil
}

func (c *Context) Text() string {
	if c.update.Message != nil {
		return c.update.Message.Text
	}
	return ""
}

func (c *Context) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key]
}

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = val
}

func (c *Context) record(what any, edited bool, opts []any) error {
	if c.SendErr != nil {
		return c.SendErr
	}
	text, _ := what.(string)
	c.mu.Lock()
	c.Out = append(c.Out, Outgoing{Text: text, Edited: edited, Opts: opts})
	c.mu.Unlock()
	return nil
}

func (c *Context) Send(what any, opts ...any) error { return c.record(what, false, opts) }

func (c *Context) Edit(what any, opts ...any) error { return c.record(what, true, opts) }

func (c *Context) EditOrSend(what any, opts ...any) error {
	return c.record(what, c.update.Callback != nil, opts)
}

func (c *Context) Respond(...*tele.CallbackResponse) error {
	c.Responded++
	return nil
}

// Last returns the most recent outgoing message.
func (c *Context) Last() Outgoing {
	if len(c.Out) == 0 {
		return Outgoing{}
	}
	return c.Out[len(c.Out)-1]
}
