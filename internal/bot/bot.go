// Package bot binds the link catalog and the order form to Telegram
// commands and callbacks.
package bot

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	tg "github.com/m3rciful/linkbot/core/telegram"
	"github.com/m3rciful/linkbot/core/telegram/commands"
	"github.com/m3rciful/linkbot/core/telegram/format"
	tghelpers "github.com/m3rciful/linkbot/core/telegram/helpers"
	"github.com/m3rciful/linkbot/core/telegram/state"
	"github.com/m3rciful/linkbot/internal/catalog"
	"github.com/m3rciful/linkbot/internal/notify"
	"github.com/m3rciful/linkbot/internal/order"

	tele "gopkg.in/telebot.v4"
)

// Pinger checks the admin channel.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options wire the handlers to their collaborators.
type Options struct {
	Catalog *catalog.Catalog
	// Flow enables /order and /cancel; nil leaves the bot menu-only.
	Flow     *order.Flow
	Store    state.Store
	Notifier notify.Notifier
	Pinger   Pinger
}

// Handlers holds every Telegram handler of the bot.
type Handlers struct {
	catalog  *catalog.Catalog
	flow     *order.Flow
	store    state.Store
	notifier notify.Notifier
	pinger   Pinger

	reg      *tg.Registry
	username atomic.Value
}

// New builds the handler set. Catalog is required.
func New(opts Options) (*Handlers, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("bot: catalog is required")
	}
	if opts.Flow != nil && opts.Store == nil {
		return nil, fmt.Errorf("bot: orders need a session store")
	}
	h := &Handlers{
		catalog:  opts.Catalog,
		flow:     opts.Flow,
		store:    opts.Store,
		notifier: opts.Notifier,
		pinger:   opts.Pinger,
	}
	h.username.Store("")
	return h, nil
}

// SetUsername records the bot's @username once the bot is connected.
func (h *Handlers) SetUsername(name string) {
	h.username.Store(strings.TrimPrefix(name, "@"))
}

func (h *Handlers) botUsername() string {
	name, _ := h.username.Load().(string)
	return name
}

func (h *Handlers) ordersEnabled() bool {
	return h.flow != nil
}

// Register adds commands and callbacks to reg.
func (h *Handlers) Register(reg *tg.Registry) error {
	h.reg = reg

	list := h.catalog.ListCommand()
	var aliases []string
	for _, a := range []string{"links", "contacts"} {
		if a != list {
			aliases = append(aliases, a)
		}
	}

	reg.RegisterCommand("/start", commands.Command{Handler: h.onStart, Description: descStart})
	reg.RegisterCommand("/"+list, commands.Command{Handler: h.onList, Description: descList, Aliases: aliases})
	reg.RegisterCommand("/help", commands.Command{Handler: h.onHelp, Description: descHelp})
	reg.RegisterCommand("/share", commands.Command{Handler: h.onShare, Description: descShare})
	if h.ordersEnabled() {
		reg.RegisterCommand("/order", commands.Command{Handler: h.onOrder, Description: descOrder})
		reg.RegisterCommand("/cancel", commands.Command{Handler: h.onCancel, Description: descCancel})
	}
	reg.RegisterCommand("/notifytest", commands.Command{
		Handler:     h.onNotifyTest,
		Description: descNotifyTest,
		AdminOnly:   true,
		Hidden:      true,
	})

	exact := map[string]tele.HandlerFunc{
		CbAll:   h.onAll,
		CbBack:  h.onBack,
		CbHelp:  h.onHelpCallback,
		CbShare: h.onShareCallback,
	}
	if h.ordersEnabled() {
		exact[CbNewOrder] = h.onOrder
		exact[CbCancelOrder] = h.onCancel
	}
	for key, fn := range exact {
		if err := reg.RegisterCallback(key, fn); err != nil {
			return err
		}
	}
	if err := reg.RegisterCallbackPrefix(CbCategoryPrefix, h.onCategory); err != nil {
		return err
	}
	return reg.RegisterCallbackPrefix(CbOpenAllPrefix, h.onOpenAll)
}

// Dispatcher routes form answers to the order flow.
func (h *Handlers) Dispatcher() *state.Dispatcher {
	if !h.ordersEnabled() {
		return nil
	}
	d := state.NewDispatcher(h.store)
	for _, st := range []state.State{order.StateAwaitingName, order.StateAwaitingPhone, order.StateAwaitingProduct} {
		d.RegisterHandler(st, h.onOrderInput)
	}
	return d
}

// OnAdminReject answers non-admins calling admin commands.
func (h *Handlers) OnAdminReject(c tele.Context) error {
	return tghelpers.SendText(c, textAdminOnly)
}

// OnRateLimited answers throttled messages.
func (h *Handlers) OnRateLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: textRateLimited})
	}
	return tghelpers.SendText(c, textRateLimited)
}

func firstName(c tele.Context) string {
	if u := c.Sender(); u != nil && u.FirstName != "" {
		return format.EscapeV1(u.FirstName)
	}
	return "друг"
}

// unhandled reports a callback whose payload matched a route but names
// nothing the catalog knows.
func unhandled(cause string) error {
	return fmt.Errorf("%s: %w", cause, tg.ErrUnhandledCallback)
}
