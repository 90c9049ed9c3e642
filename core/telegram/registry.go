package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/linkbot/core/logger"
	"github.com/m3rciful/linkbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrInvalidRegistration is returned for empty keys or nil handlers.
	ErrInvalidRegistration = errors.New("invalid callback registration")
	// ErrUnhandledCallback is returned by a callback handler that matched a
	// prefix but does not know the payload. The router reports it like an
	// unknown key.
	ErrUnhandledCallback = errors.New("callback unhandled")
)

type prefixRoute struct {
	prefix  string
	handler tele.HandlerFunc
}

// Registry holds bot commands and callbacks.
type Registry struct {
	commands     map[string]commands.Command
	commandOrder []string

	callbacksMu sync.RWMutex
	callbacks   map[string]tele.HandlerFunc
	prefixes    []prefixRoute
}

// NewRegistry creates an empty Registry. Unknown callbacks resolve to no
// handler; the router logs them as unhandled.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		callbacks: make(map[string]tele.HandlerFunc),
	}
}

// RegisterCommand adds a new command. Registration order is kept for menus.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	if r == nil || name == "" || cmd.Handler == nil || cmd.Description == "" {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("cmd", name),
			slog.String("cause", "invalid"),
		)
		return
	}
	if name[0] != '/' {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("cmd", name),
			slog.String("cause", "no_slash_prefix"),
		)
		return
	}
	if _, exists := r.commands[name]; exists {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.duplicate",
			slog.String("cmd", name),
		)
		return
	}
	r.commands[name] = cmd
	r.commandOrder = append(r.commandOrder, name)
}

// ListCommands returns commands in registration order, optionally filtering out hidden and admin-only ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	list := make([]tele.Command, 0, len(r.commandOrder))
	for _, name := range r.commandOrder {
		meta := r.commands[name]
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: meta.Description})
	}
	return list
}

// LookupCommand searches for a command by name or its aliases and returns the canonical key with metadata if found.
// A trailing @botname mention is ignored.
func (r *Registry) LookupCommand(text string) (string, commands.Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", commands.Command{}, false
	}
	name, _, _ := strings.Cut(fields[0], "@")
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for _, key := range r.commandOrder {
		cmd := r.commands[key]
		for _, alias := range cmd.Aliases {
			if alias == name || "/"+alias == name {
				return key, cmd, true
			}
		}
	}
	return "", commands.Command{}, false
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// CommandNames returns canonical command names in registration order.
func (r *Registry) CommandNames() []string {
	return append([]string(nil), r.commandOrder...)
}

// RegisterCallback adds a callback handler matched by exact key.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if r == nil || key == "" || handler == nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.callback.skip",
			slog.String("cb_key", key),
			slog.Bool("handler_nil", handler == nil),
		)
		return ErrInvalidRegistration
	}
	r.callbacksMu.Lock()
	defer r.callbacksMu.Unlock()
	if _, exists := r.callbacks[key]; exists {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.callback.duplicate",
			slog.String("cb_key", key),
		)
		return fmt.Errorf("callback already registered: %s", key)
	}
	r.callbacks[key] = handler
	return nil
}

// RegisterCallbackPrefix adds a handler for every key starting with prefix.
// Exact keys win over prefixes; among prefixes the longest wins.
func (r *Registry) RegisterCallbackPrefix(prefix string, handler tele.HandlerFunc) error {
	if r == nil || prefix == "" || handler == nil {
		return ErrInvalidRegistration
	}
	r.callbacksMu.Lock()
	defer r.callbacksMu.Unlock()
	for _, p := range r.prefixes {
		if p.prefix == prefix {
			return fmt.Errorf("callback prefix already registered: %s", prefix)
		}
	}
	r.prefixes = append(r.prefixes, prefixRoute{prefix: prefix, handler: handler})
	sort.SliceStable(r.prefixes, func(i, j int) bool {
		return len(r.prefixes[i].prefix) > len(r.prefixes[j].prefix)
	})
	return nil
}

// ResolveCallback finds the handler for key. For prefix matches rest holds
// the remainder of the key after the prefix.
func (r *Registry) ResolveCallback(key string) (h tele.HandlerFunc, rest string, ok bool) {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	if h, ok := r.callbacks[key]; ok {
		return h, "", true
	}
	for _, p := range r.prefixes {
		if rest, found := strings.CutPrefix(key, p.prefix); found && rest != "" {
			return p.handler, rest, true
		}
	}
	return nil, "", false
}

// ListCallbacks returns sorted keys (for diagnostics). Prefixes end with '*'.
func (r *Registry) ListCallbacks() []string {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	names := make([]string, 0, len(r.callbacks)+len(r.prefixes))
	for k := range r.callbacks {
		names = append(names, k)
	}
	for _, p := range r.prefixes {
		names = append(names, p.prefix+"*")
	}
	sort.Strings(names)
	return names
}

// CommandSetter is the part of *tele.Bot used to publish the command menu.
type CommandSetter interface {
	SetCommands(opts ...interface{}) error
}

// InitBotCommands sets the Telegram bot commands shown in the command menu.
func InitBotCommands(bot CommandSetter, reg *Registry) {
	list := reg.ListCommands(true)
	if err := bot.SetCommands(list); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TWire.LogAttrs(context.Background(), slog.LevelDebug, "register.commands.published",
		slog.Int("count", len(list)),
	)
}
