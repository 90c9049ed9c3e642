package router

import (
	"strings"
	"time"

	tg "github.com/m3rciful/linkbot/core/telegram"
	"github.com/m3rciful/linkbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for an FSM manager.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions configures the admin gate applied to commands typed as text.
type TextOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// TextRoutes builds the OnText handler. Text that names a registered command
// runs that command even mid-conversation, admin-only ones behind the admin
// check. Other text goes to the FSM when the sender has an active state and
// is dropped otherwise.
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	adminOnly := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil && strings.HasPrefix(text, "/") {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				run := cmd.Handler
				if cmd.AdminOnly {
					run = adminOnly(run)
				}
				return handleWithSummary(c, "cmd."+normalizeHandlerName(key), start, "", "", func() error {
					return run(c)
				})
			}
		}

		if fsmMgr != nil && c.Sender() != nil && fsmMgr.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "fsm", start, "", "", func() error {
				return fsmMgr.ManagerHandler(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  handler,
		},
	}
}
