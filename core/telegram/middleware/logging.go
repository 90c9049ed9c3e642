package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/linkbot/core/logger"
	"github.com/m3rciful/linkbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/linkbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers update ids logged recently, so an update passing
// through several middleware branches is reported once.
type seenUpdates struct {
	mu   sync.Mutex
	keep time.Duration
	ids  map[int]time.Time
}

var received = &seenUpdates{keep: 10 * time.Second, ids: make(map[int]time.Time)}

// first reports whether id was not seen within keep, and records it.
func (s *seenUpdates) first(id int, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for old, at := range s.ids {
		if now.Sub(at) > s.keep {
			delete(s.ids, old)
		}
	}
	if _, dup := s.ids[id]; dup {
		return false
	}
	s.ids[id] = now
	return true
}

// LoggerMiddleware builds the per-update logging context (rid, update, user
// and chat ids) and logs one sampled debug line per received update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.NewUpdateContext(c)
		upd := c.Update()
		if logger.ShouldSampleDebug() && received.first(upd.ID, time.Now()) {
			logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "update.received", receiptAttrs(c, upd)...)
		}
		return next(c)
	}
}

func receiptAttrs(c tele.Context, upd tele.Update) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok")}
	if u := c.Sender(); u != nil && u.Username != "" {
		attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
	}
	switch {
	case upd.Callback != nil:
		key, payload := callbacks.ParseCallbackData(upd.Callback)
		if key != "" {
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 64)))
		}
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
	case upd.Message != nil:
		if t := c.Text(); t != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
		}
	}
	return attrs
}
