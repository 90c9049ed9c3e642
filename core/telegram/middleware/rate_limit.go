package middleware

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m3rciful/linkbot/core/logger"
	tghelpers "github.com/m3rciful/linkbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Burst     int
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// limiterSet keeps one token bucket per user. A bucket untouched for the
// time it needs to refill completely is equal to a new one, so sweep drops it.
type limiterSet struct {
	every     time.Duration
	burst     int
	idle      time.Duration
	mu        sync.Mutex
	entries   map[int64]*limiterEntry
	lastSweep time.Time
}

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLimiterSet(every time.Duration, burst int) *limiterSet {
	return &limiterSet{
		every:   every,
		burst:   burst,
		idle:    every * time.Duration(burst),
		entries: make(map[int64]*limiterEntry),
	}
}

func (s *limiterSet) allow(userID int64, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastSweep) >= s.idle {
		s.sweepLocked(now)
		s.lastSweep = now
	}
	e, ok := s.entries[userID]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(rate.Every(s.every), s.burst)}
		s.entries[userID] = e
	}
	e.seen = now
	return e.lim.AllowN(now, 1)
}

func (s *limiterSet) sweepLocked(now time.Time) {
	for id, e := range s.entries {
		if now.Sub(e.seen) >= s.idle {
			delete(s.entries, id)
		}
	}
}

func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RateLimitMiddleware returns a middleware that gives each user a token
// bucket refilled once per Interval and holding up to Burst tokens.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	limiters := newLimiterSet(opts.Interval, opts.Burst)

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}
			if limiters.allow(user.ID, time.Now()) {
				return next(c)
			}

			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "tg.rate_limit",
				slog.String("status", "rate_limited"),
				slog.Bool("rate_limited", true),
			)
			if c.Callback() != nil {
				_ = c.Respond()
			}
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	}
	return "other"
}
