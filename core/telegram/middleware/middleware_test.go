package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/m3rciful/linkbot/core/telegram/teletest"

	tele "gopkg.in/telebot.v4"
)

var user = &tele.User{ID: 42, FirstName: "Anna"}

func TestRecoverMiddlewareReturnsPanicError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })

	err := h(teletest.NewText(1, user, "/start"))
	var perr *ErrPanic
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ErrPanic", err)
	}
	if perr.Value != "boom" {
		t.Fatalf("panic value = %v", perr.Value)
	}
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	limited := 0
	calls := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Burst:    2,
		OnLimited: func(tele.Context) error {
			limited++
			return nil
		},
	})
	h := mw(func(tele.Context) error {
		calls++
		return nil
	})

	for i := 1; i <= 3; i++ {
		if err := h(teletest.NewText(i, user, "hi")); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	if calls != 2 || limited != 1 {
		t.Fatalf("calls=%d limited=%d, want 2 and 1", calls, limited)
	}

	other := &tele.User{ID: 43}
	if err := h(teletest.NewText(4, other, "hi")); err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Fatalf("second user was limited by the first user's bucket")
	}
}

func TestRateLimitSkipsExcludedUpdates(t *testing.T) {
	calls := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Burst:    1,
		Exclude:  map[string]struct{}{"callback": {}},
	})
	h := mw(func(tele.Context) error {
		calls++
		return nil
	})

	for i := 1; i <= 3; i++ {
		c := teletest.NewCallback(i, user, "back_to_menu")
		if err := h(c); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRateLimitAnswersLimitedCallback(t *testing.T) {
	mw := RateLimitMiddleware(RateLimitOptions{Interval: time.Hour, Burst: 1})
	h := mw(func(tele.Context) error { return nil })

	_ = h(teletest.NewCallback(1, user, "help"))
	c := teletest.NewCallback(2, user, "help")
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if c.Responded != 1 {
		t.Fatalf("limited callback answered %d times", c.Responded)
	}
}

func TestLimiterSetDropsIdleUsers(t *testing.T) {
	set := newLimiterSet(time.Second, 2)
	t0 := time.Unix(1_700_000_000, 0)

	if !set.allow(1, t0) || !set.allow(1, t0) || set.allow(1, t0) {
		t.Fatal("burst of 2 not enforced")
	}
	set.allow(2, t0)
	if set.size() != 2 {
		t.Fatalf("size = %d, want 2", set.size())
	}

	set.allow(3, t0.Add(time.Second))
	if set.size() != 3 {
		t.Fatalf("users dropped before refilling: size = %d", set.size())
	}

	if !set.allow(3, t0.Add(3*time.Second)) {
		t.Fatal("user 3 should have tokens again")
	}
	if set.size() != 1 {
		t.Fatalf("idle users kept: size = %d, want 1", set.size())
	}
	if !set.allow(1, t0.Add(3*time.Second)) {
		t.Fatal("evicted user should start with a full bucket")
	}
}

func TestMessageMetricsCountsSendsAndEdits(t *testing.T) {
	c := teletest.NewCallback(1, user, "category_main")
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		if err := c.EditOrSend("menu", &tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}}); err != nil {
			return err
		}
		if err := c.Send("one"); err != nil {
			return err
		}
		return c.Send("two")
	})
	if err := h(c); err != nil {
		t.Fatal(err)
	}

	got := Counters(c)
	if got.Sent != 2 || got.Edited != 1 || !got.Keyboard || got.Messages() != 3 {
		t.Fatalf("counters = %+v", got)
	}
}

func TestMessageMetricsSkipsFailedSends(t *testing.T) {
	c := teletest.NewText(1, user, "/start")
	c.SendErr = errors.New("blocked by user")
	h := MessageMetricsMiddleware(func(c tele.Context) error { return c.Send("hi") })
	if err := h(c); err == nil {
		t.Fatal("send error swallowed")
	}
	if got := Counters(c); got.Messages() != 0 {
		t.Fatalf("failed send counted: %+v", got)
	}
	if got := Counters(teletest.NewText(2, user, "x")); got != (SendCounters{}) {
		t.Fatalf("counters without middleware = %+v", got)
	}
}

func TestSeenUpdatesReportsEachUpdateOnce(t *testing.T) {
	s := &seenUpdates{keep: 10 * time.Second, ids: make(map[int]time.Time)}
	t0 := time.Unix(1_700_000_000, 0)
	if !s.first(5, t0) || s.first(5, t0.Add(time.Second)) {
		t.Fatal("duplicate update reported twice")
	}
	if !s.first(5, t0.Add(11*time.Second)) {
		t.Fatal("expired id should be reported again")
	}
}
