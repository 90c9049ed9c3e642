package order

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/linkbot/core/telegram/state"
)

func newTestFlow(t *testing.T) (*Flow, *state.MemoryStore) {
	t.Helper()
	store := state.NewMemoryStore(0)
	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	return NewFlow(store, WithNumbers(func() int { return 48213 }), WithClock(func() time.Time { return now })), store
}

func mustReply(t *testing.T, r Reply, err error, want Outcome) Reply {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Outcome != want {
		t.Fatalf("outcome = %q, want %q (text %q)", r.Outcome, want, r.Text)
	}
	return r
}

func TestFlowCompletesOrder(t *testing.T) {
	ctx := context.Background()
	f, store := newTestFlow(t)
	req := Requester{ID: 7, Username: "ivan"}

	r, err := f.Start(ctx, req.ID)
	mustReply(t, r, err, OutcomePrompt)
	if r.State != StateAwaitingName || !f.InProgress(ctx, req.ID) {
		t.Fatalf("expected awaiting_name, got %q", r.State)
	}

	r, err = f.Input(ctx, req, "Ivan Petrov")
	if mustReply(t, r, err, OutcomePrompt).State != StateAwaitingPhone {
		t.Fatalf("expected awaiting_phone, got %q", r.State)
	}
	r, err = f.Input(ctx, req, "+71234567890")
	if mustReply(t, r, err, OutcomePrompt).State != StateAwaitingProduct {
		t.Fatalf("expected awaiting_product, got %q", r.State)
	}
	r, err = f.Input(ctx, req, "Bolt M8x20, qty 50")
	mustReply(t, r, err, OutcomeCompleted)

	rec := r.Record
	if rec == nil {
		t.Fatal("missing record")
	}
	if rec.FullName != "Ivan Petrov" || rec.Phone != "+71234567890" || rec.Product != "Bolt M8x20, qty 50" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Number < MinNumber || rec.Number > MaxNumber || rec.Requester.ID != 7 || rec.CreatedAt.IsZero() {
		t.Fatalf("unexpected record meta: %+v", rec)
	}
	for _, want := range []string{"Ivan Petrov", "+71234567890", "Bolt M8x20, qty 50", "48213"} {
		if !strings.Contains(r.Text, want) {
			t.Fatalf("confirmation misses %q:\n%s", want, r.Text)
		}
	}

	if f.InProgress(ctx, req.ID) {
		t.Fatal("session still active after completion")
	}
	sess, _ := store.Get(ctx, req.ID)
	if len(sess.Data) != 0 {
		t.Fatalf("draft not cleared: %v", sess.Data)
	}
}

func TestFlowKeepsAnswersVerbatim(t *testing.T) {
	ctx := context.Background()
	f, _ := newTestFlow(t)
	req := Requester{ID: 8}

	r, err := f.Start(ctx, req.ID)
	mustReply(t, r, err, OutcomePrompt)
	answers := []string{"  Ivan_Petrov* ", "+7 (123) 456", "Bolt [M8x20]_qty *50*"}
	for _, a := range answers {
		r, err = f.Input(ctx, req, a)
	}
	mustReply(t, r, err, OutcomeCompleted)

	rec := r.Record
	if rec.FullName != answers[0] || rec.Phone != answers[1] || rec.Product != answers[2] {
		t.Fatalf("answers changed: %+v", rec)
	}
	if !strings.Contains(r.Text, answers[2]) {
		t.Fatalf("confirmation lost markup characters:\n%s", r.Text)
	}
}

func TestFlowRepromptsOnBlankInput(t *testing.T) {
	ctx := context.Background()
	f, _ := newTestFlow(t)
	req := Requester{ID: 1}
	_, _ = f.Start(ctx, req.ID)

	r, err := f.Input(ctx, req, "   \n")
	mustReply(t, r, err, OutcomeReprompt)
	if r.State != StateAwaitingName || !strings.HasSuffix(r.Text, Prompt(StateAwaitingName)) {
		t.Fatalf("unexpected reprompt: %+v", r)
	}
}

func TestFlowCancelClearsDraft(t *testing.T) {
	ctx := context.Background()
	for _, steps := range []int{0, 1, 2} {
		f, store := newTestFlow(t)
		req := Requester{ID: 9}
		_, _ = f.Start(ctx, req.ID)
		inputs := []string{"Old Name", "+700"}
		for i := 0; i < steps; i++ {
			_, _ = f.Input(ctx, req, inputs[i])
		}

		r, err := f.Cancel(ctx, req.ID)
		mustReply(t, r, err, OutcomeCancelled)

		r, err = f.Start(ctx, req.ID)
		mustReply(t, r, err, OutcomePrompt)
		sess, _ := store.Get(ctx, req.ID)
		if sess.State != StateAwaitingName || len(sess.Data) != 0 {
			t.Fatalf("steps=%d: leaked draft %+v", steps, sess)
		}

		_, _ = f.Input(ctx, req, "New Name")
		_, _ = f.Input(ctx, req, "+711")
		r, err = f.Input(ctx, req, "nuts")
		mustReply(t, r, err, OutcomeCompleted)
		if r.Record.FullName != "New Name" || r.Record.Phone != "+711" {
			t.Fatalf("steps=%d: record mixes attempts: %+v", steps, r.Record)
		}
	}
}

func TestFlowCancelWhenIdle(t *testing.T) {
	f, _ := newTestFlow(t)
	r, err := f.Cancel(context.Background(), 3)
	mustReply(t, r, err, OutcomeNothingToCancel)
}

func TestFlowRestartMidForm(t *testing.T) {
	ctx := context.Background()
	f, store := newTestFlow(t)
	req := Requester{ID: 4}
	_, _ = f.Start(ctx, req.ID)
	_, _ = f.Input(ctx, req, "Someone")

	r, err := f.Start(ctx, req.ID)
	mustReply(t, r, err, OutcomePrompt)
	sess, _ := store.Get(ctx, req.ID)
	if sess.State != StateAwaitingName || sess.Data[KeyFullName] != "" {
		t.Fatalf("restart kept old draft: %+v", sess)
	}

	// self transition on awaiting_name
	r, err = f.Start(ctx, req.ID)
	mustReply(t, r, err, OutcomePrompt)
}

func TestFlowInputWhenIdle(t *testing.T) {
	f, _ := newTestFlow(t)
	if _, err := f.Input(context.Background(), Requester{ID: 5}, "hello"); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}
}

func TestFlowRejectsBrokenDraft(t *testing.T) {
	ctx := context.Background()
	f, store := newTestFlow(t)
	sess := state.NewSession()
	sess.State = StateAwaitingProduct
	_ = store.Save(ctx, 6, sess)

	if _, err := f.Input(ctx, Requester{ID: 6}, "bolts"); !errors.Is(err, ErrBrokenDraft) {
		t.Fatalf("expected ErrBrokenDraft, got %v", err)
	}
	if f.InProgress(ctx, 6) {
		t.Fatal("broken draft not cleared")
	}
}

func TestRandomNumberRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		if n := RandomNumber(); n < MinNumber || n > MaxNumber {
			t.Fatalf("number out of range: %d", n)
		}
	}
}

func TestRequesterDisplayName(t *testing.T) {
	cases := map[string]Requester{
		"@ivan":            {ID: 1, Username: "ivan", FirstName: "Ivan"},
		"Ivan Petrov":      {ID: 1, FirstName: "Ivan", LastName: "Petrov"},
		"пользователь 42": {ID: 42},
	}
	for want, r := range cases {
		if got := r.DisplayName(); got != want {
			t.Errorf("DisplayName(%+v) = %q, want %q", r, got, want)
		}
	}
}
