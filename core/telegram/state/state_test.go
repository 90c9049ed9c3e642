package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/linkbot/core/telegram/teletest"

	tele "gopkg.in/telebot.v4"
)

func TestMemoryStoreRoundTripIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	sess, err := store.Get(ctx, 1)
	if err != nil || sess.Active() {
		t.Fatalf("fresh session: %+v err=%v", sess, err)
	}
	sess.State = "awaiting_phone"
	sess.Data["full_name"] = "Ivan Petrov"
	if err := store.Save(ctx, 1, sess); err != nil {
		t.Fatal(err)
	}
	sess.Data["full_name"] = "mutated after save"

	got, _ := store.Get(ctx, 1)
	if got.State != "awaiting_phone" || got.Data["full_name"] != "Ivan Petrov" {
		t.Fatalf("stored session = %+v", got)
	}
	if err := store.Delete(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Get(ctx, 1); got.Active() {
		t.Fatal("session survived delete")
	}
}

func TestMemoryStoreIdleTimeout(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(10 * time.Minute)
	store.now = func() time.Time { return now }

	_ = store.Save(ctx, 1, &Session{State: "awaiting_name"})
	_ = store.Save(ctx, 2, &Session{State: "awaiting_name"})

	now = now.Add(5 * time.Minute)
	if got, _ := store.Get(ctx, 1); !got.Active() {
		t.Fatal("session expired too early")
	}

	now = now.Add(6 * time.Minute)
	if got, _ := store.Get(ctx, 1); got.Active() {
		t.Fatal("session should expire on read")
	}
	if n := store.Sweep(); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
}

func TestMemoryStoreNoTimeoutKeepsForever(t *testing.T) {
	store := NewMemoryStore(0)
	now := time.Now()
	store.now = func() time.Time { return now }
	_ = store.Save(context.Background(), 1, &Session{State: "awaiting_product"})
	now = now.Add(1000 * time.Hour)
	if got, _ := store.Get(context.Background(), 1); !got.Active() {
		t.Fatal("session expired without a timeout")
	}
	if store.Sweep() != 0 {
		t.Fatal("sweep removed sessions without a timeout")
	}
}

// fakeRedis implements the commands RedisStore uses.
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, exp time.Duration) *redis.StatusCmd {
	b, _ := value.([]byte)
	f.data[key] = string(b)
	f.ttl[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	store := NewRedisStore(rdb, "linkbot:session:", 30*time.Minute)

	if got, err := store.Get(ctx, 5); err != nil || got.Active() {
		t.Fatalf("missing key: %+v err=%v", got, err)
	}
	sess := NewSession()
	sess.State = "awaiting_product"
	sess.Data["phone"] = "+71234567890"
	if err := store.Save(ctx, 5, sess); err != nil {
		t.Fatal(err)
	}
	if rdb.ttl["linkbot:session:5"] != 30*time.Minute {
		t.Fatalf("ttl = %v", rdb.ttl["linkbot:session:5"])
	}
	got, err := store.Get(ctx, 5)
	if err != nil || got.State != "awaiting_product" || got.Data["phone"] != "+71234567890" {
		t.Fatalf("loaded %+v err=%v", got, err)
	}
	_ = store.Delete(ctx, 5)
	if _, ok := rdb.data["linkbot:session:5"]; ok {
		t.Fatal("key not deleted")
	}

	rdb.err = errors.New("connection refused")
	if _, err := store.Get(ctx, 5); err == nil {
		t.Fatal("expected backend error")
	}
}

func TestDispatcherRoutesByState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	d := NewDispatcher(store)
	var calls int
	d.RegisterHandler("awaiting_name", func(tele.Context) error { calls++; return nil })

	user := &tele.User{ID: 3}
	if d.InProgress(3) {
		t.Fatal("idle user reported in progress")
	}
	_ = store.Save(ctx, 3, &Session{State: "awaiting_name"})
	if !d.InProgress(3) {
		t.Fatal("active user not in progress")
	}
	if err := d.ManagerHandler(teletest.NewText(1, user, "Ivan")); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d", calls)
	}
}
