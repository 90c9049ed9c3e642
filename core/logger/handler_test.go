package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestHandler(t *testing.T, format logFormat) (*slog.Logger, func() string) {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelInfo,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	read := func() string {
		if err := aw.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		return strings.TrimSpace(buf.String())
	}
	return slog.New(handler), read
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	log, read := newTestHandler(t, formatKV)
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	LogEvent(ctx, log.With("component", "order"), slog.LevelInfo, "order.transition",
		slog.String("status", "ok"),
		slog.String("from", "awaiting_name"),
	)

	line := read()
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=order", "event=order.transition", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	log, read := newTestHandler(t, formatJSON)
	ctx := WithRID(context.Background(), "rid-json")
	ctx = WithHandler(ctx, "cmd:/order")

	LogEvent(ctx, log.With("component", "notify"), slog.LevelError, "notify.failed",
		slog.String("status", "fail"),
		slog.Int("order_number", 12345),
		slog.String("err", "boom"),
	)

	line := read()
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"notify"`, `"event":"notify.failed"`, `"status":"fail"`, `"rid":"rid-json"`, `"handler":"cmd:/order"`, `"order_number":12345`, `"err":"boom"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	rawRID := BuildRID(123, 456, 789)

	kv, readKV := newTestHandler(t, formatKV)
	LogEvent(WithRID(context.Background(), rawRID), kv, slog.LevelInfo, "rid.test")
	line := readKV()
	if !strings.Contains(line, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", line)
	}
	if strings.Contains(line, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", line)
	}

	js, readJSON := newTestHandler(t, formatJSON)
	LogEvent(WithRID(context.Background(), rawRID), js, slog.LevelInfo, "rid.test")
	line = readJSON()
	if !strings.Contains(line, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", line)
	}
	if !strings.Contains(line, `"ts_unix_nano"`) {
		t.Fatalf("expected ts_unix_nano in JSON output, got %s", line)
	}
}

func TestStructuredHandlerNormalizesValues(t *testing.T) {
	log, read := newTestHandler(t, formatKV)
	log.Info("", "event", "flow", "took", 1500*time.Microsecond, "outcome", "bogus", "state", "AWAITING_PHONE", "note", "")

	line := read()
	if !strings.Contains(line, "took_ms=2") {
		t.Fatalf("expected duration in ms, got %s", line)
	}
	if strings.Contains(line, "outcome=") {
		t.Fatalf("unknown outcome should be dropped, got %s", line)
	}
	if !strings.Contains(line, "state=awaiting_phone") {
		t.Fatalf("expected lowercased state, got %s", line)
	}
	if strings.Contains(line, "note=") {
		t.Fatalf("empty values should be pruned, got %s", line)
	}
	if !strings.Contains(line, "component=app") {
		t.Fatalf("expected default component, got %s", line)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var allowed int
	for i := 0; i < 9; i++ {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("allowed = %d, want 3", allowed)
	}
	if num, den := parseRatioSpec("10"); num != 1 || den != 10 {
		t.Fatalf("parseRatioSpec(10) = %d/%d", num, den)
	}
	if num, den := parseRatioSpec("2/5"); num != 2 || den != 5 {
		t.Fatalf("parseRatioSpec(2/5) = %d/%d", num, den)
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("Иван\u200b Петров\x07", 6); got != "Иван П" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
}

func TestPreviewCountsHiddenValues(t *testing.T) {
	files := []string{"000001_a.up.sql", "000002_b.up.sql", "000003_c.up.sql"}
	if got := Preview(files, 2); got != "000001_a.up.sql, 000002_b.up.sql, +1" {
		t.Fatalf("preview = %q", got)
	}
	if got := Preview(files, 5); got != strings.Join(files, ", ") {
		t.Fatalf("preview = %q", got)
	}
	if got := Preview(files, 0); got != "+3" {
		t.Fatalf("preview = %q", got)
	}
}
