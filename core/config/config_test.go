package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_ADMIN_ID", "42")
	t.Setenv("STATE_IDLE_TIMEOUT", "30m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminID != 42 {
		t.Fatalf("admin id = %d", cfg.Telegram.AdminID)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	if cfg.State.Backend != StateBackendMemory {
		t.Fatalf("state backend = %q", cfg.State.Backend)
	}
	if cfg.State.IdleTimeout != 30*time.Minute {
		t.Fatalf("idle timeout = %v", cfg.State.IdleTimeout)
	}
}

func TestLoadYAMLWithEnvOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
telegram:
  token: from-file
  run_mode: polling
logging:
  level: debug
rate_limit:
  interval_ms: 500
  exclude_updates: [" Callback "]
state:
  backend: redis
  redis:
    addr: localhost:6379
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("env should override file token, got %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("polling alias not normalized: %q", cfg.Telegram.RunMode)
	}
	if got := cfg.RateLimit.ExcludeUpdates[0]; got != UpdateCallback {
		t.Fatalf("exclude update = %q", got)
	}
	if cfg.RateLimit.Burst != 1 {
		t.Fatalf("burst default = %d", cfg.RateLimit.Burst)
	}
	if cfg.State.Redis.KeyPrefix == "" {
		t.Fatal("expected default redis key prefix")
	}
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	cases := map[string]Config{
		"run mode":      {Telegram: TelegramConfig{Token: "t", RunMode: "carrier-pigeon"}},
		"webhook url":   {Telegram: TelegramConfig{Token: "t", RunMode: RunModeWebhook}},
		"exclude":       {Telegram: TelegramConfig{Token: "t"}, RateLimit: RateLimitConfig{ExcludeUpdates: []string{"inline"}}},
		"state backend": {Telegram: TelegramConfig{Token: "t"}, State: StateConfig{Backend: "etcd"}},
		"redis addr":    {Telegram: TelegramConfig{Token: "t"}, State: StateConfig{Backend: StateBackendRedis}},
		"idle timeout":  {Telegram: TelegramConfig{Token: "t"}, State: StateConfig{IdleTimeout: -time.Second}},
	}
	for name, cfg := range cases {
		cfg := cfg
		if err := Normalize(&cfg); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
