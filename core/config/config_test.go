package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "telegram:\n  token: \"123:abc\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run_mode = %q, expected longpoll default", cfg.Telegram.RunMode)
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("backend = %q, expected file default", cfg.Storage.Backend)
	}
	if cfg.Storage.File.Path != "userData.json" {
		t.Errorf("file path = %q, expected userData.json default", cfg.Storage.File.Path)
	}
	if cfg.Storage.File.FlushIntervalSeconds != 60 {
		t.Errorf("flush interval = %d, expected 60", cfg.Storage.File.FlushIntervalSeconds)
	}
}

func TestLoadMissingToken(t *testing.T) {
	path := writeConfig(t, "telegram:\n  run_mode: longpoll\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNormalizeRunModeAlias(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run_mode = %q, expected longpoll", cfg.Telegram.RunMode)
	}
}

func TestNormalizeInvalidBackend(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Storage.Backend = "mongodb"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}

func TestNormalizeWebhookRequiresURL(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.RunMode = RunModeWebhook
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for webhook mode without url")
	}
}

func TestNormalizeRateLimitExclusions(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "message"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != "callback" {
		t.Errorf("exclusion[0] = %q, expected callback", cfg.RateLimit.ExcludeUpdates[0])
	}

	cfg.RateLimit.ExcludeUpdates = []string{"inline_query"}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for unsupported exclusion")
	}
}
