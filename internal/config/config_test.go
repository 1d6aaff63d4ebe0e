package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without token")
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", " abc ")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TelegramToken != "abc" {
		t.Fatalf("token = %q", cfg.TelegramToken)
	}
}

func TestLoadWebDefaults(t *testing.T) {
	for _, k := range []string{"WEB_ADDR", "CATALOG_PATH", "LOG_LEVEL", "MAX_CONCURRENT", "REQUEST_TIMEOUT_SECONDS", "HTTP_TIMEOUT_SECONDS", "PREFER_IPV4"} {
		t.Setenv(k, "")
	}

	cfg := LoadWeb()
	if cfg.WebAddr != ":8080" || cfg.LogLevel != "info" || cfg.CatalogPath != "" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.MaxConcurrent != 4 || cfg.RequestTimeout != 30*time.Second || cfg.HTTPTimeout != time.Minute {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !cfg.PreferIPv4 {
		t.Fatal("PreferIPv4 should default to true")
	}
}

func TestLoadClampsValues(t *testing.T) {
	t.Setenv("MAX_CONCURRENT", "0")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "-5")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "nope")
	t.Setenv("LOG_LEVEL", " DEBUG ")

	cfg := LoadWeb()
	if cfg.MaxConcurrent != 1 || cfg.RequestTimeout != 30*time.Second || cfg.HTTPTimeout != time.Minute {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := (Config{LogLevel: in}).SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
