package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"STATUSDECK_LISTEN_ADDR", "STATUSDECK_WORKERS",
		"STATUSDECK_SUMMARIZER", "STATUSDECK_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.SummarizerProvider != ProviderNone {
		t.Errorf("SummarizerProvider = %q, want none", cfg.SummarizerProvider)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STATUSDECK_LISTEN_ADDR", "127.0.0.1:9999")
	t.Setenv("STATUSDECK_WORKERS", "8")
	t.Setenv("STATUSDECK_SUMMARIZER", ProviderOllama)
	t.Setenv("STATUSDECK_LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.ListenAddr != "127.0.0.1:9999" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.SummarizerProvider != ProviderOllama {
		t.Errorf("SummarizerProvider = %q", cfg.SummarizerProvider)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestWorkersRejectsNonPositive(t *testing.T) {
	for _, raw := range []string{"0", "-3", "abc"} {
		t.Setenv("STATUSDECK_WORKERS", raw)
		if got := Load().Workers; got != 4 {
			t.Errorf("Workers with %q = %d, want default 4", raw, got)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
