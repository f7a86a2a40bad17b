package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/Nanpapu/eventhub-sub001/internal/config"
)

func TestSetupLoggerHonoursLogLevel(t *testing.T) {
	tests := []struct {
		env, level string
		debug      bool
		warn       bool
	}{
		{"development", "info", false, true},
		{"development", "debug", true, true},
		{"development", "error", false, false},
		{"production", "warn", false, true},
		{"production", "", false, true},
	}
	for _, tt := range tests {
		cfg := &config.Config{Environment: tt.env, LogLevel: tt.level}
		logger := setupLogger(cfg)
		ctx := context.Background()
		if got := logger.Enabled(ctx, slog.LevelDebug); got != tt.debug {
			t.Errorf("%s/%q: debug enabled = %v, want %v", tt.env, tt.level, got, tt.debug)
		}
		if got := logger.Enabled(ctx, slog.LevelWarn); got != tt.warn {
			t.Errorf("%s/%q: warn enabled = %v, want %v", tt.env, tt.level, got, tt.warn)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
