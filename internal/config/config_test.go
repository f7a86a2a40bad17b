package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("REMINDER_INTERVAL", "")
	t.Setenv("EVENT_TIMEZONE", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.MongoDBDatabase != "eventhub" {
		t.Errorf("MongoDBDatabase = %q, want eventhub", cfg.MongoDBDatabase)
	}
	if cfg.ReminderInterval != time.Hour {
		t.Errorf("ReminderInterval = %v, want 1h", cfg.ReminderInterval)
	}
	if cfg.EventTimezone != time.UTC {
		t.Errorf("EventTimezone = %v, want UTC", cfg.EventTimezone)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development environment by default")
	}
}

func TestLoadConfigRequiresMongo(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("JWT_SECRET", "secret")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when MONGODB_URI is missing")
	}
}

func TestLoadConfigRequiresTokenVerifier(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SUPABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when neither JWT_SECRET nor SUPABASE_URL is set")
	}
}

func TestLoadConfigParsesOverrides(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REMINDER_INTERVAL", "30m")
	t.Setenv("REMINDER_ENABLED", "false")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ReminderInterval != 30*time.Minute {
		t.Errorf("ReminderInterval = %v, want 30m", cfg.ReminderInterval)
	}
	if cfg.ReminderEnabled {
		t.Error("ReminderEnabled should be false")
	}
	if len(cfg.CorsOrigins) != 2 || cfg.CorsOrigins[1] != "http://b.test" {
		t.Errorf("CorsOrigins = %v", cfg.CorsOrigins)
	}
	if cfg.RateLimit.Capacity != 1 {
		t.Errorf("RateLimit.Capacity = %d, want clamp to 1", cfg.RateLimit.Capacity)
	}
}

func TestLoadConfigRejectsEmptyCorsOrigins(t *testing.T) {
	for _, origins := range []string{",", " , ", "  "} {
		t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("CORS_ORIGINS", origins)

		if _, err := LoadConfig(); err == nil {
			t.Errorf("CORS_ORIGINS=%q: expected error for an empty origin list", origins)
		}
	}
}
