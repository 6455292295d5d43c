package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8200" {
		t.Fatalf("port = %q, want 8200", cfg.Port)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("session ttl = %v, want 24h", cfg.SessionTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("bcrypt cost = %d, want 10", cfg.BcryptCost)
	}
	if cfg.MaxUploadSize != 5*1024*1024 {
		t.Fatalf("max upload = %d, want 5MB", cfg.MaxUploadSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("APP_ENV", "prod")

	cfg := Load()
	if cfg.Port != "9000" || cfg.SessionTTL != time.Hour || cfg.BcryptCost != 12 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	// prod moves writable directories under /tmp.
	if cfg.LogDir != "/tmp/logs" {
		t.Fatalf("prod log dir = %q", cfg.LogDir)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("BCRYPT_COST", "potato")
	t.Setenv("SESSION_TTL", "-5m")

	cfg := Load()
	if cfg.BcryptCost != 10 {
		t.Fatalf("bcrypt cost = %d, want default on bad input", cfg.BcryptCost)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("session ttl = %v, want default on non-positive input", cfg.SessionTTL)
	}
}
