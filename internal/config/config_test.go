package config_test

import (
	"testing"
	"time"

	"ruleta-backend/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "REDIS_URL", "REDIS_DB", "JWT_SECRET", "SESSION_TTL", "ROULETTE_RANGE_MAX", "RATE_LIMIT_SPINS"} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Port)
	}
	if cfg.RangeMax != 36 {
		t.Errorf("Expected range max 36, got %d", cfg.RangeMax)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("Expected session TTL 24h, got %s", cfg.SessionTTL)
	}
	if cfg.RateLimitSpins != 30 {
		t.Errorf("Expected 30 spins per minute, got %d", cfg.RateLimitSpins)
	}
	if cfg.JWTSecret == "" {
		t.Error("Development config should fall back to a JWT secret")
	}
}

func TestLoadRangeMaxOverride(t *testing.T) {
	t.Setenv("ROULETTE_RANGE_MAX", "1")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.RangeMax != 1 {
		t.Errorf("Expected range max 1, got %d", cfg.RangeMax)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := map[string]string{
		"ROULETTE_RANGE_MAX": "-3",
		"REDIS_DB":           "zero",
		"SESSION_TTL":        "forever",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := config.Load(); err == nil {
				t.Errorf("Expected error for %s=%q", key, value)
			}
		})
	}
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := config.Load(); err == nil {
		t.Error("Production config without JWT_SECRET should fail")
	}
}
