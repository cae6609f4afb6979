package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ruleta-backend/internal/roulette"
)

type Config struct {
	Port string
	Env  string

	RedisURL  string
	RedisPass string
	RedisDB   int

	JWTSecret  string
	SessionTTL time.Duration

	RangeMax       int
	RateLimitSpins int

	LogLevel string
	LogFile  string
}

// Load reads the configuration from the environment. An empty REDIS_URL
// keeps sessions in memory.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      getenv("PORT", "8080"),
		Env:       getenv("ENV", "development"),
		RedisURL:  os.Getenv("REDIS_URL"),
		RedisPass: os.Getenv("REDIS_PASSWORD"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFile:   os.Getenv("LOG_FILE"),
	}

	var err error
	if cfg.RedisDB, err = getenvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RangeMax, err = getenvInt("ROULETTE_RANGE_MAX", roulette.DefaultRangeMax); err != nil {
		return nil, err
	}
	if cfg.RangeMax < 0 {
		return nil, fmt.Errorf("ROULETTE_RANGE_MAX must be non-negative, got %d", cfg.RangeMax)
	}
	if cfg.RateLimitSpins, err = getenvInt("RATE_LIMIT_SPINS", 30); err != nil {
		return nil, err
	}

	ttl := getenv("SESSION_TTL", "24h")
	if cfg.SessionTTL, err = time.ParseDuration(ttl); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL %q: %w", ttl, err)
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret"
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
