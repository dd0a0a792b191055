package devserver

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the dev server configuration. Values come from the
// environment; main loads an optional .env file first.
type Config struct {
	// Addr is the listen address (host:port).
	Addr string

	// JWTSecret signs dev tokens. Randomized per process when empty, which
	// invalidates tokens across restarts.
	JWTSecret string

	// TokenTTL is the dev token lifetime.
	TokenTTL time.Duration

	// RatePerSecond and RateBurst bound requests per caller identity.
	RatePerSecond float64
	RateBurst     int
}

// DefaultConfig returns the dev defaults.
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		TokenTTL:      12 * time.Hour,
		RatePerSecond: 25,
		RateBurst:     50,
	}
}

// ConfigFromEnv reads configuration from ME_* environment variables on top
// of the defaults.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if v := os.Getenv("ME_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("ME_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("ME_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse ME_TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = ttl
	}
	if v := os.Getenv("ME_RATE_PER_SECOND"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse ME_RATE_PER_SECOND: %w", err)
		}
		cfg.RatePerSecond = rate
	}
	if v := os.Getenv("ME_RATE_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse ME_RATE_BURST: %w", err)
		}
		cfg.RateBurst = burst
	}
	return cfg, nil
}
