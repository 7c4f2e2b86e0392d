// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config is the runtime configuration for the API process.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string
	TaxRateBps         int32
	MenuCacheTTL       time.Duration
	AnalyticsCacheTTL  time.Duration
	IdempotencyTTL     time.Duration
	FireRateLimit      int
	FireRateWindow     time.Duration
}

// Load reads the environment. DATABASE_URL and REDIS_URL are required;
// everything else has a default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             stringOr(k.String("APP_ENV"), "development"),
		Port:               stringOr(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitCSV(k.String("CORS_ALLOWED_ORIGINS")),
		TaxRateBps:         int32(intOr(k.String("PRICING_TAX_RATE_BPS"), 700)),
		MenuCacheTTL:       durationOr(k.String("MENU_CACHE_TTL"), 5*time.Minute),
		AnalyticsCacheTTL:  durationOr(k.String("ANALYTICS_CACHE_TTL"), time.Minute),
		IdempotencyTTL:     durationOr(k.String("IDEMPOTENCY_TTL"), 24*time.Hour),
		FireRateLimit:      intOr(k.String("FIRE_RATE_LIMIT"), 30),
		FireRateWindow:     durationOr(k.String("FIRE_RATE_WINDOW"), time.Minute),
	}

	switch {
	case cfg.DatabaseURL == "":
		return nil, errors.New("DATABASE_URL is required")
	case cfg.RedisURL == "":
		return nil, errors.New("REDIS_URL is required")
	case cfg.TaxRateBps < 0:
		return nil, errors.New("PRICING_TAX_RATE_BPS must not be negative")
	}
	return cfg, nil
}

// HTTPAddr is the listen address derived from Port.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func stringOr(value, def string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return def
}

func intOr(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return n
}

func durationOr(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return d
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
