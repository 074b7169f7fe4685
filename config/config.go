// Package config loads toolkit settings from a .env file and the process
// environment. Environment variables win over .env entries already set.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the CLI and API server consume.
type Config struct {
	// ScanTimeout bounds each port probe.
	ScanTimeout time.Duration
	// ScanWorkers bounds scan pool size.
	ScanWorkers int
	// DiagTimeout bounds ping/http/dns one-shots.
	DiagTimeout time.Duration
	// RedisAddr enables the history store and the API task store when set.
	RedisAddr string
	// APIAddr is the bind address of the REST server.
	APIAddr string
	// APIKey, when set, turns on bearer authentication.
	APIKey string
	// RateLimit is requests per minute per client IP for the API.
	RateLimit int64
	// APIWorkers is the number of background scan task workers.
	APIWorkers int
}

// Load reads .env (when present) and assembles the configuration.
// A missing .env file is not an error; a malformed one is.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		ScanTimeout: getenvDuration("NEOTUI_SCAN_TIMEOUT", 300*time.Millisecond),
		ScanWorkers: getenvInt("NEOTUI_SCAN_WORKERS", 100),
		DiagTimeout: getenvDuration("NEOTUI_DIAG_TIMEOUT", 5*time.Second),
		RedisAddr:   getenv("NEOTUI_REDIS_ADDR", ""),
		APIAddr:     getenv("NEOTUI_API_ADDR", ":8080"),
		APIKey:      getenv("NEOTUI_API_KEY", ""),
		RateLimit:   int64(getenvInt("NEOTUI_RATE_LIMIT", 60)),
		APIWorkers:  getenvInt("NEOTUI_API_WORKERS", 5),
	}

	if cfg.ScanWorkers < 1 {
		return nil, fmt.Errorf("NEOTUI_SCAN_WORKERS must be positive, got %d", cfg.ScanWorkers)
	}
	if cfg.ScanTimeout <= 0 {
		return nil, fmt.Errorf("NEOTUI_SCAN_TIMEOUT must be positive, got %s", cfg.ScanTimeout)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	// Accept both Go duration syntax and bare fractional seconds.
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
