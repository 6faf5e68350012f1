package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alvmarrod/lead-weaver/internal/version"
	"github.com/joho/godotenv"
)

const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config holds all runtime configuration parameters
type Config struct {
	SeedURLs         []string `json:"seed_urls"`
	Workers          int      `json:"workers"`
	RequestTimeoutMs int      `json:"request_timeout_ms"`
	ClaimTimeoutMs   int      `json:"claim_timeout_ms"`
	UserAgent        string   `json:"user_agent"`
	MaxBodyBytes     int      `json:"max_body_bytes"`
	Store            string   `json:"store"`
	DBPath           string   `json:"db_path"`
	MetricsPath      string   `json:"metrics_path"`
	ListenAddr       string   `json:"listen_addr"`
	EventBuffer      int      `json:"event_buffer"`
	LogLevel         string   `json:"log_level"`
}

// RequestTimeout returns the page fetch timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// ClaimTimeout returns how long a worker waits on an empty frontier
func (c *Config) ClaimTimeout() time.Duration {
	return time.Duration(c.ClaimTimeoutMs) * time.Millisecond
}

// LoadConfig reads configuration from a JSON file, then applies environment
// overrides (optionally from a .env file). A missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// no file: defaults and environment only
	case err != nil:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	default:
		defer file.Close()
		decoder := json.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyEnv overrides fields from LEADWEAVER_* environment variables
func applyEnv(cfg *Config) error {
	if v := os.Getenv("LEADWEAVER_SEED_URLS"); v != "" {
		cfg.SeedURLs = nil
		for _, seed := range strings.Split(v, ",") {
			if seed = strings.TrimSpace(seed); seed != "" {
				cfg.SeedURLs = append(cfg.SeedURLs, seed)
			}
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"LEADWEAVER_WORKERS", &cfg.Workers},
		{"LEADWEAVER_REQUEST_TIMEOUT_MS", &cfg.RequestTimeoutMs},
		{"LEADWEAVER_CLAIM_TIMEOUT_MS", &cfg.ClaimTimeoutMs},
		{"LEADWEAVER_MAX_BODY_BYTES", &cfg.MaxBodyBytes},
		{"LEADWEAVER_EVENT_BUFFER", &cfg.EventBuffer},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"LEADWEAVER_USER_AGENT", &cfg.UserAgent},
		{"LEADWEAVER_STORE", &cfg.Store},
		{"LEADWEAVER_DB_PATH", &cfg.DBPath},
		{"LEADWEAVER_METRICS_PATH", &cfg.MetricsPath},
		{"LEADWEAVER_LISTEN_ADDR", &cfg.ListenAddr},
		{"LEADWEAVER_LOG_LEVEL", &cfg.LogLevel},
	}
	for _, e := range strs {
		if v := os.Getenv(e.key); v != "" {
			*e.dst = v
		}
	}

	return nil
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.RequestTimeoutMs == 0 {
		cfg.RequestTimeoutMs = 10000
	}
	if cfg.ClaimTimeoutMs == 0 {
		cfg.ClaimTimeoutMs = 10000
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "lead-weaver/" + version.Version
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = 10 * 1024 * 1024
	}
	if cfg.Store == "" {
		cfg.Store = StoreSQLite
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "scraped_data.db"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "metrics.json"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":5000"
	}
	if cfg.EventBuffer == 0 {
		cfg.EventBuffer = 1024
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// validate checks that values are sensible
func validate(cfg *Config) error {
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be >= 1")
	}
	if cfg.RequestTimeoutMs < 1000 {
		return fmt.Errorf("request_timeout_ms must be >= 1000")
	}
	if cfg.ClaimTimeoutMs < 100 {
		return fmt.Errorf("claim_timeout_ms must be >= 100")
	}
	if cfg.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must be >= 0")
	}
	if cfg.EventBuffer < 1 {
		return fmt.Errorf("event_buffer must be >= 1")
	}
	if cfg.Store != StoreSQLite && cfg.Store != StoreMemory {
		return fmt.Errorf("store must be %q or %q", StoreSQLite, StoreMemory)
	}
	return nil
}
