// Package config reads application settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Dataset drivers.
const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Dataset   DatasetConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// DatasetConfig selects where songs are read from.
type DatasetConfig struct {
	Driver string
	Path   string // file path, or DSN for postgres
	Table  string // sqlite and postgres only
	TopN   int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// RateLimitConfig configures the per-client limiter. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// Load reads a .env file when present, then the environment, and validates
// the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// FromEnv reads configuration from environment variables without
// validating it. Every unparseable number is reported.
func FromEnv() (*Config, error) {
	var p parser
	cfg := &Config{
		Dataset: DatasetConfig{
			Driver: strings.ToLower(getEnvOrDefault("DATASET_DRIVER", DriverCSV)),
			Path:   getEnvOrDefault("DATASET_PATH", "spotify_songs.csv"),
			Table:  getEnvOrDefault("DATASET_TABLE", "songs"),
			TopN:   p.getInt("TOP_N", 50),
		},
		Server: ServerConfig{
			Port:            p.getInt("PORT", 8080),
			ShutdownTimeout: time.Duration(p.getInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			RPS:   p.getFloat("RATE_LIMIT_RPS", 20),
			Burst: p.getInt("RATE_LIMIT_BURST", 40),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
		},
	}
	if err := p.err(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Validate checks that all settings are usable and reports every problem
// at once.
func (c *Config) Validate() error {
	var errors []string

	switch c.Dataset.Driver {
	case DriverCSV, DriverSQLite, DriverPostgres:
	default:
		errors = append(errors, "DATASET_DRIVER must be one of: csv, sqlite, postgres")
	}
	if strings.TrimSpace(c.Dataset.Path) == "" {
		errors = append(errors, "DATASET_PATH is required")
	}
	if c.Dataset.TopN < 1 {
		errors = append(errors, "TOP_N must be at least 1")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errors = append(errors, "SHUTDOWN_TIMEOUT_SECONDS must be positive")
	}

	if c.RateLimit.RPS < 0 {
		errors = append(errors, "RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		errors = append(errors, "RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		errors = append(errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		errors = append(errors, "LOG_FORMAT must be one of: json, text")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

type parser struct {
	problems []string
}

func (p *parser) getInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		p.problems = append(p.problems, fmt.Sprintf("invalid %s: %q", key, raw))
		return def
	}
	return v
}

func (p *parser) getFloat(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		p.problems = append(p.problems, fmt.Sprintf("invalid %s: %q", key, raw))
		return def
	}
	return v
}

func (p *parser) err() error {
	if len(p.problems) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(p.problems, "; "))
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
