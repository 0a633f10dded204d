// Package common provides shared utilities for fundwatch
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for fundwatch
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Valuation   ValuationConfig `toml:"valuation"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig locates the holdings document.
type StorageConfig struct {
	HoldingsPath string `toml:"holdings_path"`
	Versions     int    `toml:"versions"` // backups kept on each write, 0 disables rotation
}

// ClientsConfig holds quote provider configurations
type ClientsConfig struct {
	Estimator ProviderConfig `toml:"estimator"`
	Snapshot  ProviderConfig `toml:"snapshot"`
}

// ProviderConfig holds one quote provider's endpoint and limits
type ProviderConfig struct {
	BaseURL   string `toml:"base_url"`
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit"` // requests per second
}

// GetTimeout parses and returns the timeout duration
func (c *ProviderConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// ValuationConfig controls the valuation pipeline.
type ValuationConfig struct {
	Workers  int    `toml:"workers"`
	Timezone string `toml:"timezone"` // IANA name or "Local"
}

// GetLocation resolves the configured timezone, falling back to time.Local.
func (c *ValuationConfig) GetLocation() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 5000,
		},
		Storage: StorageConfig{
			HoldingsPath: "funds.json",
			Versions:     3,
		},
		Clients: ClientsConfig{
			Estimator: ProviderConfig{
				BaseURL:   "http://fundgz.1234567.com.cn/js",
				Timeout:   "2s",
				RateLimit: 20,
			},
			Snapshot: ProviderConfig{
				BaseURL:   "http://hq.sinajs.cn",
				Timeout:   "2s",
				RateLimit: 20,
			},
		},
		Valuation: ValuationConfig{
			Workers:  10,
			Timezone: "Local",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory, when present, is loaded into the
// process environment first so its values act as overrides too.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// Later files override earlier
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if config.Valuation.Workers < 1 {
		config.Valuation.Workers = 1
	}
	if config.Storage.Versions < 0 {
		config.Storage.Versions = 0
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FUNDWATCH_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FUNDWATCH_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FUNDWATCH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FUNDWATCH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FUNDWATCH_HOLDINGS_PATH"); path != "" {
		config.Storage.HoldingsPath = path
	}

	if w := os.Getenv("FUNDWATCH_WORKERS"); w != "" {
		if n, err := strconv.Atoi(w); err == nil {
			config.Valuation.Workers = n
		}
	}

	if tz := os.Getenv("FUNDWATCH_TIMEZONE"); tz != "" {
		config.Valuation.Timezone = tz
	}

	if v := os.Getenv("FUNDWATCH_ESTIMATOR_URL"); v != "" {
		config.Clients.Estimator.BaseURL = v
	}
	if v := os.Getenv("FUNDWATCH_SNAPSHOT_URL"); v != "" {
		config.Clients.Snapshot.BaseURL = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
