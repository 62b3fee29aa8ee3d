// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment string           `toml:"environment"`
	Accounts    []string         `toml:"accounts"` // real sub-accounts; the "overall" record is derived
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	MarketData  MarketDataConfig `toml:"market_data"`
	Engine      EngineConfig     `toml:"engine"`
	Logging     LoggingConfig    `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds persistence configuration.
// Backend selects the store implementation: "badger" (embedded, default)
// or "surreal" (remote SurrealDB).
type StorageConfig struct {
	Backend   string `toml:"backend"`
	Path      string `toml:"path"`      // badger data directory
	Address   string `toml:"address"`   // surreal ws endpoint
	Namespace string `toml:"namespace"` // surreal namespace
	Database  string `toml:"database"`  // surreal database
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// MarketDataConfig holds the market data provider configuration.
type MarketDataConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"` // requests per second
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *MarketDataConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// EngineConfig holds the performance engine parameters.
type EngineConfig struct {
	BaseCurrency string `toml:"base_currency"` // FX base unit (rate == 1)
	// DefaultCurrency is the account's declared default currency. Cost basis
	// converted from the base unit into it keeps the acquisition-time FX rate.
	DefaultCurrency string   `toml:"default_currency"`
	Currencies      []string `toml:"currencies"` // reporting currencies for daily records
	// AnomalyThresholdPct suppresses a single asset's daily change when its
	// magnitude exceeds this percentage. Zero disables the guard.
	AnomalyThresholdPct float64 `toml:"anomaly_threshold_pct"`
	// CloseSchedule and ConsolidateSchedule are cron expressions for the
	// daily close and period consolidation jobs.
	CloseSchedule       string `toml:"close_schedule"`
	ConsolidateSchedule string `toml:"consolidate_schedule"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend:   "badger",
			Path:      "data/folio",
			Namespace: "folio",
			Database:  "folio",
		},
		MarketData: MarketDataConfig{
			BaseURL:   "https://eodhd.com/api",
			RateLimit: 10,
			Timeout:   "30s",
		},
		Engine: EngineConfig{
			BaseCurrency:        "USD",
			Currencies:          []string{"USD"},
			AnomalyThresholdPct: 50,
			CloseSchedule:       "0 18 * * MON-FRI",
			ConsolidateSchedule: "30 0 1 * *",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

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

	if err := validateEngineConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("FOLIO_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}

	if path := os.Getenv("FOLIO_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if addr := os.Getenv("FOLIO_SURREAL_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}

	if key := os.Getenv("FOLIO_MARKET_API_KEY"); key != "" {
		config.MarketData.APIKey = key
	}

	if base := os.Getenv("FOLIO_BASE_CURRENCY"); base != "" {
		config.Engine.BaseCurrency = strings.ToUpper(base)
	}

	if accounts := os.Getenv("FOLIO_ACCOUNTS"); accounts != "" {
		parts := strings.Split(accounts, ",")
		config.Accounts = config.Accounts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				config.Accounts = append(config.Accounts, p)
			}
		}
	}
}

// validateEngineConfig normalizes and validates engine parameters.
func validateEngineConfig(config *Config) error {
	config.Engine.BaseCurrency = strings.ToUpper(config.Engine.BaseCurrency)
	for i, c := range config.Engine.Currencies {
		config.Engine.Currencies[i] = strings.ToUpper(c)
	}
	if len(config.Engine.Currencies) == 0 {
		config.Engine.Currencies = []string{config.Engine.BaseCurrency}
	}
	if config.Engine.DefaultCurrency == "" {
		config.Engine.DefaultCurrency = config.Engine.BaseCurrency
	}
	config.Engine.DefaultCurrency = strings.ToUpper(config.Engine.DefaultCurrency)
	if config.Engine.AnomalyThresholdPct < 0 {
		return fmt.Errorf("engine.anomaly_threshold_pct must be >= 0, got %f", config.Engine.AnomalyThresholdPct)
	}
	switch config.Storage.Backend {
	case "badger", "surreal":
	default:
		return fmt.Errorf("unknown storage backend '%s' (supported: badger, surreal)", config.Storage.Backend)
	}
	return nil
}

// IsProduction returns true when running in the production environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
