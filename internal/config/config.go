package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "ledger.yaml"

// Config represents the top-level ledger.yaml configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Display  DisplayConfig  `yaml:"display"`
	Import   ImportConfig   `yaml:"import"`
}

// DatabaseConfig selects the SQL driver. For sqlite3 the DSN is a file path.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// LoggingConfig picks the zap profile and level.
type LoggingConfig struct {
	Environment string `yaml:"environment"` // "development" or "production"
	Level       string `yaml:"level,omitempty"`
}

// DisplayConfig controls how amounts are printed.
type DisplayConfig struct {
	Currency string `yaml:"currency"` // ISO 4217 code, e.g. "USD"
}

// ImportConfig maps bank feeds onto quick transaction templates.
type ImportConfig struct {
	Dir                string `yaml:"dir"`
	Format             string `yaml:"format"`
	DepositTemplate    string `yaml:"deposit_template,omitempty"`
	WithdrawalTemplate string `yaml:"withdrawal_template,omitempty"`
}

// Load reads a ledger.yaml file from disk. Missing sections keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config for a local SQLite ledger.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "ledger.db",
		},
		Logging: LoggingConfig{
			Environment: "production",
			Level:       "warn",
		},
		Display: DisplayConfig{
			Currency: "USD",
		},
		Import: ImportConfig{
			Dir:    "import",
			Format: "chase",
		},
	}
}

// Environment variables that override file values.
const (
	EnvDriver   = "LEDGER_DB_DRIVER"
	EnvDSN      = "LEDGER_DB_DSN"
	EnvLogEnv   = "LEDGER_LOG_ENV"
	EnvLogLevel = "LEDGER_LOG_LEVEL"
	EnvCurrency = "LEDGER_CURRENCY"
)

// ApplyEnv overlays LEDGER_* variables onto cfg. When envFile is set it is
// loaded first; variables already present in the process environment win.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
	}

	overlay := []struct {
		key string
		dst *string
	}{
		{EnvDriver, &c.Database.Driver},
		{EnvDSN, &c.Database.DSN},
		{EnvLogEnv, &c.Logging.Environment},
		{EnvLogLevel, &c.Logging.Level},
		{EnvCurrency, &c.Display.Currency},
	}
	for _, o := range overlay {
		if v, ok := os.LookupEnv(o.key); ok && strings.TrimSpace(v) != "" {
			*o.dst = strings.TrimSpace(v)
		}
	}
	return nil
}
