package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the workspace configuration file.
const FileName = "finboard.yaml"

// Config represents the top-level finboard.yaml configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Events    EventsConfig    `yaml:"events"`
	Plaid     PlaidConfig     `yaml:"plaid"`
	Log       LogConfig       `yaml:"log"`
	Recurring RecurringConfig `yaml:"recurring"`
}

// DatabaseConfig selects the store. A relative sqlite DSN is resolved
// against the workspace directory.
type DatabaseConfig struct {
	Dialect string `yaml:"dialect"` // "sqlite" or "postgres"
	DSN     string `yaml:"dsn"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// EventsConfig configures the AMQP publisher. Events are dropped when URL
// is empty.
type EventsConfig struct {
	URL      string `yaml:"url,omitempty"`
	Exchange string `yaml:"exchange"`
	Queue    string `yaml:"queue,omitempty"`
}

// PlaidConfig configures the aggregator. Credentials come from the
// environment only and are never written back to disk.
type PlaidConfig struct {
	Environment  string            `yaml:"environment"`
	LookbackDays int               `yaml:"lookback_days"`
	Connections  []PlaidConnection `yaml:"connections,omitempty"`
	ClientID     string            `yaml:"-"`
	Secret       string            `yaml:"-"`
}

// PlaidConnection is one linked institution.
type PlaidConnection struct {
	Institution string `yaml:"institution"`
	AccessToken string `yaml:"access_token"`
}

// LogConfig sets the zerolog level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// RecurringConfig tunes recurring-charge detection.
type RecurringConfig struct {
	TimeframeMonths int `yaml:"timeframe_months"`
}

// Load reads a finboard.yaml file from disk.
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

// Default returns a Config with sensible defaults for a new workspace.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Dialect: "sqlite",
			DSN:     filepath.Join("data", "finboard.db"),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Events: EventsConfig{
			Exchange: "finboard",
		},
		Plaid: PlaidConfig{
			Environment:  "sandbox",
			LookbackDays: 90,
		},
		Log: LogConfig{
			Level: "info",
		},
		Recurring: RecurringConfig{
			TimeframeMonths: 3,
		},
	}
}

// LoadDotEnv loads <dir>/.env into the process environment if it exists.
// Variables already set win.
func LoadDotEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg from environment variables read through getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Database.Dialect, "FINBOARD_DB_DIALECT")
	set(&cfg.Database.DSN, "FINBOARD_DB_DSN")
	set(&cfg.Server.Addr, "FINBOARD_ADDR")
	set(&cfg.Events.URL, "FINBOARD_AMQP_URL")
	set(&cfg.Log.Level, "FINBOARD_LOG_LEVEL")
	set(&cfg.Plaid.Environment, "PLAID_ENV")
	set(&cfg.Plaid.ClientID, "PLAID_CLIENT_ID")
	set(&cfg.Plaid.Secret, "PLAID_SECRET")

	if v := getenv("FINBOARD_RECURRING_MONTHS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("FINBOARD_RECURRING_MONTHS=%q: want a non-negative integer", v)
		}
		cfg.Recurring.TimeframeMonths = n
	}
	return nil
}

// DatabaseDSN returns the DSN with a relative sqlite path anchored at root.
func (c *Config) DatabaseDSN(root string) string {
	if c.Database.Dialect == "sqlite" && !filepath.IsAbs(c.Database.DSN) {
		return filepath.Join(root, c.Database.DSN)
	}
	return c.Database.DSN
}
