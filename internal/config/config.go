// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// Config is the server's environment-driven configuration
type Config struct {
	ListenHost string `env:"LISTEN_HOST"`
	ListenPort int    `env:"LISTEN_PORT" envDefault:"3000"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"leaderboard.db"`

	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SecureCookies  bool          `env:"SECURE_COOKIES" envDefault:"false"`
	IdentityDomain string        `env:"IDENTITY_DOMAIN" envDefault:"players.local"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`

	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"2s"`
	StoreRetries uint          `env:"STORE_RETRIES" envDefault:"3"`
	// StoreBudget caps one store call including its retries
	StoreBudget    time.Duration `env:"STORE_BUDGET" envDefault:"4s"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the process environment
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom reads configuration from environ. A nil map reads the process
// environment.
func LoadFrom(environ map[string]string) (Config, error) {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}

	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot
func (c Config) Validate() error {
	switch c.StorageType {
	case "memory", "redis", "sqlite":
	default:
		return fmt.Errorf("STORAGE_TYPE must be memory, redis or sqlite, got %q", c.StorageType)
	}
	if c.ListenPort < 0 || c.ListenPort > 65535 {
		return fmt.Errorf("LISTEN_PORT out of range: %d", c.ListenPort)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.StoreRetries == 0 {
		return fmt.Errorf("STORE_RETRIES must be at least 1")
	}
	if c.StoreBudget < c.StoreTimeout {
		return fmt.Errorf("STORE_BUDGET (%s) must be at least STORE_TIMEOUT (%s)", c.StoreBudget, c.StoreTimeout)
	}
	if c.RequestTimeout <= c.StoreBudget {
		return fmt.Errorf("REQUEST_TIMEOUT (%s) must exceed STORE_BUDGET (%s)", c.RequestTimeout, c.StoreBudget)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured log level
func (c Config) SlogLevel() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel maps a level name to a slog.Level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(name)))); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
