// Package config loads server configuration from an optional YAML file and
// environment variables. Environment variables win over the file, and the
// file wins over defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/payhive/internal/models"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Redis     RedisConfig     `yaml:"redis"`
	Approvals ApprovalsConfig `yaml:"approvals"`
	Payments  PaymentsConfig  `yaml:"payments"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	// Path of the SQLite database file. ":memory:" selects the in-memory store.
	Path string `yaml:"path"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// RedisConfig enables the shared settlement lock when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type ApprovalsConfig struct {
	// ParticipantsOnly restricts approvals to expense participants at the RPC layer.
	ParticipantsOnly bool `yaml:"participants_only"`
}

type PaymentsConfig struct {
	PreferredRail models.Rail   `yaml:"preferred_rail"`
	PayPal        PayPalConfig  `yaml:"paypal"`
	PYUSD         PYUSDConfig   `yaml:"pyusd"`
	Breaker       BreakerConfig `yaml:"breaker"`
}

type PayPalConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	BaseURL      string `yaml:"base_url"`
	Currency     string `yaml:"currency"`
	ReturnURL    string `yaml:"return_url"`
	CancelURL    string `yaml:"cancel_url"`
}

type PYUSDConfig struct {
	// NetworkFee is the flat fee estimate, in dollars, reported for token transfers.
	NetworkFee string `yaml:"network_fee"`
}

type BreakerConfig struct {
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
	Timeout             time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{Path: "./data/payhive.db"},
		Auth: AuthConfig{
			JWTSecret: "dev-secret-change-in-production",
			TokenTTL:  24 * time.Hour,
		},
		Redis: RedisConfig{LockTTL: 2 * time.Minute},
		Payments: PaymentsConfig{
			PreferredRail: models.RailPYUSD,
			PayPal:        PayPalConfig{Currency: "USD"},
			PYUSD:         PYUSDConfig{NetworkFee: "0.01"},
			Breaker: BreakerConfig{
				ConsecutiveFailures: 5,
				Timeout:             30 * time.Second,
			},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path (if non-empty) over the defaults and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func (c *Config) applyEnv() {
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Payments.PayPal.ClientID = getEnv("PAYPAL_CLIENT_ID", c.Payments.PayPal.ClientID)
	c.Payments.PayPal.ClientSecret = getEnv("PAYPAL_CLIENT_SECRET", c.Payments.PayPal.ClientSecret)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	switch c.Payments.PreferredRail {
	case "", models.RailPYUSD, models.RailPayPal:
	default:
		return fmt.Errorf("payments.preferred_rail must be %q or %q, got %q",
			models.RailPYUSD, models.RailPayPal, c.Payments.PreferredRail)
	}
	return nil
}
