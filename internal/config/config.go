package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Marketplace MarketplaceConfig `yaml:"marketplace"`
	Booking     BookingConfig     `yaml:"booking"`
	Cart        CartConfig        `yaml:"cart"`
	Session     SessionConfig     `yaml:"session"`
	Redis       RedisConfig       `yaml:"redis"`
	Database    DatabaseConfig    `yaml:"database"`
	SendGrid    SendGridConfig    `yaml:"sendgrid"`
	Log         LogConfig         `yaml:"log"`
	Drafts      DraftsConfig      `yaml:"drafts"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
}

// ServerConfig contains listener settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"`
}

// MarketplaceConfig points at the marketplace backend
type MarketplaceConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	ServiceToken   string `yaml:"service_token"` // used by the draft sweep
	TokenSecret    string `yaml:"token_secret"`  // optional HMAC key for JWT customer tokens
}

type BookingConfig struct {
	Timezone               string `yaml:"timezone"`
	Country                string `yaml:"country"`
	RequireCompleteAddress bool   `yaml:"require_complete_address"`
}

type CartConfig struct {
	PricingFormula     string `yaml:"pricing_formula"` // "tiered" or "flat"
	TaxRateBasisPoints int64  `yaml:"tax_rate_bp"`
}

// SessionConfig selects the booking session store
type SessionConfig struct {
	Backend    string `yaml:"backend"` // "memory" or "redis"
	TTLMinutes int    `yaml:"ttl_minutes"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DatabaseConfig contains PostgreSQL connection settings for the draft
// journal. An empty host disables the journal.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// SendGridConfig contains invoice mail settings. An empty API key disables
// mail.
type SendGridConfig struct {
	APIKey   string `yaml:"api_key"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
	Host     string `yaml:"host"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// DraftsConfig controls the abandoned draft sweep
type DraftsConfig struct {
	AbandonAfterMinutes int `yaml:"abandon_after_minutes"`
	BatchSize           int `yaml:"batch_size"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	SweepDrafts string `yaml:"sweep_drafts"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.GRPCPort)
	}

	// Marketplace
	if val := os.Getenv("RENTFLOW_BACKEND_URL"); val != "" {
		c.Marketplace.BaseURL = val
	}
	if val := os.Getenv("RENTFLOW_SERVICE_TOKEN"); val != "" {
		c.Marketplace.ServiceToken = val
	}
	if val := os.Getenv("RENTFLOW_TOKEN_SECRET"); val != "" {
		c.Marketplace.TokenSecret = val
	}

	// Booking
	if val := os.Getenv("RENTFLOW_TIMEZONE"); val != "" {
		c.Booking.Timezone = val
	}

	// Session store
	if val := os.Getenv("RENTFLOW_SESSION_BACKEND"); val != "" {
		c.Session.Backend = val
	}
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM"); val != "" {
		c.SendGrid.From = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.Server.GRPCPort)
	}

	if c.Marketplace.BaseURL == "" {
		return fmt.Errorf("marketplace base URL is required")
	}
	if c.Marketplace.TimeoutSeconds == 0 {
		c.Marketplace.TimeoutSeconds = 10
	}

	if c.Booking.Timezone == "" {
		c.Booking.Timezone = "Asia/Kolkata"
	}
	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return fmt.Errorf("invalid booking timezone %q: %w", c.Booking.Timezone, err)
	}
	if c.Booking.Country == "" {
		c.Booking.Country = "India"
	}

	c.Cart.PricingFormula = strings.ToLower(c.Cart.PricingFormula)
	switch c.Cart.PricingFormula {
	case "":
		c.Cart.PricingFormula = "tiered"
	case "tiered", "flat":
	default:
		return fmt.Errorf("invalid cart pricing formula: %s", c.Cart.PricingFormula)
	}
	if c.Cart.TaxRateBasisPoints == 0 {
		c.Cart.TaxRateBasisPoints = 800 // 8%
	}
	if c.Cart.TaxRateBasisPoints < 0 {
		return fmt.Errorf("invalid cart tax rate: %d", c.Cart.TaxRateBasisPoints)
	}

	switch c.Session.Backend {
	case "":
		c.Session.Backend = "memory"
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for the redis session backend")
		}
	default:
		return fmt.Errorf("invalid session backend: %s", c.Session.Backend)
	}
	if c.Session.TTLMinutes == 0 {
		c.Session.TTLMinutes = 120
	}

	if c.Database.Host != "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	}

	if c.SendGrid.APIKey != "" && c.SendGrid.From == "" {
		return fmt.Errorf("sendgrid sender address is required")
	}
	if c.SendGrid.Host == "" {
		c.SendGrid.Host = "https://api.sendgrid.com"
	}

	if c.Drafts.AbandonAfterMinutes == 0 {
		c.Drafts.AbandonAfterMinutes = 24 * 60
	}
	if c.Drafts.BatchSize == 0 {
		c.Drafts.BatchSize = 100
	}
	if c.Scheduler.SweepDrafts == "" {
		c.Scheduler.SweepDrafts = "0 */15 * * * *" // every 15 minutes
	}

	return nil
}

// DatabaseEnabled reports whether the draft journal should use Postgres.
func (c *Config) DatabaseEnabled() bool {
	return c.Database.Host != ""
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the gRPC health listener address, or "" when disabled.
func (c *Config) GetGRPCAddress() string {
	if c.Server.GRPCPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) MarketplaceTimeout() time.Duration {
	return time.Duration(c.Marketplace.TimeoutSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

func (c *Config) AbandonAfter() time.Duration {
	return time.Duration(c.Drafts.AbandonAfterMinutes) * time.Minute
}
