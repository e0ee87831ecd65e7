package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for pricewatch-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Generative AI provider configuration
	AI AIConfig `yaml:"ai"`

	// Price-refresh scheduler configuration
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Redis configuration (optional dashboard cache)
	Redis RedisConfig `yaml:"redis"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"pricewatch"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"pricewatch"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// AIConfig holds the chat-completion provider endpoint used by the price
// estimator. The endpoint must speak the OpenAI-compatible protocol.
type AIConfig struct {
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:""`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:"gemini-1.5-pro"`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML
}

// SchedulerConfig holds the price-refresh scheduler settings.
// The schedule itself (time of day, batch size, AI parameters) lives in the
// database and is re-read every PollInterval; these values only control the
// polling machinery.
type SchedulerConfig struct {
	PollIntervalSeconds int    `yaml:"poll_interval_seconds" env:"SCHEDULER_POLL_INTERVAL_SECONDS" env-default:"20"`
	Timezone            string `yaml:"timezone" env:"SCHEDULER_TIMEZONE" env-default:"Asia/Jakarta"`
	// Workers bounds concurrent external calls within one batch. The legacy
	// system processed records strictly one at a time; keep 1 unless the
	// provider's rate limits allow more.
	Workers int `yaml:"workers" env:"SCHEDULER_WORKERS" env-default:"1"`
}

// PollInterval returns the config poll interval as a duration.
func (c *SchedulerConfig) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// JWTSecret signs API tokens. Server fails to start without it unless
	// running in the local environment.
	JWTSecret        string `yaml:"-" env:"JWT_SECRET"` // Secret - not in YAML
	TokenExpiryHours int    `yaml:"token_expiry_hours" env:"AUTH_TOKEN_EXPIRY_HOURS" env-default:"24"`

	// Admin account seeded at startup when the email does not exist yet.
	// Without these a fresh database has no account that can log in.
	AdminName     string `yaml:"-" env:"ADMIN_NAME" env-default:"Administrator"`
	AdminEmail    string `yaml:"-" env:"ADMIN_EMAIL"`
	AdminPassword string `yaml:"-" env:"ADMIN_PASSWORD"` // Secret - not in YAML
}

// TokenExpiry returns the configured token lifetime.
func (c *AuthConfig) TokenExpiry() time.Duration {
	if c.TokenExpiryHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TokenExpiryHours) * time.Hour
}

// RedisConfig holds optional Redis cache configuration.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// IsAvailable returns true if a Redis host is configured.
func (c *RedisConfig) IsAvailable() bool {
	return c.Host != ""
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate checks cross-field requirements that cleanenv cannot express.
func (c *Config) validate() error {
	if c.AI.Endpoint == "" {
		return fmt.Errorf("ai.endpoint is required")
	}
	if c.Env != "local" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set outside the local environment")
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("invalid scheduler timezone %q: %w", c.Scheduler.Timezone, err)
	}
	if c.Auth.AdminEmail != "" && c.Auth.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD must be set when ADMIN_EMAIL is")
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
