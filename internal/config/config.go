// Package config loads application configuration from environment
// variables with viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	OpenAI   OpenAIConfig
	Notifier NotifierConfig
	Poller   PollerConfig
	Logging  LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	Driver      string // postgres or memory
	DatabaseURL string
}

// OpenAIConfig holds the optional AI assistant configuration. With no
// API key set the assistant endpoints are disabled.
type OpenAIConfig struct {
	Endpoint string // set for Azure OpenAI, empty for api.openai.com
	APIKey   string
	Model    string
}

// NotifierConfig holds reminder delivery configuration. With no webhook
// URL set, reminders are written to the application log.
type NotifierConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// PollerConfig holds reminder poller configuration
type PollerConfig struct {
	Interval time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)

	v.SetDefault("storage.driver", "memory")

	v.SetDefault("openai.model", "gpt-4o-mini")

	v.SetDefault("notifier.timeout", 10*time.Second)

	v.SetDefault("poller.interval", 5*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")

	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.databaseurl", "DATABASE_URL")

	v.BindEnv("openai.endpoint", "OPENAI_ENDPOINT", "AZURE_OPENAI_ENDPOINT")
	v.BindEnv("openai.apikey", "OPENAI_API_KEY", "AZURE_OPENAI_API_KEY")
	v.BindEnv("openai.model", "OPENAI_MODEL")

	v.BindEnv("notifier.webhookurl", "NOTIFY_WEBHOOK_URL")
	v.BindEnv("notifier.timeout", "NOTIFY_TIMEOUT")

	v.BindEnv("poller.interval", "POLL_INTERVAL")

	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("storage.databaseurl is required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}

	if c.Poller.Interval <= 0 {
		return fmt.Errorf("poller.interval must be positive")
	}

	if c.Notifier.WebhookURL != "" && c.Notifier.Timeout <= 0 {
		return fmt.Errorf("notifier.timeout must be positive")
	}

	validEnvironments := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Server.Environment)
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// AIEnabled reports whether the assistant endpoints should be served
func (c *Config) AIEnabled() bool {
	return c.OpenAI.APIKey != ""
}
