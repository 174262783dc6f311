package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 5*time.Second, cfg.Poller.Interval)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.AIEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/dosewise")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("POLL_INTERVAL", "10s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost:5432/dosewise", cfg.Storage.DatabaseURL)
	assert.True(t, cfg.AIEnabled())
	assert.Equal(t, 10*time.Second, cfg.Poller.Interval)
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "databaseurl is required")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectedErr string
	}{
		{
			name:        "unknown storage driver",
			mutate:      func(c *Config) { c.Storage.Driver = "sqlite" },
			expectedErr: "unknown storage driver",
		},
		{
			name:        "invalid environment",
			mutate:      func(c *Config) { c.Server.Environment = "qa" },
			expectedErr: "invalid environment",
		},
		{
			name:        "non-positive poll interval",
			mutate:      func(c *Config) { c.Poller.Interval = 0 },
			expectedErr: "poller.interval must be positive",
		},
		{
			name: "webhook without timeout",
			mutate: func(c *Config) {
				c.Notifier.WebhookURL = "http://localhost:9000/notify"
				c.Notifier.Timeout = 0
			},
			expectedErr: "notifier.timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:  ServerConfig{Environment: "development"},
				Storage: StorageConfig{Driver: "memory"},
				Poller:  PollerConfig{Interval: 5 * time.Second},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}
