package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Environment:      "development",
		DatabaseDSN:      "postgres://localhost:5432/idadmin",
		DatabaseMaxConns: 10,
		TokenTTL:         time.Hour,
		RateLimitRPS:     20,
		RateLimitBurst:   40,
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("zero rate limit rps", func(t *testing.T) {
		cfg := validConfig()
		cfg.RateLimitRPS = 0
		require.Error(t, cfg.Validate())
	})

	t.Run("zero rate limit burst", func(t *testing.T) {
		cfg := validConfig()
		cfg.RateLimitBurst = 0
		require.Error(t, cfg.Validate())
	})

	t.Run("zero max conns", func(t *testing.T) {
		cfg := validConfig()
		cfg.DatabaseMaxConns = 0
		require.Error(t, cfg.Validate())
	})

	t.Run("production requires jwt secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.Environment = "production"
		require.Error(t, cfg.Validate())

		cfg.JWTSecret = "secret"
		require.NoError(t, cfg.Validate())
	})
}

func TestLoadConfigRejectsZeroRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "0")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_RPS")
}
