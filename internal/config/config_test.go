package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("HOST", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("KEEPALIVE_URL", "")
	t.Setenv("KEEPALIVE_INTERVAL_MINUTES", "")
	t.Setenv("DEBUG", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.True(t, cfg.Server.MetricsEnabled)
	assert.Equal(t, "tribofy", cfg.Database.Name)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 14*time.Minute, cfg.KeepAlive.Interval)
	assert.Empty(t, cfg.KeepAlive.URL)
	assert.False(t, cfg.Debug)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("DB_NAME", "tribofy_test")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com,https://admin.example.com")
	t.Setenv("KEEPALIVE_URL", "https://app.example.com/health")
	t.Setenv("KEEPALIVE_INTERVAL_MINUTES", "5")
	t.Setenv("DEBUG", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "tribofy_test", cfg.Database.Name)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://app.example.com/health", cfg.KeepAlive.URL)
	assert.Equal(t, 5*time.Minute, cfg.KeepAlive.Interval)
	assert.True(t, cfg.Debug)
}

func TestLoadConfigMissingMongoURL(t *testing.T) {
	t.Setenv("MONGO_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := LoadConfig()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URL")
}

func TestLoadConfigMissingJWTSecret(t *testing.T) {
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
