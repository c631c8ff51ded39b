package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("DATABASE_URL", "")

		require.NoError(t, LoadConfig())
		assert.Equal(t, "8080", AppConfig.HTTPPort)
		assert.Equal(t, "info", AppConfig.LogLevel)
		assert.Equal(t, "console", AppConfig.LogFormat)
		assert.Equal(t, time.Hour, AppConfig.TokenTTL)
		assert.Equal(t, 10*time.Minute, AppConfig.PendingActionTTL)
	})

	t.Run("overrides from environment", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("HTTP_PORT", "9090")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("PENDING_ACTION_TTL", "30s")
		t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/finchat")

		require.NoError(t, LoadConfig())
		assert.Equal(t, "9090", AppConfig.HTTPPort)
		assert.Equal(t, "debug", AppConfig.LogLevel)
		assert.Equal(t, 30*time.Second, AppConfig.PendingActionTTL)
		assert.True(t, AppConfig.IsPostgres())
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		assert.Error(t, LoadConfig())
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("PENDING_ACTION_TTL", "-1m")
		assert.Error(t, LoadConfig())
	})
}

func TestIsPostgres(t *testing.T) {
	assert.False(t, Config{DatabaseURL: "finchat.db"}.IsPostgres())
	assert.False(t, Config{DatabaseURL: ":memory:"}.IsPostgres())
	assert.True(t, Config{DatabaseURL: "postgresql://localhost/finchat"}.IsPostgres())
}
