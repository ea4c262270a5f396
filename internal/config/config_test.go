package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Auth.JWTSecret, "secret must never be defaulted")
	assert.Equal(t, DefaultJWTExpiresIn, cfg.Auth.JWTExpiresIn)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "3000", cfg.App.Port)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("JWT_EXPIRES_IN", "7d")
	t.Setenv("AUTH_BCRYPT_COST", "4")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cr3t", cfg.Auth.JWTSecret)
	assert.Equal(t, "7d", cfg.Auth.JWTExpiresIn)
	assert.Equal(t, 4, cfg.Auth.BcryptCost)
	assert.True(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, 5*time.Second, cfg.App.RequestTimeout())
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	assert.Error(t, err)
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("AUTH_LOGIN_MAX_ATTEMPTS", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Auth.LoginMaxAttempts)
}
