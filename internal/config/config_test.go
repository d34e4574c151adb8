package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TODOLIST_PORT", "TODOLIST_DATABASE_URL", "DATABASE_URL",
		"TODOLIST_SECRET_KEY", "SECRET_KEY", "TODOLIST_ALGORITHM", "ALGORITHM",
		"TODOLIST_ACCESS_TOKEN_EXPIRE_MINUTES", "ACCESS_TOKEN_EXPIRE_MINUTES",
		"TODOLIST_BCRYPT_COST", "TODOLIST_LOG_LEVEL", "TODOLIST_LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "HS256", cfg.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL())
	assert.Zero(t, cfg.BcryptCost)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)

	assert.True(t, cfg.EphemeralSecret)
	assert.Len(t, cfg.SecretKey, 64)
	assert.NotEqual(t, cfg.SecretKey, Load().SecretKey)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TODOLIST_PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://fallback")
	t.Setenv("TODOLIST_DATABASE_URL", "postgres://primary")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("TODOLIST_ALGORITHM", "hs512")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("TODOLIST_BCRYPT_COST", "4")
	t.Setenv("TODOLIST_LOG_LEVEL", "DEBUG")
	t.Setenv("TODOLIST_LOG_FORMAT", "json")

	cfg := Load()
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "postgres://primary", cfg.DatabaseURL)
	assert.Equal(t, "s3cret", cfg.SecretKey)
	assert.False(t, cfg.EphemeralSecret)
	assert.Equal(t, "HS512", cfg.Algorithm)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL())
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_IgnoresInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("TODOLIST_PORT", "70000")
	t.Setenv("TODOLIST_ACCESS_TOKEN_EXPIRE_MINUTES", "-1")
	t.Setenv("TODOLIST_BCRYPT_COST", "99")
	t.Setenv("TODOLIST_LOG_FORMAT", "xml")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30, cfg.AccessTokenExpireMinutes)
	assert.Zero(t, cfg.BcryptCost)
	assert.Equal(t, "text", cfg.LogFormat)
}
