package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "support-desk", cfg.App.Name)
	require.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	require.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	require.Equal(t, "info", cfg.Logger.Level)
	require.True(t, cfg.Postgres.RunMigrations)
	require.Equal(t, 30*time.Second, cfg.Analytics.CacheTTL())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("ANALYTICS_CACHE_TTL_SECONDS", "0")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	require.False(t, cfg.Postgres.RunMigrations)
	require.Equal(t, time.Duration(0), cfg.Analytics.CacheTTL())
	require.Equal(t, 5, cfg.Auth.AccessTokenTTLMinutes)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	_, err := Load()
	require.Error(t, err)
}

func TestIntAndBoolFallbacks(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	require.Equal(t, 7, getEnvAsInt("SOME_INT", 7))

	t.Setenv("SOME_BOOL", "maybe")
	require.True(t, getEnvAsBool("SOME_BOOL", true))
}
