package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withEnvFile(t *testing.T, path string) {
	t.Helper()
	orig := envFile
	envFile = path
	t.Cleanup(func() { envFile = orig })
}

func TestParseEnv_OverlaysSetVariables(t *testing.T) {
	withEnvFile(t, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv(EnvAPIBaseURL, "http://env:1")
	t.Setenv(EnvRequestTimeout, "1m")
	t.Setenv(EnvDatabasePath, "")
	t.Setenv(EnvLogLevel, "warn")

	cfg := &Config{DatabasePath: "kept.db"}
	parseEnv(cfg)

	assert.Equal(t, "http://env:1", cfg.APIBaseURL)
	assert.Equal(t, time.Minute, cfg.RequestTimeout)
	assert.Equal(t, "kept.db", cfg.DatabasePath)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestParseEnv_ReadsDotEnvWithoutOverriding(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PENNYWISE_DB=dotenv.db\nPENNYWISE_LOG_LEVEL=error\n"), 0o600))
	withEnvFile(t, path)

	// Registered so t restores the pre-test state of both variables.
	t.Setenv(EnvDatabasePath, "")
	require.NoError(t, os.Unsetenv(EnvDatabasePath))
	t.Setenv(EnvLogLevel, "debug")

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, "dotenv.db", cfg.DatabasePath)
	assert.Equal(t, "debug", cfg.LogLevel, "process environment wins over .env")
}

func TestParseEnv_BadTimeoutPanics(t *testing.T) {
	withEnvFile(t, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv(EnvRequestTimeout, "soon")

	require.Panics(t, func() { parseEnv(&Config{}) })
}
