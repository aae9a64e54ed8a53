package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8000", c.APIBaseURL)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, "pennywise.db", c.DatabasePath)
	assert.Equal(t, "info", c.LogLevel)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"api_base_url": "http://json:8000",
		"log_level":    "warn",
	})
	t.Setenv(EnvAPIBaseURL, "http://env:8000")
	t.Setenv(EnvDatabasePath, "env.db")
	t.Setenv(EnvLogLevel, "debug")
	os.Args = []string{"cmd", "-c", path, "-l", "error"}

	cfg := LoadConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "http://json:8000", cfg.APIBaseURL, "json beats env")
	assert.Equal(t, "env.db", cfg.DatabasePath, "env beats defaults")
	assert.Equal(t, "error", cfg.LogLevel, "flags beat json")
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "relative url", mutate: func(c *Config) { c.APIBaseURL = "/api" }, want: "absolute http(s)"},
		{name: "ftp url", mutate: func(c *Config) { c.APIBaseURL = "ftp://x" }, want: "absolute http(s)"},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeout = 0 }, want: "must be positive"},
		{name: "empty db", mutate: func(c *Config) { c.DatabasePath = " " }, want: "database path"},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, want: "unknown log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	c := valid()
	c.APIBaseURL, c.RequestTimeout = "nope", -1
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute http(s)")
	assert.Contains(t, err.Error(), "must be positive")
}
