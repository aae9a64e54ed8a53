package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables consulted by parseEnv.
const (
	EnvAPIBaseURL     = "PENNYWISE_API_URL"
	EnvRequestTimeout = "PENNYWISE_REQUEST_TIMEOUT"
	EnvDatabasePath   = "PENNYWISE_DB"
	EnvLogLevel       = "PENNYWISE_LOG_LEVEL"
)

// envFile is loaded when present; variables already set win over it.
var envFile = ".env"

// parseEnv overlays Config with environment variables. An unset or empty
// variable leaves the field alone. PENNYWISE_REQUEST_TIMEOUT takes a Go
// duration ("15s"); an unparseable value panics like the other loaders.
func parseEnv(cfg *Config) {
	_ = godotenv.Load(envFile)

	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv(EnvRequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv(EnvDatabasePath); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}
