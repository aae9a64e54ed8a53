// Package config loads runtime configuration for the Pennywise CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally seeded from a .env file (see parseEnv).
//  3. Optional JSON file (see parseJson) selected via -c/-config or
//     $PENNYWISE_CONFIG.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   API base URL
//	-t int      request timeout (seconds)
//	-d string   SQLite database path
//	-l string   log level
//
// # JSON schema
//
// request_timeout uses timex.Duration, so it can be "10s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8000",
//	  "request_timeout": "10s",
//	  "database_path": "pennywise.db",
//	  "log_level": "info"
//	}
package config
