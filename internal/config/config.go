// Package config loads process-level inputs from the environment: store
// connection strings and the HTTP bind address (spec.md §6: "Environment
// variables supply connection strings for KV and relational stores and
// the public bind address for the HTTP surface"). No third-party config
// library is used here — see DESIGN.md for why.
package config

import (
	"fmt"
	"os"
)

// Config is the ingestion engine's process-level configuration.
type Config struct {
	// RedisAddr is the go-redis client address (host:port) for the
	// snapshot store.
	RedisAddr string
	// RedisPassword is optional; empty means no AUTH.
	RedisPassword string
	RedisDB       int

	// PostgresDSN is the libpq-style connection string for the event
	// store.
	PostgresDSN string

	// BindAddr is the public HTTP bind address. The HTTP surface itself
	// is out of scope for this module (spec.md §1 Non-goals), but the
	// address is still a process-level input the core accepts so the
	// caller's websocket layer can share one config load.
	BindAddr string
}

// Load reads Config from the environment. Required variables missing
// produce a single aggregated error so an operator sees every problem at
// once instead of fixing them one at a time.
func Load() (Config, error) {
	cfg := Config{
		RedisAddr:     getenv("F123_REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("F123_REDIS_PASSWORD"),
		PostgresDSN:   os.Getenv("F123_POSTGRES_DSN"),
		BindAddr:      getenv("F123_BIND_ADDR", ":8080"),
	}

	var missing []string
	if cfg.PostgresDSN == "" {
		missing = append(missing, "F123_POSTGRES_DSN")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("config: missing required environment variables: %v", missing)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
