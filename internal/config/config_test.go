package config

import (
	"testing"
)

func TestLoadFailsWithoutPostgresDSN(t *testing.T) {
	t.Setenv("F123_POSTGRES_DSN", "")
	t.Setenv("F123_REDIS_ADDR", "")
	t.Setenv("F123_BIND_ADDR", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected Load to fail when F123_POSTGRES_DSN is unset")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("F123_POSTGRES_DSN", "postgres://localhost/f123")
	t.Setenv("F123_REDIS_ADDR", "")
	t.Setenv("F123_BIND_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("RedisAddr = %q, want default", cfg.RedisAddr)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want default", cfg.BindAddr)
	}
}

func TestLoadHonorsOverrides(t *testing.T) {
	t.Setenv("F123_POSTGRES_DSN", "postgres://localhost/f123")
	t.Setenv("F123_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("F123_BIND_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RedisAddr != "redis.internal:6380" {
		t.Fatalf("RedisAddr = %q, want override", cfg.RedisAddr)
	}
	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q, want override", cfg.BindAddr)
	}
}
