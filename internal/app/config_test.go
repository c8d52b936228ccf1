package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "JWT_SECRET_KEY", "ACCESS_TOKEN_TTL", "DB_DRIVER", "REDIS_ADDR", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(nil)
	if cfg.Port != "8080" || cfg.AccessTokenTTL != 24*time.Hour || cfg.DB.Driver != "postgres" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Redis.Enabled() {
		t.Fatal("redis should be disabled without REDIS_ADDR")
	}
	if len(cfg.CORSOrigins) != 0 {
		t.Fatalf("expected no extra origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "90m")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")
	cfg := LoadConfig(nil)
	if cfg.AccessTokenTTL != 90*time.Minute || cfg.DB.Driver != "sqlite" || !cfg.Redis.Enabled() {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("origins: %v", cfg.CORSOrigins)
	}
}
