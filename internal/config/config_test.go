package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("STORE_BACKEND")
	os.Unsetenv("AUTOSAVE_DEBOUNCE_MS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.StoreBackend != "memory" {
		t.Errorf("expected default store backend memory, got %s", cfg.StoreBackend)
	}
	if cfg.AutosaveDebounceMS != 2000 {
		t.Errorf("expected default debounce 2000ms, got %d", cfg.AutosaveDebounceMS)
	}
	if cfg.DBMaxConns != 20 {
		t.Errorf("expected default max conns 20, got %d", cfg.DBMaxConns)
	}
}

func TestLoad_StoreBackendFromEnv(t *testing.T) {
	os.Setenv("STORE_BACKEND", "redis")
	os.Setenv("REDIS_URL", "redis://localhost:6379/0")
	defer os.Unsetenv("STORE_BACKEND")
	defer os.Unsetenv("REDIS_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StoreBackend != "redis" {
		t.Errorf("expected redis, got %s", cfg.StoreBackend)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("expected REDIS_URL to be set, got %s", cfg.RedisURL)
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}

func TestConfig_AutosaveDebounce(t *testing.T) {
	c := &Config{AutosaveDebounceMS: 500}
	if c.AutosaveDebounce() != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", c.AutosaveDebounce())
	}
}

func TestValidate_RedisRequiresURL(t *testing.T) {
	c := &Config{Env: "development", StoreBackend: "redis", AutosaveDebounceMS: 2000}
	if err := c.Validate(); err == nil {
		t.Error("expected error when REDIS_URL is missing")
	}
}

func TestValidate_PostgresRequiresURL(t *testing.T) {
	c := &Config{Env: "development", StoreBackend: "postgres", AutosaveDebounceMS: 2000}
	if err := c.Validate(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestValidate_UnknownBackend(t *testing.T) {
	c := &Config{Env: "development", StoreBackend: "bogus", AutosaveDebounceMS: 2000}
	if err := c.Validate(); err == nil {
		t.Error("expected error for unknown store backend")
	}
}

func TestValidate_ProductionRejectsMemoryStore(t *testing.T) {
	c := &Config{
		Env:                "production",
		StoreBackend:       "memory",
		AutosaveDebounceMS: 2000,
		AuthSigningKey:     "secret",
	}
	if err := c.Validate(); err == nil {
		t.Error("expected error for memory store in production")
	}
}

func TestValidate_ProductionRequiresAuth(t *testing.T) {
	c := &Config{
		Env:                "production",
		StoreBackend:       "redis",
		RedisURL:           "redis://localhost:6379/0",
		AutosaveDebounceMS: 2000,
	}
	if err := c.Validate(); err == nil {
		t.Error("expected error when no auth configuration is set in production")
	}
}

func TestValidate_NonPositiveDebounce(t *testing.T) {
	c := &Config{Env: "development", StoreBackend: "memory", AutosaveDebounceMS: 0}
	if err := c.Validate(); err == nil {
		t.Error("expected error for zero debounce interval")
	}
}
