package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.App.HTTPAddr != ":7000" {
		t.Fatalf("expected default addr, got %s", cfg.App.HTTPAddr)
	}
	if cfg.Security.SessionTTL != 7*24*time.Hour {
		t.Fatalf("expected 7d session ttl, got %s", cfg.Security.SessionTTL)
	}
	if cfg.Security.VerifyTTL != 24*time.Hour {
		t.Fatalf("expected 24h verify ttl, got %s", cfg.Security.VerifyTTL)
	}
	if cfg.Security.ResetTTL != time.Hour {
		t.Fatalf("expected 1h reset ttl, got %s", cfg.Security.ResetTTL)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"app": {"http_addr": ":9000", "client_url": "https://app.example.com"},
		"redis": {"addr": "redis:6379"},
		"security": {"jwt_secret": "file-secret", "session_ttl": "48h", "reset_ttl": "30m"}
	}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.App.HTTPAddr != ":9000" {
		t.Fatalf("expected :9000, got %s", cfg.App.HTTPAddr)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("expected redis:6379, got %s", cfg.Redis.Addr)
	}
	if cfg.Security.JWTSecret != "file-secret" {
		t.Fatalf("expected file-secret, got %s", cfg.Security.JWTSecret)
	}
	if cfg.Security.SessionTTL != 48*time.Hour {
		t.Fatalf("expected 48h, got %s", cfg.Security.SessionTTL)
	}
	if cfg.Security.ResetTTL != 30*time.Minute {
		t.Fatalf("expected 30m, got %s", cfg.Security.ResetTTL)
	}
	// Unset fields still pick up defaults.
	if cfg.Security.VerifyTTL != 24*time.Hour {
		t.Fatalf("expected default verify ttl, got %s", cfg.Security.VerifyTTL)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("REDIS_ADDR", "env-redis:6379")
	t.Setenv("PORT", "8080")
	t.Setenv("CLIENT_URL", "https://env.example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Security.JWTSecret != "env-secret" {
		t.Fatalf("expected env secret, got %s", cfg.Security.JWTSecret)
	}
	if cfg.Redis.Addr != "env-redis:6379" {
		t.Fatalf("expected env redis addr, got %s", cfg.Redis.Addr)
	}
	if cfg.App.HTTPAddr != ":8080" {
		t.Fatalf("expected PORT override, got %s", cfg.App.HTTPAddr)
	}
	if cfg.App.ClientURL != "https://env.example.com" {
		t.Fatalf("expected env client url, got %s", cfg.App.ClientURL)
	}
}

func TestValidateDefaults(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected default config valid, got %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	mutate := func(f func(*Config)) *Config {
		cfg := Default()
		f(cfg)
		return cfg
	}

	cases := []struct {
		name string
		cfg  *Config
	}{
		{"empty secret", mutate(func(c *Config) { c.Security.JWTSecret = "" })},
		{"zero session ttl", mutate(func(c *Config) { c.Security.SessionTTL = 0 })},
		{"zero verify ttl", mutate(func(c *Config) { c.Security.VerifyTTL = 0 })},
		{"zero reset ttl", mutate(func(c *Config) { c.Security.ResetTTL = 0 })},
		{"no redis addr", mutate(func(c *Config) { c.Redis.Addr = "" })},
		{"weak password cost", mutate(func(c *Config) { c.Security.PasswordCost.Memory = 64 })},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestValidateHardened(t *testing.T) {
	base := func() *Config {
		cfg := Default()
		cfg.Security.Hardened = true
		cfg.Security.JWTSecret = "0123456789abcdef0123456789abcdef"
		cfg.Email.SMTPHost = "smtp.example.com"
		cfg.Email.FromEmail = "auth@example.com"
		return cfg
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("expected hardened config valid, got %v", err)
	}

	short := base()
	short.Security.JWTSecret = "too-short"
	if err := short.Validate(); err == nil {
		t.Fatal("expected error for short secret in hardened mode")
	}

	defSecret := base()
	defSecret.Security.JWTSecret = Default().Security.JWTSecret
	if err := defSecret.Validate(); err == nil {
		t.Fatal("expected error for default secret in hardened mode")
	}

	longSession := base()
	longSession.Security.SessionTTL = 60 * 24 * time.Hour
	if err := longSession.Validate(); err == nil {
		t.Fatal("expected error for oversized session ttl in hardened mode")
	}

	noMail := base()
	noMail.Email.SMTPHost = ""
	if err := noMail.Validate(); err == nil {
		t.Fatal("expected error for missing mail sender in hardened mode")
	}
}
