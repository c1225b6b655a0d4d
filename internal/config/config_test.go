package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Database.Driver != "sqlite" || cfg.Currency != "MYR" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Draft.TTL != 2*time.Hour || cfg.Notify.Backoff != 200*time.Millisecond || cfg.Notify.MaxRetries != 3 {
		t.Errorf("durations = %+v / %+v", cfg.Draft, cfg.Notify)
	}
	if cfg.Notify.Timeout != time.Minute {
		t.Errorf("notify timeout = %v", cfg.Notify.Timeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JOMSPLIT_SERVER_PORT", "9090")
	t.Setenv("JOMSPLIT_DATABASE_DRIVER", "postgres")
	t.Setenv("JOMSPLIT_DATABASE_URL", "postgres://localhost/jomsplit")
	t.Setenv("JOMSPLIT_DRAFT_TTL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Database.Driver != "postgres" || cfg.Database.URL == "" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Draft.TTL != 30*time.Minute {
		t.Errorf("draft ttl = %v", cfg.Draft.TTL)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jomsplit.yaml")
	content := "server:\n  port: 7070\nauth:\n  jwt_secret: from-file\nlog:\n  format: json\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JOMSPLIT_CONFIG", path)
	t.Setenv("JOMSPLIT_LOG_FORMAT", "text")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7070 || cfg.Auth.JWTSecret != "from-file" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("env should win over file, got format %q", cfg.Log.Format)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "sqlite", Path: "x.db"},
			Auth:     AuthConfig{JWTSecret: "s"},
			Draft:    DraftConfig{TTL: time.Hour},
		}
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := map[string]func(c *Config){
		"unknown driver":   func(c *Config) { c.Database.Driver = "mysql" },
		"postgres no url":  func(c *Config) { c.Database.Driver = "postgres" },
		"missing secret":   func(c *Config) { c.Auth.JWTSecret = "" },
		"bad port":         func(c *Config) { c.Server.Port = 0 },
		"non-positive ttl": func(c *Config) { c.Draft.TTL = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
