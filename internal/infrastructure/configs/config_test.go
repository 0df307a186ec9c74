package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("defaults-only load failed: %v", err)
	}

	if cfg.HTTP.Host != "0.0.0.0" || cfg.HTTP.Port != 8080 {
		t.Errorf("unexpected http defaults: %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	}
	if cfg.RateLimiter.RequestsPerTimeFrame != 20 || cfg.RateLimiter.TimeFrame != 5*time.Second {
		t.Errorf("unexpected rate limiter defaults: %+v", cfg.RateLimiter)
	}
	if cfg.Relay.SendBuffer != 256 {
		t.Errorf("unexpected send buffer default: %d", cfg.Relay.SendBuffer)
	}
	if cfg.Relay.MaxMessageSize != 64*1024 {
		t.Errorf("unexpected max message size default: %d", cfg.Relay.MaxMessageSize)
	}
	if cfg.History.Capacity != 100 {
		t.Errorf("unexpected history capacity default: %d", cfg.History.Capacity)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte(`
http:
  host: 127.0.0.1
  port: 9999
relay:
  send_buffer: 32
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.HTTP.Host != "127.0.0.1" || cfg.HTTP.Port != 9999 {
		t.Errorf("file values not applied: %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	}
	if cfg.Relay.SendBuffer != 32 {
		t.Errorf("file value not applied: %d", cfg.Relay.SendBuffer)
	}

	// Keys absent from the file keep their defaults.
	if cfg.History.Capacity != 100 {
		t.Errorf("default lost for untouched key: %d", cfg.History.Capacity)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatal("a named but missing config file is an error")
	}
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("HISTORY_CAPACITY", "7")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.HTTP.Port != 7070 {
		t.Errorf("env override not applied: %d", cfg.HTTP.Port)
	}
	if cfg.History.Capacity != 7 {
		t.Errorf("env override not applied: %d", cfg.History.Capacity)
	}
}
