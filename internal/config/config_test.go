package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Server.Port != 8501 || cfg.Server.Mode != "release" {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Dashboard.DefaultTickers != "AAPL, TSLA" {
		t.Errorf("unexpected default tickers %q", cfg.Dashboard.DefaultTickers)
	}
	if cfg.DataSource.Range != "5y" || cfg.DataSource.Interval != "1d" || cfg.DataSource.Timeout != 30*time.Second {
		t.Errorf("unexpected data source defaults: %+v", cfg.DataSource)
	}
	if cfg.Snapshot.Cron != "" {
		t.Errorf("snapshot job should be off by default, got %q", cfg.Snapshot.Cron)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be disabled without credentials")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  mode: debug
dashboard:
  default_tickers: "MSFT, NVDA"
data_source:
  timeout: 5s
snapshot:
  cron: "0 0 22 * * 1-5"
`)
	t.Setenv("DASHBOARD_PORT", "9100")
	t.Setenv("YAHOO_BASE_URL", "http://localhost:1234")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("env should override port, got %d", cfg.Server.Port)
	}
	if cfg.Server.Mode != "debug" {
		t.Errorf("expected debug mode, got %q", cfg.Server.Mode)
	}
	if cfg.DataSource.BaseURL != "http://localhost:1234" {
		t.Errorf("unexpected base url %q", cfg.DataSource.BaseURL)
	}
	if cfg.DataSource.Timeout != 5*time.Second {
		t.Errorf("unexpected timeout %v", cfg.DataSource.Timeout)
	}
	if cfg.Snapshot.Tickers != "MSFT, NVDA" {
		t.Errorf("snapshot tickers should default to dashboard tickers, got %q", cfg.Snapshot.Tickers)
	}
	if cfg.Addr() != "0.0.0.0:9100" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoad_BadInput(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Error("expected parse error")
	}
	t.Setenv("DASHBOARD_PORT", "eighty")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"mode", func(c *Config) { c.Server.Mode = "prod" }},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"telegram token only", func(c *Config) { c.Telegram.BotToken = "123:abc" }},
		{"cron", func(c *Config) { c.Snapshot.Cron = "every day" }},
		{"cron without seconds", func(c *Config) { c.Snapshot.Cron = "0 22 * * 1-5" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
