package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"BistSentinel/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "VSTRADER_BASE_URL", "VSTRADER_API_KEY",
		"HTTPS_PROXY", "PORT", "WEBHOOK_ADDR", "SUBSCRIBERS_FILE", "SQLITE_PATH", "SCAN_CRON",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scan.Concurrency != 5 || cfg.Scan.SymbolTimeout != 20*time.Second {
		t.Errorf("unexpected scan defaults %+v", cfg.Scan)
	}
	if len(cfg.Scan.Universe) != 30 || cfg.Schedule.ScanIndicator != "t3" || cfg.Schedule.Timezone != "Europe/Istanbul" {
		t.Errorf("unexpected defaults: %d symbols, %s, %s", len(cfg.Scan.Universe), cfg.Schedule.ScanIndicator, cfg.Schedule.Timezone)
	}
	if cfg.Telegram.SendRetries != 2 {
		t.Errorf("expected 2 send retries, got %d", cfg.Telegram.SendRetries)
	}
	if cfg.DataSource.Provider != "yahoo" || cfg.Webhook.Addr != ":8080" || cfg.Telegram.SendConcurrency != 10 {
		t.Errorf("unexpected defaults %s %s %d", cfg.DataSource.Provider, cfg.Webhook.Addr, cfg.Telegram.SendConcurrency)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "bot_token") {
		t.Errorf("expected missing token error, got %v", err)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
telegram:
  bot_token: from-file
  chat_id: "333"
scan:
  concurrency: 3
  symbol_timeout: 5s
  universe: [THYAO, GARAN]
schedule:
  scan_cron: "0 0 18 * * 1-5"
  scan_indicator: rsi
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("PORT", "10000")
	t.Setenv("VSTRADER_BASE_URL", "http://vst.local")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Telegram.BotToken != "from-env" {
		t.Errorf("env should override file token, got %s", cfg.Telegram.BotToken)
	}
	if id, _ := cfg.AdminID(); id != 333 {
		t.Errorf("expected admin 333, got %d", id)
	}
	if cfg.Scan.Concurrency != 3 || cfg.Scan.SymbolTimeout != 5*time.Second || len(cfg.Scan.Universe) != 2 {
		t.Errorf("unexpected scan section %+v", cfg.Scan)
	}
	if cfg.Webhook.Addr != ":10000" {
		t.Errorf("expected PORT to set the listen address, got %s", cfg.Webhook.Addr)
	}
	if cfg.DataSource.Provider != "vstrader" {
		t.Errorf("base url should select vstrader, got %s", cfg.DataSource.Provider)
	}
	if cfg.Schedule.ScanIndicator != "rsi" {
		t.Errorf("expected rsi, got %s", cfg.Schedule.ScanIndicator)
	}
}

func TestValidate_Rejects(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"non-numeric admin", func(c *Config) { c.Telegram.ChatID = "@admin" }, "numeric"},
		{"negative retries", func(c *Config) { c.Telegram.SendRetries = -1 }, "send_retries"},
		{"zero concurrency", func(c *Config) { c.Scan.Concurrency = -1 }, "scan.concurrency"},
		{"empty universe", func(c *Config) { c.Scan.Universe = nil }, "universe"},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, "provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			cfg.Telegram.BotToken = "x"
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	if _, err := Load(writeConfig(t, "telegram: [unclosed")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestLoad_DefaultUniverseIsACopy(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	first := model.BIST30[0]
	cfg.Scan.Universe[0] = "CHANGED"
	if model.BIST30[0] != first {
		t.Error("editing the configured universe must not modify the shared default list")
	}
}
