package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"BistSentinel/internal/model"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken        string `yaml:"bot_token"`
		ChatID          string `yaml:"chat_id"`
		SendConcurrency int    `yaml:"send_concurrency"`
		SendRetries     int    `yaml:"send_retries"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider string `yaml:"provider"`
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		Suffix   string `yaml:"suffix"`
	} `yaml:"data_source"`
	Scan struct {
		Concurrency   int           `yaml:"concurrency"`
		SymbolTimeout time.Duration `yaml:"symbol_timeout"`
		ReportLimit   int           `yaml:"report_limit"`
		Universe      []string      `yaml:"universe"`
	} `yaml:"scan"`
	Schedule struct {
		ScanCron      string `yaml:"scan_cron"`
		ScanIndicator string `yaml:"scan_indicator"`
		Timezone      string `yaml:"timezone"`
	} `yaml:"schedule"`
	Webhook struct {
		Addr string `yaml:"addr"`
	} `yaml:"webhook"`
	Subscribers struct {
		File string `yaml:"file"`
	} `yaml:"subscribers"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env into the environment, then the YAML file, then applies
// environment variable overrides and defaults. A missing file is allowed.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("VSTRADER_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("VSTRADER_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Webhook.Addr = ":" + v
	}
	if v := os.Getenv("WEBHOOK_ADDR"); v != "" {
		cfg.Webhook.Addr = v
	}
	if v := os.Getenv("SUBSCRIBERS_FILE"); v != "" {
		cfg.Subscribers.File = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		cfg.Schedule.ScanCron = v
	}

	// Defaults
	if cfg.Telegram.SendConcurrency == 0 {
		cfg.Telegram.SendConcurrency = 10
	}
	if cfg.Telegram.SendRetries == 0 {
		cfg.Telegram.SendRetries = 2
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
		if cfg.DataSource.BaseURL != "" {
			cfg.DataSource.Provider = "vstrader"
		}
	}
	if cfg.DataSource.Suffix == "" {
		cfg.DataSource.Suffix = ".IS"
	}
	if cfg.Scan.Concurrency == 0 {
		cfg.Scan.Concurrency = 5
	}
	if cfg.Scan.SymbolTimeout == 0 {
		cfg.Scan.SymbolTimeout = 20 * time.Second
	}
	if len(cfg.Scan.Universe) == 0 {
		cfg.Scan.Universe = append([]string(nil), model.BIST30...)
	}
	if cfg.Schedule.ScanIndicator == "" {
		cfg.Schedule.ScanIndicator = "t3"
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "Europe/Istanbul"
	}
	if cfg.Webhook.Addr == "" {
		cfg.Webhook.Addr = ":8080"
	}
	if cfg.Subscribers.File == "" {
		cfg.Subscribers.File = "data/subscribers.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/bist_sentinel.db"
	}

	return cfg, nil
}

// AdminID returns the admin chat id, or 0 when none is configured.
func (c *Config) AdminID() (int64, error) {
	if c.Telegram.ChatID == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(c.Telegram.ChatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("telegram.chat_id must be numeric: %w", err)
	}
	return id, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if _, err := c.AdminID(); err != nil {
		return err
	}
	if c.Telegram.SendConcurrency <= 0 {
		return fmt.Errorf("telegram.send_concurrency must be positive")
	}
	if c.Telegram.SendRetries < 0 {
		return fmt.Errorf("telegram.send_retries must not be negative")
	}
	if c.Scan.Concurrency <= 0 {
		return fmt.Errorf("scan.concurrency must be positive")
	}
	if len(c.Scan.Universe) == 0 {
		return fmt.Errorf("scan.universe must not be empty")
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "vstrader":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for vstrader")
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}
	return nil
}
