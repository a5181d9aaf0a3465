package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"InvestmentDashboard/internal/watchlist"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Mode string `yaml:"mode"` // gin mode: debug, release, test
	} `yaml:"server"`
	Dashboard struct {
		Title          string `yaml:"title"`
		DefaultTickers string `yaml:"default_tickers"`
	} `yaml:"dashboard"`
	DataSource struct {
		BaseURL   string        `yaml:"base_url"`
		CookieURL string        `yaml:"cookie_url"`
		Range     string        `yaml:"range"`
		Interval  string        `yaml:"interval"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled"`
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	CORS struct {
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"cors"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // console or json
	} `yaml:"logging"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Snapshot struct {
		Cron       string `yaml:"cron"`
		Tickers    string `yaml:"tickers"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"snapshot"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
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

	// .env never overrides variables already set in the process.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DASHBOARD_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("DASHBOARD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DASHBOARD_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.Server.Mode = v
	}
	if v := os.Getenv("DASHBOARD_TICKERS"); v != "" {
		c.Dashboard.DefaultTickers = v
	}
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("SNAPSHOT_CRON"); v != "" {
		c.Snapshot.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Snapshot.SQLitePath = v
	}
	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		c.CORS.AllowOrigins = strings.Split(v, ",")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8501
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Dashboard.Title == "" {
		c.Dashboard.Title = "Interactive Investment Dashboard"
	}
	if c.Dashboard.DefaultTickers == "" {
		c.Dashboard.DefaultTickers = watchlist.DefaultInput
	}
	if c.DataSource.Range == "" {
		c.DataSource.Range = "5y"
	}
	if c.DataSource.Interval == "" {
		c.DataSource.Interval = "1d"
	}
	if c.DataSource.Timeout <= 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.RateLimit.RPS <= 0 {
		c.RateLimit.RPS = 2
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 5
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Snapshot.Tickers == "" {
		c.Snapshot.Tickers = c.Dashboard.DefaultTickers
	}
	if c.Snapshot.SQLitePath == "" {
		c.Snapshot.SQLitePath = "data/dashboard.db"
	}
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// TelegramEnabled reports whether both bot credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks field ranges and cross-field requirements.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.RateLimit.Enabled && c.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate_limit.rps must be positive")
	}
	if c.Snapshot.Cron != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.Snapshot.Cron); err != nil {
			return fmt.Errorf("snapshot.cron: %w", err)
		}
	}
	return nil
}
