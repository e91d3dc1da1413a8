package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"InsiderWatch/internal/classifier"
)

// Command is an external script invocation.
type Command struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Dir     string   `yaml:"dir"`
}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL        string  `yaml:"base_url"` // empty: Yahoo chart API
		APIKey         string  `yaml:"api_key"`
		RequestsPerSec float64 `yaml:"requests_per_sec"`
		HistoryDays    int     `yaml:"history_days"`
	} `yaml:"data_source"`
	Scraper    Command `yaml:"scraper"`
	Enrichment struct {
		Watchlist      []string `yaml:"watchlist"`
		Concurrency    int      `yaml:"concurrency"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		Cron           string   `yaml:"cron"`
		RunOnStart     bool     `yaml:"run_on_start"`
		SnapshotFile   string   `yaml:"snapshot_file"`
	} `yaml:"enrichment"`
	Political struct {
		DSN          string    `yaml:"dsn"`
		RefreshCron  string    `yaml:"refresh_cron"`
		Scripts      []Command `yaml:"scripts"`
		LookbackDays int       `yaml:"lookback_days"` // add recently traded tickers to the watchlist
	} `yaml:"political"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Classifier classifier.Thresholds `yaml:"classifier"`
	Proxy      string                `yaml:"proxy"`
}

// Load reads config from a YAML file, then a .env file if present, then
// applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	// Keys absent from the file keep their defaults; explicit zeros survive
	// to Validate.
	cfg := &Config{Classifier: classifier.DefaultThresholds()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to read .env file")
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("HTTP_ADDR", &c.Server.Addr)
	setString("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	setString("PRICE_BASE_URL", &c.DataSource.BaseURL)
	setString("PRICE_API_KEY", &c.DataSource.APIKey)
	setString("HTTPS_PROXY", &c.Proxy)
	setString("POSTGRES_DSN", &c.Political.DSN)
	setString("SQLITE_PATH", &c.Database.SQLitePath)
	setString("ENRICH_CRON", &c.Enrichment.Cron)
	setString("LOG_LEVEL", &c.Log.Level)

	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Enrichment.Watchlist = splitList(v)
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enrichment.RunOnStart = b
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.DataSource.RequestsPerSec <= 0 {
		c.DataSource.RequestsPerSec = 2
	}
	if c.DataSource.HistoryDays <= 0 {
		c.DataSource.HistoryDays = 400
	}
	if c.Scraper.Command == "" {
		c.Scraper.Command = "python3"
		if len(c.Scraper.Args) == 0 {
			c.Scraper.Args = []string{"scripts/insider_scraper.py"}
		}
	}
	if c.Enrichment.Concurrency <= 0 {
		c.Enrichment.Concurrency = 10
	}
	if c.Enrichment.TimeoutSeconds <= 0 {
		c.Enrichment.TimeoutSeconds = 10
	}
	if c.Enrichment.Cron == "" {
		c.Enrichment.Cron = "0 30 22 * * 1-5"
	}
	if c.Enrichment.SnapshotFile == "" {
		c.Enrichment.SnapshotFile = "data/latest_enrichment.json"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/insider_watch.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	tickers := c.Enrichment.Watchlist[:0]
	for _, t := range c.Enrichment.Watchlist {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			tickers = append(tickers, t)
		}
	}
	c.Enrichment.Watchlist = tickers
}

// TelegramEnabled reports whether a bot token is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

// TelegramChatID returns the numeric chat id.
func (c *Config) TelegramChatID() (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Telegram.ChatID), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("telegram.chat_id must be numeric: %w", err)
	}
	return id, nil
}

// LogLevel returns the parsed zerolog level.
func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.TelegramEnabled() {
		if c.Telegram.ChatID == "" {
			errs = append(errs, fmt.Errorf("telegram.chat_id is required when bot_token is set"))
		} else if _, err := c.TelegramChatID(); err != nil {
			errs = append(errs, err)
		}
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Enrichment.Cron); err != nil {
		errs = append(errs, fmt.Errorf("enrichment.cron: %w", err))
	}
	if c.Political.RefreshCron != "" {
		if _, err := parser.Parse(c.Political.RefreshCron); err != nil {
			errs = append(errs, fmt.Errorf("political.refresh_cron: %w", err))
		}
	}
	for i, s := range c.Political.Scripts {
		if s.Command == "" {
			errs = append(errs, fmt.Errorf("political.scripts[%d].command is required", i))
		}
	}
	if err := c.Classifier.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("classifier: %w", err))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
