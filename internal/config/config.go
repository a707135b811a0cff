package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider          string        `yaml:"provider"` // yahoo, eastmoney or rest
		BaseURL           string        `yaml:"base_url"`
		APIKey            string        `yaml:"api_key"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
		Timeout           time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Analysis struct {
		PeriodDays      int     `yaml:"period_days"`
		MinConfidence   float64 `yaml:"min_confidence"`
		TopN            int     `yaml:"top_n"`
		Concurrency     int     `yaml:"concurrency"`
		UniverseLimit   int     `yaml:"universe_limit"`
		RealtimeMinutes int     `yaml:"realtime_minutes"`
	} `yaml:"analysis"`
	Cache struct {
		TTL           time.Duration `yaml:"ttl"`
		UniverseTTL   time.Duration `yaml:"universe_ttl"`
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
	} `yaml:"cache"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
		Timezone  string `yaml:"timezone"`
	} `yaml:"schedule"`
	Universe struct {
		Symbols   []string `yaml:"symbols"`
		Indices   []string `yaml:"indices"`
		StateFile string   `yaml:"state_file"`
	} `yaml:"universe"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"database"`
	Output struct {
		ResultsDir string `yaml:"results_dir"`
	} `yaml:"output"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	envFile := ".env"
	if v := os.Getenv("ENV_FILE"); v != "" {
		envFile = v
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] load %s: %v", envFile, err)
	}

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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&c.DataSource.Provider, "DATA_PROVIDER")
	setString(&c.DataSource.BaseURL, "DATA_BASE_URL")
	setString(&c.DataSource.APIKey, "DATA_API_KEY")
	setString(&c.Proxy, "HTTPS_PROXY")
	setString(&c.Cache.RedisAddr, "REDIS_ADDR")
	setString(&c.Cache.RedisPassword, "REDIS_PASSWORD")
	setString(&c.Database.SQLitePath, "SQLITE_PATH")
	setString(&c.Database.PostgresDSN, "POSTGRES_DSN")
	setString(&c.Schedule.DailyCron, "CRON_DAILY")
	setString(&c.Output.ResultsDir, "RESULTS_DIR")

	if v := os.Getenv("MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Analysis.MinConfidence = f
		}
	}
	if v := os.Getenv("TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Analysis.TopN = n
		}
	}
	if v := os.Getenv("CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Analysis.Concurrency = n
		}
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Universe.Symbols = splitList(v)
	}
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
		if c.DataSource.BaseURL != "" {
			c.DataSource.Provider = "rest"
		}
	}
	if c.DataSource.RequestsPerSecond == 0 {
		c.DataSource.RequestsPerSecond = 5
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 15 * time.Second
	}
	if c.Analysis.PeriodDays == 0 {
		c.Analysis.PeriodDays = 120
	}
	if c.Analysis.MinConfidence == 0 {
		c.Analysis.MinConfidence = 80
	}
	if c.Analysis.TopN == 0 {
		c.Analysis.TopN = 10
	}
	if c.Analysis.Concurrency == 0 {
		c.Analysis.Concurrency = 8
	}
	if c.Analysis.UniverseLimit == 0 {
		c.Analysis.UniverseLimit = 200
	}
	if c.Analysis.RealtimeMinutes == 0 {
		c.Analysis.RealtimeMinutes = 30
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 300 * time.Second
	}
	if c.Cache.UniverseTTL == 0 {
		c.Cache.UniverseTTL = 24 * time.Hour
	}
	if c.Schedule.DailyCron == "" {
		c.Schedule.DailyCron = "0 30 13 * * 1-5"
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "Asia/Shanghai"
	}
	if len(c.Universe.Indices) == 0 {
		c.Universe.Indices = []string{"sh000001", "sz399001", "sz399006"}
	}
	if c.Universe.StateFile == "" {
		c.Universe.StateFile = "data/universe.json"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stock_pulse.db"
	}
	if c.Output.ResultsDir == "" {
		c.Output.ResultsDir = "data"
	}
}

// Validate checks that all required fields are set and in range.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "eastmoney":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, eastmoney, rest", c.DataSource.Provider)
	}
	if c.DataSource.RequestsPerSecond < 0 {
		return fmt.Errorf("data_source.requests_per_second must not be negative")
	}
	if c.Analysis.PeriodDays < 30 {
		return fmt.Errorf("analysis.period_days must be at least 30, got %d", c.Analysis.PeriodDays)
	}
	if c.Analysis.MinConfidence < 0 || c.Analysis.MinConfidence > 100 {
		return fmt.Errorf("analysis.min_confidence must be within [0,100], got %v", c.Analysis.MinConfidence)
	}
	if c.Analysis.TopN <= 0 {
		return fmt.Errorf("analysis.top_n must be positive")
	}
	if c.Analysis.Concurrency <= 0 {
		return fmt.Errorf("analysis.concurrency must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	return nil
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Location returns the schedule time zone, falling back to UTC+8 when the
// zone database is unavailable.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		log.Printf("[WARN] load timezone %q: %v, using UTC+8", c.Schedule.Timezone, err)
		return time.FixedZone("CST", 8*3600)
	}
	return loc
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
