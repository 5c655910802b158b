package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"coin-dashboard/internal/coingecko"
	"coin-dashboard/internal/models"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config is loaded from an optional YAML file, then overridden by the
// environment (which may itself come from a .env file).
type Config struct {
	Telegram struct {
		Token string `yaml:"token"`
	} `yaml:"telegram"`

	CoinGecko struct {
		BaseURL    string `yaml:"base_url"`
		APIKey     string `yaml:"api_key"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"coingecko"`

	Dashboard struct {
		Currency          string `yaml:"currency"`
		ReferenceCurrency string `yaml:"reference_currency"`
		PageSize          int    `yaml:"page_size"`
		Page              int    `yaml:"page"`
		ChartWidth        int    `yaml:"chart_width"`
	} `yaml:"dashboard"`

	Session struct {
		Store      string `yaml:"store"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"session"`

	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	cfg.CoinGecko.BaseURL = coingecko.DefaultBaseURL
	cfg.CoinGecko.TimeoutSec = 10
	cfg.Dashboard.Currency = string(models.ZAR)
	cfg.Dashboard.ReferenceCurrency = string(models.USD)
	cfg.Dashboard.PageSize = 10
	cfg.Dashboard.Page = 1
	cfg.Dashboard.ChartWidth = 28
	cfg.Session.Store = StoreMemory
	cfg.Session.SQLitePath = "dashboard-session.db"
	cfg.LogLevel = "info"
	return cfg
}

// Load reads the .env file (if any), the YAML file at path (if it exists),
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			logrus.WithField("path", path).Debug("no config file, using defaults")
		default:
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func overrideWithEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			} else {
				logrus.WithField("key", key).Warn("ignoring non-numeric environment value")
			}
		}
	}

	setString(&cfg.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.CoinGecko.BaseURL, "COINGECKO_BASE_URL")
	setString(&cfg.CoinGecko.APIKey, "COINGECKO_API_KEY")
	setInt(&cfg.CoinGecko.TimeoutSec, "COINGECKO_TIMEOUT_SEC")
	setString(&cfg.Dashboard.Currency, "DASHBOARD_CURRENCY")
	setString(&cfg.Dashboard.ReferenceCurrency, "DASHBOARD_REFERENCE_CURRENCY")
	setInt(&cfg.Dashboard.PageSize, "DASHBOARD_PAGE_SIZE")
	setString(&cfg.Session.Store, "DASHBOARD_SESSION_STORE")
	setString(&cfg.Session.SQLitePath, "DASHBOARD_SESSION_PATH")
	setString(&cfg.MetricsAddr, "DASHBOARD_METRICS_ADDR")
	setString(&cfg.LogLevel, "LOG_LEVEL")
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram token is required (TELEGRAM_BOT_TOKEN)")
	}
	if c.CoinGecko.BaseURL == "" {
		return errors.New("coingecko base url is required")
	}
	if c.CoinGecko.TimeoutSec <= 0 {
		return errors.New("coingecko timeout must be positive")
	}
	if c.Currency() == "" || c.ReferenceCurrency() == "" {
		return errors.New("currency and reference currency are required")
	}
	if c.Dashboard.PageSize < 1 || c.Dashboard.PageSize > 250 {
		return fmt.Errorf("page size must be between 1 and 250, got %d", c.Dashboard.PageSize)
	}
	if c.Dashboard.Page < 1 {
		return fmt.Errorf("page must be positive, got %d", c.Dashboard.Page)
	}
	switch c.Session.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.Session.SQLitePath == "" {
			return errors.New("sqlite session store needs a path")
		}
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c *Config) Currency() models.Currency {
	return models.ParseCurrency(c.Dashboard.Currency)
}

func (c *Config) ReferenceCurrency() models.Currency {
	return models.ParseCurrency(c.Dashboard.ReferenceCurrency)
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.CoinGecko.TimeoutSec) * time.Second
}

// Level is the parsed log level; Validate guarantees it parses.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
