package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`

	DataSource struct {
		// BaseURL of a self-hosted candle REST API. Empty means Yahoo Finance.
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"data_source"`

	// Symbols to scan. When empty, the symbol universe is read from the
	// workbook's symbols sheet on every refresh.
	Symbols []string `yaml:"symbols"`

	Workbook struct {
		Path         string `yaml:"path" default:"data/trading_synthesis.xlsx" validate:"required"`
		SymbolsSheet string `yaml:"symbols_sheet" default:"symbols"`
	} `yaml:"workbook"`

	Classifier struct {
		// SlopeThreshold is the slope significance threshold for the Buy+ and
		// Sell+ rules. Must not be negative.
		SlopeThreshold float64 `yaml:"slope_threshold" default:"0.6" validate:"gte=0"`
	} `yaml:"classifier"`

	Indicators struct {
		StochWindow  int `yaml:"stoch_window" default:"55" validate:"gt=0"`
		StochKSmooth int `yaml:"stoch_k_smooth" default:"55" validate:"gt=0"`
		StochDSmooth int `yaml:"stoch_d_smooth" default:"36" validate:"gt=0"`
		CCIPeriod    int `yaml:"cci_period" default:"20" validate:"gt=0"`
		DMIPeriod    int `yaml:"dmi_period" default:"14" validate:"gt=0"`
		SlopePeriod  int `yaml:"slope_period" default:"10" validate:"gt=1"`
	} `yaml:"indicators"`

	Schedule struct {
		MonthlyCron  string `yaml:"monthly_cron" default:"0 0 9 1 * *"`
		WeeklyCron   string `yaml:"weekly_cron" default:"0 0 9 * * 1"`
		DailyCron    string `yaml:"daily_cron" default:"0 30 22 * * *"`
		FourHourCron string `yaml:"four_hour_cron" default:"0 5 0-23/4 * * *"`
	} `yaml:"schedule"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/signaldesk.db"`
	} `yaml:"database"`

	Server struct {
		ListenAddr     string `yaml:"listen_addr" default:":8080"`
		MetricsEnabled bool   `yaml:"metrics_enabled" default:"true"`
	} `yaml:"server"`

	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, fills defaults, then applies
// environment variable overrides. A missing file is not an error; defaults
// and environment take over.
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

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("SLOPE_THRESHOLD"); v != "" {
		// A malformed threshold must fail loudly, never fall back to the
		// default.
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid slope threshold %q in SLOPE_THRESHOLD: %w", v, err)
		}
		cfg.Classifier.SlopeThreshold = t
	}
	if v := os.Getenv("WORKBOOK_PATH"); v != "" {
		cfg.Workbook.Path = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	return nil
}

func splitSymbols(s string) []string {
	parts := strings.Split(s, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			symbols = append(symbols, p)
		}
	}
	return symbols
}

// Validate checks the configuration, including the slope significance
// threshold, which must be rejected here rather than per-row.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("config field %s failed %q validation", e.Namespace(), e.Tag())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}
