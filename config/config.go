// Package config loads and validates the engine configuration. The
// loaded Config is an immutable value handed to each component at
// construction; nothing reads ambient global state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete engine configuration.
type Config struct {
	Trading    TradingConfig    `json:"trading" yaml:"trading"`
	Indicator  IndicatorConfig  `json:"indicator" yaml:"indicator"`
	Compliance ComplianceConfig `json:"compliance" yaml:"compliance"`
	Account    AccountConfig    `json:"account" yaml:"account"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Metrics    MetricsConfig    `json:"metrics" yaml:"metrics"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

// TradingConfig contains the instrument and risk envelope.
type TradingConfig struct {
	Symbol              string  `json:"symbol" yaml:"symbol"`
	CapitalLimit        float64 `json:"capital_limit" yaml:"capital_limit"`
	ProfitTargetPct     float64 `json:"profit_target_pct" yaml:"profit_target_pct"`
	StopLossPct         float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	PollIntervalSeconds int     `json:"poll_interval_seconds" yaml:"poll_interval_seconds"`
}

// PollInterval returns the cycle interval as a duration.
func (t TradingConfig) PollInterval() time.Duration {
	return time.Duration(t.PollIntervalSeconds) * time.Second
}

// IndicatorConfig contains the MACD periods.
type IndicatorConfig struct {
	FastPeriod   int `json:"fast_period" yaml:"fast_period"`
	SlowPeriod   int `json:"slow_period" yaml:"slow_period"`
	SignalPeriod int `json:"signal_period" yaml:"signal_period"`
}

// ComplianceConfig contains the pattern-day-trader budget.
type ComplianceConfig struct {
	MaxDayTrades    int `json:"max_day_trades" yaml:"max_day_trades"`
	PDTTrackingDays int `json:"pdt_tracking_days" yaml:"pdt_tracking_days"`
}

// AccountConfig seeds the paper account for dry runs.
type AccountConfig struct {
	StartingCash float64 `json:"starting_cash" yaml:"starting_cash"`
}

// JournalConfig selects the transaction journal backend.
type JournalConfig struct {
	Type     string `json:"type" yaml:"type"` // "sqlite" or "file"
	DBPath   string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	FilePath string `json:"file_path,omitempty" yaml:"file_path,omitempty"`
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Listen  string `json:"listen,omitempty" yaml:"listen,omitempty"`
}

// LogConfig controls structured log output.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text or json
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, choosing the format by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Trading.Symbol == "" {
		return fmt.Errorf("trading.symbol is required")
	}
	if c.Trading.CapitalLimit <= 0 {
		return fmt.Errorf("trading.capital_limit must be positive")
	}
	if c.Trading.ProfitTargetPct <= 0 {
		return fmt.Errorf("trading.profit_target_pct must be positive")
	}
	if c.Trading.StopLossPct >= 0 {
		return fmt.Errorf("trading.stop_loss_pct must be negative")
	}
	if c.Trading.PollIntervalSeconds <= 0 {
		return fmt.Errorf("trading.poll_interval_seconds must be positive")
	}
	if c.Indicator.FastPeriod <= 0 || c.Indicator.SlowPeriod <= 0 || c.Indicator.SignalPeriod <= 0 {
		return fmt.Errorf("indicator periods must be positive")
	}
	if c.Indicator.FastPeriod >= c.Indicator.SlowPeriod {
		return fmt.Errorf("indicator.fast_period must be shorter than slow_period")
	}
	if c.Compliance.MaxDayTrades <= 0 {
		return fmt.Errorf("compliance.max_day_trades must be positive")
	}
	if c.Compliance.PDTTrackingDays <= 0 {
		return fmt.Errorf("compliance.pdt_tracking_days must be positive")
	}
	if c.Account.StartingCash <= 0 {
		return fmt.Errorf("account.starting_cash must be positive")
	}
	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite journal")
		}
	case "file":
		if c.Journal.FilePath == "" {
			return fmt.Errorf("journal.file_path required for file journal")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite' or 'file'")
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen required when metrics are enabled")
	}
	return nil
}

// Default returns a configuration mirroring the classic MACD setup:
// 12/26/9 periods, 1% target, -0.5% stop, five-minute polling, three day
// trades per five trading days.
func Default() *Config {
	return &Config{
		Trading: TradingConfig{
			Symbol:              "TQQQ",
			CapitalLimit:        20.00,
			ProfitTargetPct:     1.0,
			StopLossPct:         -0.5,
			PollIntervalSeconds: 300,
		},
		Indicator: IndicatorConfig{
			FastPeriod:   12,
			SlowPeriod:   26,
			SignalPeriod: 9,
		},
		Compliance: ComplianceConfig{
			MaxDayTrades:    3,
			PDTTrackingDays: 5,
		},
		Account: AccountConfig{
			StartingCash: 100.00,
		},
		Journal: JournalConfig{
			Type:     "file",
			FilePath: "./transactions.json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9091",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
