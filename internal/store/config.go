package store

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode                 string  `yaml:"mode"`
	Symbol               string  `yaml:"symbol"`
	InitialBalance       float64 `yaml:"initial_balance"`
	MaxPositionSize      float64 `yaml:"max_position_size"`
	PredictionThreshold  float64 `yaml:"prediction_threshold"`
	TrainingLookbackDays int     `yaml:"training_lookback_days"`
	RecentLookbackDays   int     `yaml:"recent_lookback_days"`
	CandleInterval       string  `yaml:"candle_interval"`
	PollSeconds          int     `yaml:"poll_seconds"`
	RecoverySeconds      int     `yaml:"recovery_seconds"`

	Broker struct {
		BaseURL            string  `yaml:"base_url"`
		BaseCurrency       string  `yaml:"base_currency"`
		TimeoutSeconds     int     `yaml:"timeout_seconds"`
		RequestsPerSecond  float64 `yaml:"requests_per_second"`
		InstrumentTTLHours int     `yaml:"instrument_ttl_hours"`
	} `yaml:"broker"`

	Fallback struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"fallback"`
}

// LoadConfig reads config.yaml, layers environment overrides on top, fills
// defaults and validates. A missing file is not an error: the bot can run on
// environment variables alone.
func LoadConfig(path string) (*Config, error) {
	var c Config
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	c.applyEnv()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	setString(&c.Mode, "MODE")
	setString(&c.Symbol, "DEFAULT_SYMBOL")
	setFloat(&c.InitialBalance, "INITIAL_BALANCE")
	setFloat(&c.MaxPositionSize, "MAX_POSITION_SIZE")
	setFloat(&c.PredictionThreshold, "PREDICTION_THRESHOLD")
	setInt(&c.TrainingLookbackDays, "TRAINING_LOOKBACK_DAYS")
	setInt(&c.RecentLookbackDays, "RECENT_LOOKBACK_DAYS")
	setInt(&c.PollSeconds, "POLL_SECONDS")
	setString(&c.Broker.BaseURL, "BROKER_BASE_URL")
	setString(&c.Broker.BaseCurrency, "BROKER_BASE_CURRENCY")
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.Symbol == "" {
		c.Symbol = "SBER"
	}
	if c.InitialBalance == 0 {
		c.InitialBalance = 10000
	}
	if c.MaxPositionSize == 0 {
		c.MaxPositionSize = 0.1
	}
	if c.PredictionThreshold == 0 {
		c.PredictionThreshold = 0.02
	}
	if c.TrainingLookbackDays == 0 {
		c.TrainingLookbackDays = 365
	}
	if c.RecentLookbackDays == 0 {
		c.RecentLookbackDays = 90
	}
	if c.CandleInterval == "" {
		c.CandleInterval = "1day"
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 60
	}
	if c.RecoverySeconds == 0 {
		c.RecoverySeconds = 30
	}
	if c.Broker.BaseURL == "" {
		c.Broker.BaseURL = "https://apigateway.alfabank.ru/invest/v1"
	}
	if c.Broker.BaseCurrency == "" {
		c.Broker.BaseCurrency = "RUB"
	}
	if c.Broker.TimeoutSeconds == 0 {
		c.Broker.TimeoutSeconds = 30
	}
	if c.Broker.RequestsPerSecond == 0 {
		c.Broker.RequestsPerSecond = 5
	}
	if c.Broker.InstrumentTTLHours == 0 {
		c.Broker.InstrumentTTLHours = 12
	}
	if c.Fallback.BaseURL == "" {
		c.Fallback.BaseURL = "https://query1.finance.yahoo.com"
	}
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.Symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if c.MaxPositionSize <= 0 || c.MaxPositionSize > 1 {
		return fmt.Errorf("max_position_size must be in (0, 1], got %.3f", c.MaxPositionSize)
	}
	if c.PredictionThreshold <= 0 {
		return fmt.Errorf("prediction_threshold must be positive, got %.4f", c.PredictionThreshold)
	}
	if c.InitialBalance < 0 {
		return fmt.Errorf("initial_balance cannot be negative, got %.2f", c.InitialBalance)
	}
	if c.TrainingLookbackDays < c.RecentLookbackDays {
		return fmt.Errorf("training_lookback_days (%d) must cover recent_lookback_days (%d)",
			c.TrainingLookbackDays, c.RecentLookbackDays)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
