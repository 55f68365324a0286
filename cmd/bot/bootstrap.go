package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"ml-trading-bot/internal/broker/alfa"
	"ml-trading-bot/internal/broker/brokerobs"
	"ml-trading-bot/internal/engine"
	"ml-trading-bot/internal/engine/engineobs"
	"ml-trading-bot/internal/interfaces"
	"ml-trading-bot/internal/ledger"
	"ml-trading-bot/internal/logger"
	"ml-trading-bot/internal/predictor"
	"ml-trading-bot/internal/predictor/predictorobs"
	"ml-trading-bot/internal/store"
	"ml-trading-bot/internal/trace"
	"ml-trading-bot/internal/tradelog"

	"github.com/joho/godotenv"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old tradelog files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeBroker builds the broker client with observability middleware
func initializeBroker(ctx context.Context, cfg *store.Config) interfaces.Broker {
	brk := alfa.New(alfa.Params{
		Mode:              cfg.Mode,
		BaseURL:           cfg.Broker.BaseURL,
		Token:             os.Getenv("ALFA_TOKEN"),
		AccountID:         os.Getenv("ALFA_ACCOUNT_ID"),
		BaseCurrency:      cfg.Broker.BaseCurrency,
		Timeout:           time.Duration(cfg.Broker.TimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.Broker.RequestsPerSecond,
		InstrumentTTL:     time.Duration(cfg.Broker.InstrumentTTLHours) * time.Hour,
	})

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}

	return brokerobs.Wrap(brk)
}

// initializePredictor builds the price predictor with observability middleware
func initializePredictor() interfaces.Predictor {
	return predictorobs.Wrap(predictor.New())
}

// initializeEngine builds the decision engine around the engine-owned ledger
func initializeEngine(cfg *store.Config, brk interfaces.Broker, ldg *ledger.Ledger) interfaces.Engine {
	return engineobs.Wrap(engine.New(cfg, brk, ldg))
}
