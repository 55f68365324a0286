package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ml-trading-bot/internal/bot"
	"ml-trading-bot/internal/ledger"
	"ml-trading-bot/internal/logger"
	"ml-trading-bot/internal/marketdata"
	"ml-trading-bot/internal/trace"
)

func main() {
	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = trace.Shutdown(context.Background())
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	compressOldLogs(ctx)

	brk := initializeBroker(ctx, cfg)
	provider := marketdata.NewYahooProvider(cfg.Fallback.BaseURL)
	pred := initializePredictor()
	ldg := ledger.New(cfg.InitialBalance)
	eng := initializeEngine(cfg, brk, ldg)

	b := bot.New(cfg, brk, provider, pred, eng, ldg)
	if err := b.Run(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Bot terminated", err)
		os.Exit(1)
	}
}
