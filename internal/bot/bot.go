// Package bot owns the trading lifecycle: startup checks, model training and
// the polling cycle that drives prediction and execution.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ml-trading-bot/internal/interfaces"
	"ml-trading-bot/internal/ledger"
	"ml-trading-bot/internal/logger"
	"ml-trading-bot/internal/report"
	"ml-trading-bot/internal/store"
	"ml-trading-bot/internal/types"
)

type State int

const (
	StateNotStarted State = iota
	StateTrainingModel
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateTrainingModel:
		return "TRAINING_MODEL"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

type Bot struct {
	cfg       *store.Config
	brk       interfaces.Broker
	provider  interfaces.DataProvider
	predictor interfaces.Predictor
	eng       interfaces.Engine
	ldg       *ledger.Ledger

	pollInterval  time.Duration
	recoveryPause time.Duration
	state         State
}

func New(cfg *store.Config, brk interfaces.Broker, provider interfaces.DataProvider,
	pred interfaces.Predictor, eng interfaces.Engine, ldg *ledger.Ledger) *Bot {
	return &Bot{
		cfg:           cfg,
		brk:           brk,
		provider:      provider,
		predictor:     pred,
		eng:           eng,
		ldg:           ldg,
		pollInterval:  time.Duration(cfg.PollSeconds) * time.Second,
		recoveryPause: time.Duration(cfg.RecoverySeconds) * time.Second,
	}
}

func (b *Bot) State() State {
	return b.state
}

// Run drives the lifecycle NotStarted → TrainingModel → Running → Stopped.
// Startup faults (broker unreachable, training failure) are returned and
// terminate the run; once Running, the loop survives everything until ctx is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	logger.Info(ctx, "Starting trading bot", "ticker", b.cfg.Symbol, "mode", b.cfg.Mode)

	acc, err := b.brk.AccountInfo(ctx)
	if err != nil {
		return fmt.Errorf("broker connection check: %w", err)
	}
	logger.Info(ctx, "Broker connection established", "account", acc.Name)

	if balance, err := b.availableBalance(ctx); err == nil {
		logger.Info(ctx, "Current balance", "balance", balance)
	}

	b.state = StateTrainingModel
	if err := b.trainModel(ctx); err != nil {
		b.state = StateStopped
		return fmt.Errorf("model training: %w", err)
	}

	b.state = StateRunning
	logger.Info(ctx, "Entering trading loop", "poll_interval", b.pollInterval.String())

	for {
		pause := b.pollInterval

		switch err := b.cycle(ctx); {
		case err == nil:
		case errors.Is(err, types.ErrUnavailable):
			logger.Warn(ctx, "Cycle skipped, data unavailable", "ticker", b.cfg.Symbol, "error", err)
		case errors.Is(err, context.Canceled):
			// Stop signal arrived mid-cycle; handled below.
		default:
			logger.ErrorWithErr(ctx, "Trading cycle failed, pausing before retry", err,
				"recovery_pause", b.recoveryPause.String())
			pause = b.recoveryPause
		}

		select {
		case <-ctx.Done():
			b.finish()
			return nil
		case <-time.After(pause):
		}
	}
}

// trainModel fits the predictor on historical candles from the broker,
// falling back to the market-data provider when the broker cannot serve them.
func (b *Bot) trainModel(ctx context.Context) error {
	logger.Info(ctx, "Fetching training data", "ticker", b.cfg.Symbol, "lookback_days", b.cfg.TrainingLookbackDays)

	candles, err := b.brk.Candles(ctx, b.cfg.Symbol, b.cfg.CandleInterval, b.cfg.TrainingLookbackDays)
	if err != nil || len(candles) == 0 {
		logger.Warn(ctx, "Broker candles unavailable, using fallback data source",
			"ticker", b.cfg.Symbol, "error", err)
		candles, err = b.provider.HistoricalCandles(ctx, b.cfg.Symbol, b.cfg.TrainingLookbackDays)
		if err != nil {
			return fmt.Errorf("historical data unavailable from broker and fallback: %w", err)
		}
	}
	if len(candles) == 0 {
		return errors.New("no historical candles available for training")
	}

	return b.predictor.Train(ctx, candles)
}

// cycle runs one poll: fetch, predict, decide, report.
func (b *Bot) cycle(ctx context.Context) error {
	logger.Info(ctx, "Trading cycle started", "ticker", b.cfg.Symbol, "state", b.state.String())

	currentPrice, err := b.brk.CurrentPrice(ctx, b.cfg.Symbol)
	if err != nil {
		return fmt.Errorf("current price: %w", err)
	}

	recent, err := b.brk.Candles(ctx, b.cfg.Symbol, b.cfg.CandleInterval, b.cfg.RecentLookbackDays)
	if err != nil {
		return fmt.Errorf("recent candles: %w", err)
	}

	predictedPrice, err := b.predictor.Predict(ctx, recent)
	if err != nil {
		return fmt.Errorf("%w: prediction: %v", types.ErrUnavailable, err)
	}

	result, err := b.eng.Step(ctx, currentPrice, predictedPrice)
	if err != nil {
		return fmt.Errorf("decision step: %w", err)
	}

	b.reportStatus(ctx, result)
	return nil
}

func (b *Bot) reportStatus(ctx context.Context, res *types.StepResult) {
	balance, err := b.availableBalance(ctx)
	if err != nil {
		logger.Warn(ctx, "Balance unavailable for status report", "error", err)
	}
	positionQty := b.ldg.Quantity(b.cfg.Symbol)
	positionValue := float64(positionQty) * res.CurrentPrice

	logger.Info(ctx, "Cycle status",
		"ticker", b.cfg.Symbol,
		"balance", balance,
		"position_qty", positionQty,
		"position_value", positionValue,
		"total_value", balance+positionValue,
		"current_price", res.CurrentPrice,
		"predicted_price", res.PredictedPrice,
		"action", res.Action,
	)
}

// finish transitions to Stopped and emits the terminal report.
func (b *Bot) finish() {
	b.state = StateStopped

	// The run context is already cancelled; final broker calls get their own.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info(ctx, "Trading bot stopped", "ticker", b.cfg.Symbol)

	trades := b.ldg.Trades()
	summary := report.Summarize(trades)
	balance, _ := b.availableBalance(ctx)

	logger.Info(ctx, "Final statistics",
		"trades", summary.Trades,
		"buy_qty", summary.BuyQty,
		"sell_qty", summary.SellQty,
		"realized_pnl", summary.RealizedPnL,
		"final_balance", balance,
	)
	for _, t := range b.ldg.LastTrades(5) {
		logger.Info(ctx, "Recent trade",
			"time", t.Ts.UTC().Format("15:04:05"),
			"action", t.Action,
			"quantity", t.Quantity,
			"ticker", t.Ticker,
			"price", t.Price,
		)
	}

	if path, err := report.WriteCSV(trades); err != nil {
		logger.Warn(ctx, "Failed to write run summary CSV", "error", err)
	} else if path != "" {
		logger.Info(ctx, "Run summary written", "path", path)
	}
}

func (b *Bot) availableBalance(ctx context.Context) (float64, error) {
	if b.cfg.Mode == "DRY_RUN" {
		return b.ldg.Balance(), nil
	}
	return b.brk.Balance(ctx)
}
