// Package engine converts one (current price, predicted price) pair plus
// position state into a market order, and records confirmed trades in the
// ledger.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"ml-trading-bot/internal/interfaces"
	"ml-trading-bot/internal/ledger"
	"ml-trading-bot/internal/logger"
	"ml-trading-bot/internal/store"
	"ml-trading-bot/internal/tradelog"
	"ml-trading-bot/internal/types"
)

type Engine struct {
	cfg *store.Config
	brk interfaces.Broker
	ldg *ledger.Ledger
}

var _ interfaces.Engine = (*Engine)(nil)

func New(cfg *store.Config, brk interfaces.Broker, ldg *ledger.Ledger) *Engine {
	return &Engine{cfg: cfg, brk: brk, ldg: ldg}
}

// Ledger exposes the engine-owned ledger for status and final reporting.
func (e *Engine) Ledger() *ledger.Ledger {
	return e.ldg
}

// Step is stateless across cycles except for the ledger: a rejected order
// leaves no partial state, so replaying the same inputs retries the same
// decision from scratch.
func (e *Engine) Step(ctx context.Context, currentPrice, predictedPrice float64) (*types.StepResult, error) {
	if currentPrice <= 0 || predictedPrice <= 0 {
		return nil, fmt.Errorf("invalid prices: current=%v predicted=%v", currentPrice, predictedPrice)
	}

	symbol := e.cfg.Symbol
	expectedChange := (predictedPrice - currentPrice) / currentPrice

	result := &types.StepResult{
		Ticker:         symbol,
		Action:         types.ActionHold,
		ExpectedChange: expectedChange,
		CurrentPrice:   currentPrice,
		PredictedPrice: predictedPrice,
	}

	logger.Info(ctx, "Expected price change", "ticker", symbol, "expected_change", expectedChange)
	_ = tradelog.AppendDecision(tradelog.DecisionEntry{
		Ticker:         symbol,
		Action:         actionFor(expectedChange, e.cfg.PredictionThreshold),
		CurrentPrice:   currentPrice,
		PredictedPrice: predictedPrice,
		ExpectedChange: expectedChange,
	})

	switch {
	case expectedChange > e.cfg.PredictionThreshold:
		return e.buySignal(ctx, result)
	case expectedChange < -e.cfg.PredictionThreshold:
		return e.sellSignal(ctx, result)
	default:
		logger.Info(ctx, "Holding position, expected change below threshold",
			"ticker", symbol, "threshold", e.cfg.PredictionThreshold)
		return result, nil
	}
}

func actionFor(expectedChange, threshold float64) string {
	switch {
	case expectedChange > threshold:
		return types.ActionBuy
	case expectedChange < -threshold:
		return types.ActionSell
	default:
		return types.ActionHold
	}
}

func (e *Engine) buySignal(ctx context.Context, result *types.StepResult) (*types.StepResult, error) {
	symbol := result.Ticker

	if held := e.ldg.Quantity(symbol); held > 0 {
		logger.Info(ctx, "Already holding, skipping buy", "ticker", symbol, "quantity", held)
		return result, nil
	}

	balance, err := e.availableCapital(ctx)
	if err != nil {
		return nil, fmt.Errorf("available capital: %w", err)
	}

	investment := balance * e.cfg.MaxPositionSize
	quantity := int(math.Floor(investment / result.CurrentPrice))
	if quantity < 1 {
		logger.Warn(ctx, "Insufficient funds to buy",
			"ticker", symbol, "balance", balance, "price", result.CurrentPrice)
		return result, nil
	}

	result.Action = types.ActionBuy
	result.Quantity = quantity
	logger.Decision(ctx, symbol, types.ActionBuy, result.ExpectedChange, "quantity", quantity)

	resp, err := e.brk.PlaceMarketOrder(ctx, symbol, quantity, types.ActionBuy)
	if err != nil {
		// Rejection: ledger untouched, next cycle retries from scratch.
		logger.ErrorWithErr(ctx, "Buy order rejected", err, "ticker", symbol, "quantity", quantity)
		return result, nil
	}

	e.confirmTrade(ctx, result, resp, quantity)
	return result, nil
}

func (e *Engine) sellSignal(ctx context.Context, result *types.StepResult) (*types.StepResult, error) {
	symbol := result.Ticker

	held := e.ldg.Quantity(symbol)
	if held <= 0 {
		logger.Info(ctx, "No position to sell", "ticker", symbol)
		return result, nil
	}

	result.Action = types.ActionSell
	result.Quantity = held
	logger.Decision(ctx, symbol, types.ActionSell, result.ExpectedChange, "quantity", held)

	resp, err := e.brk.PlaceMarketOrder(ctx, symbol, held, types.ActionSell)
	if err != nil {
		logger.ErrorWithErr(ctx, "Sell order rejected, position retained", err,
			"ticker", symbol, "quantity", held)
		return result, nil
	}

	e.confirmTrade(ctx, result, resp, held)
	return result, nil
}

// confirmTrade records a broker-confirmed order in the ledger and journal. A
// trade exists if and only if this ran.
func (e *Engine) confirmTrade(ctx context.Context, result *types.StepResult, resp types.OrderResp, quantity int) {
	result.OrderID = resp.OrderID

	trade := types.Trade{
		Ts:             time.Now(),
		Action:         result.Action,
		Ticker:         result.Ticker,
		Quantity:       quantity,
		Price:          result.CurrentPrice,
		ExpectedChange: result.ExpectedChange,
		OrderID:        resp.OrderID,
	}
	e.ldg.RecordTrade(trade)

	_ = tradelog.Append(tradelog.Entry{
		Ticker:         trade.Ticker,
		Action:         trade.Action,
		Qty:            trade.Quantity,
		Price:          trade.Price,
		ExpectedChange: trade.ExpectedChange,
		OrderID:        trade.OrderID,
	})
	logger.Trade(ctx, trade.Ticker, trade.Action, trade.Quantity, trade.Price, trade.OrderID)
}

// availableCapital is the ledger's simulated cash in DRY_RUN mode and the
// broker's base-currency position in LIVE mode.
func (e *Engine) availableCapital(ctx context.Context) (float64, error) {
	if e.cfg.Mode == "DRY_RUN" {
		return e.ldg.Balance(), nil
	}
	return e.brk.Balance(ctx)
}
