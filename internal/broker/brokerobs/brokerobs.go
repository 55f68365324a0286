// Package brokerobs wraps a Broker with logging and tracing middleware.
package brokerobs

import (
	"context"

	"ml-trading-bot/internal/interfaces"
	"ml-trading-bot/internal/logger"
	"ml-trading-bot/internal/trace"
	"ml-trading-bot/internal/types"
)

type observableBroker struct {
	broker interfaces.Broker
}

var _ interfaces.Broker = (*observableBroker)(nil)

func Wrap(broker interfaces.Broker) interfaces.Broker {
	return &observableBroker{broker: broker}
}

func (ob *observableBroker) AccountInfo(ctx context.Context) (types.Account, error) {
	ctx, span := trace.StartSpan(ctx, "broker.AccountInfo")
	defer span.End()

	acc, err := ob.broker.AccountInfo(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch account info", err)
		return types.Account{}, err
	}
	logger.DebugSkip(ctx, 1, "Account info fetched", "account", acc.Name)
	return acc, nil
}

func (ob *observableBroker) ResolveInstrument(ctx context.Context, ticker string) (types.Instrument, error) {
	ctx, span := trace.StartSpan(ctx, "broker.ResolveInstrument")
	defer span.End()

	inst, err := ob.broker.ResolveInstrument(ctx, ticker)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to resolve instrument", err, "ticker", ticker)
		return types.Instrument{}, err
	}
	logger.DebugSkip(ctx, 1, "Instrument resolved", "ticker", ticker, "figi", inst.FIGI)
	return inst, nil
}

func (ob *observableBroker) CurrentPrice(ctx context.Context, ticker string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "broker.CurrentPrice")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching current price", "ticker", ticker)

	price, err := ob.broker.CurrentPrice(ctx, ticker)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch current price", err, "ticker", ticker)
		return 0, err
	}
	logger.DebugSkip(ctx, 1, "Current price fetched", "ticker", ticker, "price", price)
	return price, nil
}

func (ob *observableBroker) Candles(ctx context.Context, ticker, interval string, lookbackDays int) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Candles")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching candles", "ticker", ticker, "interval", interval, "lookback_days", lookbackDays)

	candles, err := ob.broker.Candles(ctx, ticker, interval, lookbackDays)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch candles", err, "ticker", ticker)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Candles fetched", "ticker", ticker, "count", len(candles))
	return candles, nil
}

func (ob *observableBroker) PlaceMarketOrder(ctx context.Context, ticker string, quantity int, direction string) (types.OrderResp, error) {
	ctx, span := trace.StartSpan(ctx, "broker.PlaceMarketOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing order", "ticker", ticker, "direction", direction, "quantity", quantity)

	resp, err := ob.broker.PlaceMarketOrder(ctx, ticker, quantity, direction)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"ticker", ticker, "direction", direction, "quantity", quantity)
		return types.OrderResp{}, err
	}
	logger.InfoSkip(ctx, 1, "Order placed", "ticker", ticker, "order_id", resp.OrderID, "status", resp.Status)
	return resp, nil
}

func (ob *observableBroker) Portfolio(ctx context.Context) (types.Portfolio, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Portfolio")
	defer span.End()

	pf, err := ob.broker.Portfolio(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch portfolio", err)
		return types.Portfolio{}, err
	}
	logger.DebugSkip(ctx, 1, "Portfolio fetched", "positions", len(pf.Positions))
	return pf, nil
}

func (ob *observableBroker) Balance(ctx context.Context) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Balance")
	defer span.End()

	balance, err := ob.broker.Balance(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch balance", err)
		return 0, err
	}
	logger.DebugSkip(ctx, 1, "Balance fetched", "balance", balance)
	return balance, nil
}

func (ob *observableBroker) Orders(ctx context.Context) ([]types.Order, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Orders")
	defer span.End()

	orders, err := ob.broker.Orders(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to list orders", err)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Orders listed", "count", len(orders))
	return orders, nil
}

func (ob *observableBroker) CancelOrder(ctx context.Context, orderID string) error {
	ctx, span := trace.StartSpan(ctx, "broker.CancelOrder")
	defer span.End()

	if err := ob.broker.CancelOrder(ctx, orderID); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to cancel order", err, "order_id", orderID)
		return err
	}
	logger.InfoSkip(ctx, 1, "Order cancelled", "order_id", orderID)
	return nil
}

func (ob *observableBroker) Operations(ctx context.Context, days int) ([]types.Operation, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Operations")
	defer span.End()

	ops, err := ob.broker.Operations(ctx, days)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to list operations", err, "days", days)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Operations listed", "count", len(ops))
	return ops, nil
}
