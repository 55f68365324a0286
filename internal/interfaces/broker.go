package interfaces

import (
	"context"

	"ml-trading-bot/internal/types"
)

// Broker translates domain operations into authenticated broker API calls.
// Transient faults surface as types.ErrUnavailable, failed order attempts as
// types.ErrRejected.
type Broker interface {
	// AccountInfo fetches account metadata; used as the startup probe.
	AccountInfo(ctx context.Context) (types.Account, error)

	// ResolveInstrument maps a ticker to a broker instrument, cached with a TTL.
	ResolveInstrument(ctx context.Context, ticker string) (types.Instrument, error)

	// CurrentPrice returns the last traded price for a ticker.
	CurrentPrice(ctx context.Context, ticker string) (float64, error)

	// Candles fetches OHLCV bars over the trailing lookbackDays window.
	Candles(ctx context.Context, ticker, interval string, lookbackDays int) ([]types.Candle, error)

	// PlaceMarketOrder submits a market order; quantity is coerced to its
	// absolute value before transmission.
	PlaceMarketOrder(ctx context.Context, ticker string, quantity int, direction string) (types.OrderResp, error)

	// Portfolio returns current holdings including currency positions.
	Portfolio(ctx context.Context) (types.Portfolio, error)

	// Balance extracts the base-currency cash position from the portfolio.
	Balance(ctx context.Context) (float64, error)

	// Orders lists open orders.
	Orders(ctx context.Context) ([]types.Order, error)

	// CancelOrder cancels an open order by id.
	CancelOrder(ctx context.Context, orderID string) error

	// Operations lists account operations over the trailing days window.
	Operations(ctx context.Context, days int) ([]types.Operation, error)
}
