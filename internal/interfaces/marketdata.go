package interfaces

import (
	"context"

	"ml-trading-bot/internal/types"
)

// DataProvider is the fallback market-data source used when the broker cannot
// serve historical candles.
type DataProvider interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	PreviousClose(ctx context.Context, symbol string) (float64, error)
	HistoricalCandles(ctx context.Context, symbol string, days int) ([]types.Candle, error)
}
