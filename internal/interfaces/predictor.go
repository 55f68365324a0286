package interfaces

import (
	"context"

	"ml-trading-bot/internal/types"
)

// Predictor fits a price model on historical candles and predicts the next
// close from recent ones.
type Predictor interface {
	Train(ctx context.Context, candles []types.Candle) error
	Predict(ctx context.Context, candles []types.Candle) (float64, error)
}
