// Package predictorobs wraps a Predictor with logging and tracing middleware.
package predictorobs

import (
	"context"
	"time"

	"ml-trading-bot/internal/interfaces"
	"ml-trading-bot/internal/logger"
	"ml-trading-bot/internal/trace"
	"ml-trading-bot/internal/types"
)

type observablePredictor struct {
	predictor interfaces.Predictor
}

var _ interfaces.Predictor = (*observablePredictor)(nil)

func Wrap(p interfaces.Predictor) interfaces.Predictor {
	return &observablePredictor{predictor: p}
}

func (op *observablePredictor) Train(ctx context.Context, candles []types.Candle) error {
	ctx, span := trace.StartSpan(ctx, "predictor.Train")
	defer span.End()

	start := time.Now()
	logger.InfoSkip(ctx, 1, "Training model", "candles", len(candles))

	if err := op.predictor.Train(ctx, candles); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Model training failed", err, "candles", len(candles))
		return err
	}
	logger.InfoSkip(ctx, 1, "Model training completed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (op *observablePredictor) Predict(ctx context.Context, candles []types.Candle) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "predictor.Predict")
	defer span.End()

	price, err := op.predictor.Predict(ctx, candles)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Prediction failed", err, "candles", len(candles))
		return 0, err
	}
	logger.DebugSkip(ctx, 1, "Prediction completed", "price", price)
	return price, nil
}
