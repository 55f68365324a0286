// Package engineobs wraps an Engine with logging and tracing middleware.
package engineobs

import (
	"context"
	"time"

	"ml-trading-bot/internal/interfaces"
	"ml-trading-bot/internal/logger"
	"ml-trading-bot/internal/trace"
	"ml-trading-bot/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{engine: eng}
}

func (oe *observableEngine) Step(ctx context.Context, currentPrice, predictedPrice float64) (*types.StepResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Step")
	defer span.End()

	start := time.Now()

	result, err := oe.engine.Step(ctx, currentPrice, predictedPrice)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Decision step failed", err,
			"current_price", currentPrice,
			"predicted_price", predictedPrice,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Decision step completed",
		"ticker", result.Ticker,
		"action", result.Action,
		"expected_change", result.ExpectedChange,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}
