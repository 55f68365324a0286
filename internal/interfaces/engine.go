package interfaces

import (
	"context"

	"ml-trading-bot/internal/types"
)

// Engine turns one (current price, predicted price) observation into an
// executed trading action.
type Engine interface {
	Step(ctx context.Context, currentPrice, predictedPrice float64) (*types.StepResult, error)
}
