// Package predictor fits a regression model on historical candles and
// predicts the next close price from recent ones.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"

	"ml-trading-bot/internal/interfaces"
	"ml-trading-bot/internal/logger"
	"ml-trading-bot/internal/types"
)

// minTrainingRows is the smallest usable dataset after feature rows with
// undefined indicators are dropped.
const minTrainingRows = 40

type Predictor struct {
	scaler  *minMaxScaler
	model   *ridgeModel
	trained bool
}

var _ interfaces.Predictor = (*Predictor)(nil)

func New() *Predictor {
	return &Predictor{
		scaler: &minMaxScaler{},
		model:  &ridgeModel{lambda: 1e-3},
	}
}

// Train fits the model on a chronological 80/20 split and logs holdout error.
func (p *Predictor) Train(ctx context.Context, candles []types.Candle) error {
	X, y := buildDataset(candles)
	if len(X) < minTrainingRows {
		return fmt.Errorf("not enough training data: %d usable rows from %d candles", len(X), len(candles))
	}

	split := len(X) * 4 / 5
	trainX, trainY := X[:split], y[:split]
	testX, testY := X[split:], y[split:]

	p.scaler.fit(trainX)
	scaled := make([][]float64, len(trainX))
	for i, row := range trainX {
		scaled[i] = p.scaler.transform(row)
	}
	if err := p.model.fit(scaled, trainY); err != nil {
		return fmt.Errorf("model fit: %w", err)
	}

	var absSum, sqSum float64
	for i, row := range testX {
		pred := p.model.predict(p.scaler.transform(row))
		diff := pred - testY[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
	}
	n := float64(len(testX))
	logger.Info(ctx, "Model trained",
		"train_rows", len(trainX),
		"test_rows", len(testX),
		"mae", absSum/n,
		"mse", sqSum/n,
	)

	p.trained = true
	return nil
}

// Predict returns one predicted price from the latest feature row of the
// given recent candles.
func (p *Predictor) Predict(ctx context.Context, candles []types.Candle) (float64, error) {
	if !p.trained {
		return 0, errors.New("model is not trained")
	}

	row := featureVector(candles, len(candles)-1)
	if row == nil {
		return 0, fmt.Errorf("not enough recent data: need %d candles, got %d", minHistory+1, len(candles))
	}

	price := p.model.predict(p.scaler.transform(row))
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, fmt.Errorf("model produced an unusable price: %v", price)
	}
	logger.Debug(ctx, "Price predicted", "price", price)
	return price, nil
}
