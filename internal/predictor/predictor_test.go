package predictor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ml-trading-bot/internal/types"
)

// trendCandles builds a synthetic daily series with a linear uptrend and mild
// volume variation.
func trendCandles(n int) []types.Candle {
	candles := make([]types.Candle, n)
	for i := 0; i < n; i++ {
		close := 100 + 0.5*float64(i)
		candles[i] = types.Candle{
			Ts:     int64(1_700_000_000 + i*86400),
			Open:   close - 0.2,
			High:   close + 0.6,
			Low:    close - 0.7,
			Close:  close,
			Volume: int64(1000 + (i%7)*50),
		}
	}
	return candles
}

func TestTrainAndPredictFollowsTrend(t *testing.T) {
	p := New()
	candles := trendCandles(200)

	require.NoError(t, p.Train(context.Background(), candles))

	price, err := p.Predict(context.Background(), candles)
	require.NoError(t, err)

	last := candles[len(candles)-1].Close
	assert.InEpsilon(t, last, price, 0.05, "prediction should stay near the latest close on a smooth trend")
}

func TestTrainRejectsShortHistory(t *testing.T) {
	p := New()

	// 50 candles leave only 30 usable feature rows
	err := p.Train(context.Background(), trendCandles(50))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough training data")
}

func TestPredictBeforeTrain(t *testing.T) {
	p := New()

	_, err := p.Predict(context.Background(), trendCandles(200))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not trained")
}

func TestPredictRejectsShortRecentWindow(t *testing.T) {
	p := New()
	require.NoError(t, p.Train(context.Background(), trendCandles(200)))

	_, err := p.Predict(context.Background(), trendCandles(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough recent data")
}

func TestBuildDatasetDropsUndefinedRows(t *testing.T) {
	candles := trendCandles(60)
	X, y := buildDataset(candles)

	// the first minHistory indexes have undefined indicators
	require.Len(t, X, 60-minHistory)
	require.Len(t, y, 60-minHistory)
	assert.Equal(t, candles[minHistory].Close, y[0])
	for _, row := range X {
		assert.Len(t, row, 9+2*lagWindow)
	}
}

func TestFeatureVectorBounds(t *testing.T) {
	candles := trendCandles(60)

	assert.Nil(t, featureVector(candles, minHistory-1))
	assert.Nil(t, featureVector(candles, len(candles)))
	assert.NotNil(t, featureVector(candles, minHistory))
	assert.NotNil(t, featureVector(candles, len(candles)-1))
}
