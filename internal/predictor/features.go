package predictor

import (
	"math"

	"ml-trading-bot/internal/ta"
	"ml-trading-bot/internal/types"
)

const (
	lagWindow  = 5
	smaShort   = 5
	smaLong    = 20
	rsiPeriod  = 14
	minHistory = smaLong // earliest index with every feature defined
)

// featureVector builds the model input at candle index i: raw OHLV, rolling
// indicators and lagged closes/volumes. The close itself is the target and is
// excluded. Returns nil while any feature is still undefined.
func featureVector(candles []types.Candle, i int) []float64 {
	if i < minHistory || i >= len(candles) {
		return nil
	}

	closes := make([]float64, i+1)
	volumes := make([]float64, i+1)
	for j := 0; j <= i; j++ {
		closes[j] = candles[j].Close
		volumes[j] = float64(candles[j].Volume)
	}

	c := candles[i]
	feats := []float64{
		c.Open,
		c.High,
		c.Low,
		float64(c.Volume),
		ta.SMA(closes, smaShort),
		ta.SMA(closes, smaLong),
		ta.RSI(closes, rsiPeriod),
		ta.PctChange(closes),
		ta.PctChange(volumes),
	}
	for lag := 1; lag <= lagWindow; lag++ {
		feats = append(feats, candles[i-lag].Close)
	}
	for lag := 1; lag <= lagWindow; lag++ {
		feats = append(feats, float64(candles[i-lag].Volume))
	}

	for _, v := range feats {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
	}
	return feats
}

// buildDataset turns a candle series into feature rows and close targets,
// dropping rows where any feature is undefined.
func buildDataset(candles []types.Candle) (X [][]float64, y []float64) {
	for i := minHistory; i < len(candles); i++ {
		row := featureVector(candles, i)
		if row == nil {
			continue
		}
		X = append(X, row)
		y = append(y, candles[i].Close)
	}
	return X, y
}
