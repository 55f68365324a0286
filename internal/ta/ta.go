// Package ta holds the indicator math the predictor's feature set is built
// from. Every function evaluates at the end of the given series; callers pass
// a prefix slice to evaluate at an earlier row.
package ta

import "math"

func SMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}

// PctChange is the fractional change from the previous value to the last one.
func PctChange(vals []float64) float64 {
	if len(vals) < 2 || vals[len(vals)-2] == 0 {
		return math.NaN()
	}
	prev := vals[len(vals)-2]
	return (vals[len(vals)-1] - prev) / prev
}
