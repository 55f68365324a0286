package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMaxScaler(t *testing.T) {
	s := &minMaxScaler{}
	s.fit([][]float64{
		{0, 10, 7},
		{5, 20, 7},
		{10, 15, 7},
	})

	out := s.transform([]float64{5, 10, 7})
	assert.Equal(t, []float64{0.5, 0, 0}, out, "constant third feature maps to 0")

	// out-of-range values extrapolate linearly
	out = s.transform([]float64{20, 25, 7})
	assert.InDelta(t, 2.0, out[0], 1e-12)
	assert.InDelta(t, 1.5, out[1], 1e-12)
}

func TestRidgeRecoversLinearRelation(t *testing.T) {
	// y = 3 + 2*x1 - x2
	var X [][]float64
	var y []float64
	for i := 0; i < 50; i++ {
		x1 := float64(i) / 10
		x2 := float64(i%7) / 3
		X = append(X, []float64{x1, x2})
		y = append(y, 3+2*x1-x2)
	}

	m := &ridgeModel{lambda: 1e-6}
	require.NoError(t, m.fit(X, y))

	assert.InDelta(t, 3, m.weights[0], 1e-2)
	assert.InDelta(t, 2, m.weights[1], 1e-2)
	assert.InDelta(t, -1, m.weights[2], 1e-2)

	pred := m.predict([]float64{1, 2})
	assert.InDelta(t, 3+2*1-2, pred, 1e-2)
}

func TestRidgeRejectsEmptyInput(t *testing.T) {
	m := &ridgeModel{lambda: 1e-3}
	assert.Error(t, m.fit(nil, nil))
	assert.Error(t, m.fit([][]float64{{1}}, []float64{1, 2}))
}

func TestSolveSingularMatrix(t *testing.T) {
	// second row is a multiple of the first
	_, err := solve([][]float64{
		{1, 2, 3},
		{2, 4, 6},
	})
	assert.Error(t, err)
}
