package predictor

import (
	"errors"
	"math"
)

// minMaxScaler rescales each feature into [0, 1] using bounds observed at fit
// time. Constant features map to 0.
type minMaxScaler struct {
	min, max []float64
}

func (s *minMaxScaler) fit(X [][]float64) {
	n := len(X[0])
	s.min = make([]float64, n)
	s.max = make([]float64, n)
	for j := 0; j < n; j++ {
		s.min[j] = math.Inf(1)
		s.max[j] = math.Inf(-1)
	}
	for _, row := range X {
		for j, v := range row {
			s.min[j] = math.Min(s.min[j], v)
			s.max[j] = math.Max(s.max[j], v)
		}
	}
}

func (s *minMaxScaler) transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		span := s.max[j] - s.min[j]
		if span == 0 {
			continue
		}
		out[j] = (v - s.min[j]) / span
	}
	return out
}

// ridgeModel is a linear model fit in closed form from the normal equations
// (XᵀX + λI)w = Xᵀy. The λ damping keeps the system well conditioned on the
// strongly collinear lag features.
type ridgeModel struct {
	lambda  float64
	weights []float64 // weights[0] is the intercept
}

func (m *ridgeModel) fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("empty or mismatched training set")
	}
	d := len(X[0]) + 1 // +1 intercept column

	// Accumulate XᵀX and Xᵀy with the implicit leading 1.
	a := make([][]float64, d)
	for i := range a {
		a[i] = make([]float64, d+1)
	}
	for k, row := range X {
		aug := make([]float64, d)
		aug[0] = 1
		copy(aug[1:], row)
		for i := 0; i < d; i++ {
			for j := 0; j < d; j++ {
				a[i][j] += aug[i] * aug[j]
			}
			a[i][d] += aug[i] * y[k]
		}
	}
	for i := 1; i < d; i++ { // intercept is not penalized
		a[i][i] += m.lambda
	}

	w, err := solve(a)
	if err != nil {
		return err
	}
	m.weights = w
	return nil
}

func (m *ridgeModel) predict(row []float64) float64 {
	out := m.weights[0]
	for j, v := range row {
		out += m.weights[j+1] * v
	}
	return out
}

// solve runs Gaussian elimination with partial pivoting on the augmented
// system [A|b].
func solve(a [][]float64) ([]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, errors.New("singular feature matrix")
		}
		a[col], a[pivot] = a[pivot], a[col]

		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c <= n; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	w := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := a[i][n]
		for j := i + 1; j < n; j++ {
			sum -= a[i][j] * w[j]
		}
		w[i] = sum / a[i][i]
	}
	return w, nil
}
