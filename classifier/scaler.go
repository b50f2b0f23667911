package classifier

import (
	"github.com/pkg/errors"
	"github.com/sw965/ganblr/blas32/vector"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler centres every column and divides by its population
// standard deviation. Constant columns keep a scale of 1.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

func (s *StandardScaler) Fit(x [][]int) error {
	if len(x) == 0 {
		return errors.New("classifier: scaler needs at least one row")
	}
	n := len(x[0])
	s.Mean = make([]float64, n)
	s.Scale = make([]float64, n)
	col := make([]float64, len(x))
	for j := 0; j < n; j++ {
		for i, row := range x {
			if len(row) != n {
				return errors.Errorf("classifier: row %d has %d features, want %d", i, len(row), n)
			}
			col[i] = float64(row[j])
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0.0 {
			std = 1.0
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}
	return nil
}

func (s *StandardScaler) Transform(x [][]int) ([]blas32.Vector, error) {
	xs := make([]blas32.Vector, len(x))
	for i, row := range x {
		if len(row) != len(s.Mean) {
			return nil, errors.Errorf("classifier: row %d has %d features, want %d", i, len(row), len(s.Mean))
		}
		vec := vector.NewZeros(len(row))
		for j, v := range row {
			vec.Data[j] = float32((float64(v) - s.Mean[j]) / s.Scale[j])
		}
		xs[i] = vec
	}
	return xs, nil
}
