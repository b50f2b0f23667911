package kdb

import (
	"github.com/pkg/errors"
	"github.com/sw965/ganblr/blas32/vector"
	"gonum.org/v1/gonum/blas/blas32"
)

// DataUtils wraps an ordinal-encoded training set and the kDB encoding
// derived from it.
type DataUtils struct {
	DataSize       int
	NumFeatures    int
	NumClasses     int
	FeatureUniques []int
	ClassCounts    []int

	x       [][]int
	y       []int
	encoder *HighOrderFeatureEncoder
	kdbX    []blas32.Vector
}

func NewDataUtils(x [][]int, y []int) (*DataUtils, error) {
	if len(x) == 0 {
		return nil, errors.Wrap(ErrInvalidData, "no rows")
	}
	if len(x) != len(y) {
		return nil, errors.Wrapf(ErrInvalidData, "%d rows but %d labels", len(x), len(y))
	}

	uniques, err := Uniques(x)
	if err != nil {
		return nil, err
	}
	if err := validateRows(x, uniques); err != nil {
		return nil, err
	}

	classUniques, err := Uniques(column2D(y))
	if err != nil {
		return nil, err
	}
	numClasses := classUniques[0]
	counts := make([]int, numClasses)
	for i, label := range y {
		if label < 0 || label >= numClasses {
			return nil, errors.Wrapf(ErrInvalidData, "label %d of row %d outside [0, %d)", label, i, numClasses)
		}
		counts[label]++
	}

	return &DataUtils{
		DataSize:       len(x),
		NumFeatures:    len(uniques),
		NumClasses:     numClasses,
		FeatureUniques: uniques,
		ClassCounts:    counts,
		x:              x,
		y:              y,
	}, nil
}

func column2D(y []int) [][]int {
	col := make([][]int, len(y))
	for i, v := range y {
		col[i] = []int{v}
	}
	return col
}

// KdbX fits the high-order encoder for dependency order k and returns the
// one-hot design matrix. The result is cached until k changes.
func (d *DataUtils) KdbX(k int) ([]blas32.Vector, error) {
	if d.encoder != nil && d.encoder.K == k && d.kdbX != nil {
		return d.kdbX, nil
	}

	encoder := &HighOrderFeatureEncoder{}
	if err := encoder.Fit(d.x, d.y, k); err != nil {
		return nil, err
	}
	xs, err := encoder.Transform(d.x)
	if err != nil {
		return nil, err
	}
	d.encoder = encoder
	d.kdbX = xs
	return xs, nil
}

// Encoder returns the encoder fitted by the latest KdbX call, or nil.
func (d *DataUtils) Encoder() *HighOrderFeatureEncoder {
	return d.encoder
}

// ConstraintPositions returns the cumulative group boundaries of the fitted
// encoder, starting at 0 and ending at its width.
func (d *DataUtils) ConstraintPositions() []int {
	if d.encoder == nil {
		return nil
	}
	positions := make([]int, len(d.encoder.Constraints)+1)
	for i, size := range d.encoder.Constraints {
		positions[i+1] = positions[i] + size
	}
	return positions
}

func (d *DataUtils) OneHotY() []blas32.Vector {
	ts := make([]blas32.Vector, len(d.y))
	for i, label := range d.y {
		ts[i] = vector.NewOneHot(d.NumClasses, label)
	}
	return ts
}
