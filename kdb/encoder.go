package kdb

import (
	"github.com/pkg/errors"
	"github.com/sw965/ganblr/blas32/vector"
	"gonum.org/v1/gonum/blas/blas32"
)

var ErrInvalidData = errors.New("kdb: invalid data")

// HaveValue marks which (parent combination, own value) pairs occur in the
// training data. Rows index parent combinations in row-major order with the
// first parent most significant; Cols index the feature's own values.
type HaveValue struct {
	Rows int
	Cols int
	Data []bool
}

func (h HaveValue) At(r, c int) bool {
	return h.Data[r*h.Cols+c]
}

// Positions returns the flat indices of observed pairs in ascending order.
func (h HaveValue) Positions() []int {
	positions := make([]int, 0)
	for i, ok := range h.Data {
		if ok {
			positions = append(positions, i)
		}
	}
	return positions
}

// HighOrderFeatureEncoder turns each feature together with its kDB parents
// into one categorical "high-order" feature and one-hot encodes it.
type HighOrderFeatureEncoder struct {
	K                       int
	FeatureUniques          []int
	Dependencies            [][]int
	Edges                   []Edge
	Constraints             []int
	HaveValues              []HaveValue
	HighOrderFeatureUniques []int

	columns [][]int
	offsets []int
	width   int
}

// HighOrderCode indexes (parents..., feature) of row f in row-major order.
func (e *HighOrderFeatureEncoder) HighOrderCode(row []int, f int) int {
	code := 0
	for _, p := range e.Dependencies[f] {
		code = code*e.FeatureUniques[p] + row[p]
	}
	return code*e.FeatureUniques[f] + row[f]
}

func (e *HighOrderFeatureEncoder) parentCombinations(f int) int {
	n := 1
	for _, p := range e.Dependencies[f] {
		n *= e.FeatureUniques[p]
	}
	return n
}

func validateRows(x [][]int, uniques []int) error {
	for i, row := range x {
		if len(row) != len(uniques) {
			return errors.Wrapf(ErrInvalidData, "row %d has %d features, want %d", i, len(row), len(uniques))
		}
		for j, v := range row {
			if v < 0 || v >= uniques[j] {
				return errors.Wrapf(ErrInvalidData, "row %d feature %d: value %d outside [0, %d)", i, j, v, uniques[j])
			}
		}
	}
	return nil
}

// Fit learns the kDB structure of (x, y) and the observed high-order values.
// Features must be non-negative ordinal codes.
func (e *HighOrderFeatureEncoder) Fit(x [][]int, y []int, k int) error {
	if len(x) == 0 {
		return errors.Wrap(ErrInvalidData, "no rows")
	}
	if len(x) != len(y) {
		return errors.Wrapf(ErrInvalidData, "%d rows but %d labels", len(x), len(y))
	}
	if k < 0 {
		return errors.Wrapf(ErrInvalidData, "k must be >= 0, got %d", k)
	}

	uniques, err := Uniques(x)
	if err != nil {
		return err
	}
	if err := validateRows(x, uniques); err != nil {
		return err
	}

	numFeatures := len(uniques)
	e.K = k
	e.FeatureUniques = uniques
	e.Edges = BuildGraph(x, y, k)
	e.Dependencies = make([][]int, numFeatures)
	for f := range e.Dependencies {
		e.Dependencies[f] = []int{}
	}
	for _, edge := range e.Edges {
		e.Dependencies[edge.Child] = append(e.Dependencies[edge.Child], edge.Parent)
	}

	e.Constraints = make([]int, 0)
	e.HaveValues = make([]HaveValue, numFeatures)
	e.HighOrderFeatureUniques = make([]int, numFeatures)
	e.columns = make([][]int, numFeatures)
	e.offsets = make([]int, numFeatures)
	e.width = 0
	for f := 0; f < numFeatures; f++ {
		have := HaveValue{
			Rows: e.parentCombinations(f),
			Cols: uniques[f],
		}
		have.Data = make([]bool, have.Rows*have.Cols)
		for _, row := range x {
			have.Data[e.HighOrderCode(row, f)] = true
		}

		// column of each observed code inside this feature's block, -1 if unseen
		cols := make([]int, len(have.Data))
		next := 0
		for code, ok := range have.Data {
			if ok {
				cols[code] = next
				next++
			} else {
				cols[code] = -1
			}
		}

		for r := 0; r < have.Rows; r++ {
			count := 0
			for c := 0; c < have.Cols; c++ {
				if have.At(r, c) {
					count++
				}
			}
			if count > 0 {
				e.Constraints = append(e.Constraints, count)
			}
		}

		e.HaveValues[f] = have
		e.HighOrderFeatureUniques[f] = next
		e.columns[f] = cols
		e.offsets[f] = e.width
		e.width += next
	}
	return nil
}

// Width is the number of columns Transform produces.
func (e *HighOrderFeatureEncoder) Width() int {
	return e.width
}

func (e *HighOrderFeatureEncoder) TransformRow(row []int) (blas32.Vector, error) {
	if e.columns == nil {
		return blas32.Vector{}, errors.New("kdb: encoder is not fitted")
	}
	if err := validateRows([][]int{row}, e.FeatureUniques); err != nil {
		return blas32.Vector{}, err
	}

	vec := vector.NewZeros(e.width)
	for f := range e.FeatureUniques {
		col := e.columns[f][e.HighOrderCode(row, f)]
		// unseen combinations leave the block empty
		if col < 0 {
			continue
		}
		vec.Data[e.offsets[f]+col] = 1.0
	}
	return vec, nil
}

// Transform one-hot encodes the high-order features of every row. Blocks are
// laid out feature by feature, observed codes ascending within a block.
func (e *HighOrderFeatureEncoder) Transform(x [][]int) ([]blas32.Vector, error) {
	xs := make([]blas32.Vector, len(x))
	for i, row := range x {
		vec, err := e.TransformRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		xs[i] = vec
	}
	return xs, nil
}

// Uniques returns the cardinality of every column, the largest code plus
// one. Codes must be non-negative.
func Uniques(x [][]int) ([]int, error) {
	if len(x) == 0 {
		return nil, errors.Wrap(ErrInvalidData, "no rows")
	}
	numFeatures := len(x[0])
	uniques := make([]int, numFeatures)
	for i, row := range x {
		if len(row) != numFeatures {
			return nil, errors.Wrapf(ErrInvalidData, "row %d has %d features, want %d", i, len(row), numFeatures)
		}
		for j, v := range row {
			if v < 0 {
				return nil, errors.Wrapf(ErrInvalidData, "row %d feature %d: negative code %d", i, j, v)
			}
			uniques[j] = max(uniques[j], v+1)
		}
	}
	return uniques, nil
}
