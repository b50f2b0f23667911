package ganblr

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sw965/ganblr/blas32/tensor/2d"
	"github.com/sw965/ganblr/kdb"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ProbabilityTables are the conditional distributions encoded by a set of
// generator weights.
type ProbabilityTables struct {
	// Features[f] has one row per value of feature f and one column per
	// (class, parent values) assignment, class most significant.
	Features []*mat.Dense
	Class    []float64
}

// normalizedGroups exponentiates the kernel and rescales every constraint
// group column to sum to 1.
func normalizedGroups(w Weights, bounds []int) *mat.Dense {
	rows, cols := w.Kernel.Rows, w.Kernel.Cols
	probs := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			probs.Set(i, j, math.Exp(float64(w.Kernel.Data[tensor2d.At(w.Kernel, i, j)])))
		}
	}

	col := make([]float64, 0, rows)
	for g := 0; g < len(bounds)-1; g++ {
		start, end := bounds[g], bounds[g+1]
		if start == end {
			continue
		}
		group := probs.Slice(start, end, 0, cols).(*mat.Dense)
		for j := 0; j < cols; j++ {
			col = mat.Col(col[:end-start], j, group)
			sum := floats.Sum(col)
			if sum == 0.0 || math.IsInf(sum, 0) {
				for i := range col {
					col[i] = 1.0 / float64(len(col))
				}
			} else {
				floats.Scale(1.0/sum, col)
			}
			group.SetCol(j, col)
		}
	}
	return probs
}

// Reconstruct turns generator logits into full conditional probability
// tables. Combinations the have-value masks mark as unobserved get zero
// probability, and columns left empty become uniform. w is not modified.
func Reconstruct(w Weights, data *kdb.DataUtils) (ProbabilityTables, error) {
	if data == nil || data.Encoder() == nil {
		return ProbabilityTables{}, ErrNotFitted
	}
	enc := data.Encoder()
	numClasses := data.NumClasses
	if w.Kernel.Rows != enc.Width() || w.Kernel.Cols != numClasses {
		return ProbabilityTables{}, errors.Wrapf(ErrInvalidArgument,
			"kernel is %dx%d, want %dx%d", w.Kernel.Rows, w.Kernel.Cols, enc.Width(), numClasses)
	}

	probs := normalizedGroups(w, data.ConstraintPositions())

	features := make([]*mat.Dense, data.NumFeatures)
	offset := 0
	for f := range features {
		card := data.FeatureUniques[f]
		have := enc.HaveValues[f]
		table := mat.NewDense(card, numClasses*have.Rows, nil)
		for j, pos := range have.Positions() {
			r, v := pos/card, pos%card
			for c := 0; c < numClasses; c++ {
				table.Set(v, c*have.Rows+r, probs.At(offset+j, c))
			}
		}
		features[f] = kdb.AddUniform(table, 0.0)
		offset += enc.HighOrderFeatureUniques[f]
	}

	class := make([]float64, numClasses)
	for c, count := range data.ClassCounts {
		class[c] = float64(count) / float64(data.DataSize)
	}
	return ProbabilityTables{Features: features, Class: class}, nil
}
