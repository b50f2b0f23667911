package ganblr

import (
	"slices"

	"github.com/chewxy/math32"
	"github.com/sw965/ganblr/blas32/tensor/2d"
	"gonum.org/v1/gonum/blas/blas32"
)

// SoftmaxWeight projects generator kernels so that, inside every constraint
// group, each class column is a log-probability vector: exp of the group
// column sums to 1.
type SoftmaxWeight struct {
	bounds []int
}

// NewSoftmaxWeight takes the cumulative group boundaries [0, s0, s0+s1, ...]
// as returned by kdb.DataUtils.ConstraintPositions.
func NewSoftmaxWeight(positions []int) SoftmaxWeight {
	return SoftmaxWeight{bounds: slices.Clone(positions)}
}

func (c SoftmaxWeight) NumGroups() int {
	return len(c.bounds) - 1
}

// Group returns the row range [start, end) of group i.
func (c SoftmaxWeight) Group(i int) (int, int) {
	return c.bounds[i], c.bounds[i+1]
}

func (c SoftmaxWeight) Width() int {
	return c.bounds[len(c.bounds)-1]
}

// Apply returns the projected copy of w. Rows outside every group are
// copied unchanged.
func (c SoftmaxWeight) Apply(w blas32.General) blas32.General {
	out := tensor2d.Clone(w)
	for g := 0; g < c.NumGroups(); g++ {
		start, end := c.Group(g)
		if end > w.Rows {
			end = w.Rows
		}
		if start >= end {
			continue
		}
		for j := 0; j < w.Cols; j++ {
			hi := w.Data[tensor2d.At(w, start, j)]
			for i := start + 1; i < end; i++ {
				hi = math32.Max(hi, w.Data[tensor2d.At(w, i, j)])
			}
			sum := float32(0.0)
			for i := start; i < end; i++ {
				sum += math32.Exp(w.Data[tensor2d.At(w, i, j)] - hi)
			}
			logSum := hi + math32.Log(sum)
			for i := start; i < end; i++ {
				out.Data[tensor2d.At(out, i, j)] = w.Data[tensor2d.At(w, i, j)] - logSum
			}
		}
	}
	return out
}

