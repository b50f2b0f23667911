package tensor2d

import (
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/blas/blas32"
)

func NewZeros(rows, cols int) blas32.General {
	return blas32.General{
		Rows:   rows,
		Cols:   cols,
		Stride: cols,
		Data:   make([]float32, rows*cols),
	}
}

func NewZerosLike(gen blas32.General) blas32.General {
	return NewZeros(gen.Rows, gen.Cols)
}

// NewHe draws N(0, 2/rows). rows is the fan-in.
func NewHe(rows, cols int, rng *rand.Rand) blas32.General {
	gen := NewZeros(rows, cols)
	std := math.Sqrt(2.0 / float64(rows))
	for i := range gen.Data {
		gen.Data[i] = float32(rng.NormFloat64() * std)
	}
	return gen
}

// NewGlorotUniform draws U(-l, l) with l = sqrt(6/(rows+cols)).
func NewGlorotUniform(rows, cols int, rng *rand.Rand) blas32.General {
	gen := NewZeros(rows, cols)
	limit := math.Sqrt(6.0 / float64(rows+cols))
	for i := range gen.Data {
		gen.Data[i] = float32((rng.Float64()*2.0 - 1.0) * limit)
	}
	return gen
}

func N(gen blas32.General) int {
	return gen.Rows * gen.Cols
}

func Clone(gen blas32.General) blas32.General {
	return blas32.General{
		Rows:   gen.Rows,
		Cols:   gen.Cols,
		Stride: gen.Stride,
		Data:   slices.Clone(gen.Data),
	}
}

func At(gen blas32.General, row, col int) int {
	return row*gen.Stride + col
}

func SameShape(a, b blas32.General) bool {
	return a.Rows == b.Rows && a.Cols == b.Cols
}

func ToVector(gen blas32.General) blas32.Vector {
	return blas32.Vector{
		N:    N(gen),
		Inc:  1,
		Data: gen.Data,
	}
}

func Scal(alpha float32, gen blas32.General) {
	vec := ToVector(gen)
	blas32.Scal(alpha, vec)
}

func Axpy(alpha float32, x, y blas32.General) {
	xv := ToVector(x)
	yv := ToVector(y)
	blas32.Axpy(alpha, xv, yv)
}
