package vector

import (
	"slices"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

func NewZeros(n int) blas32.Vector {
	return blas32.Vector{
		N:    n,
		Inc:  1,
		Data: make([]float32, n),
	}
}

func NewZerosLike(vec blas32.Vector) blas32.Vector {
	return NewZeros(vec.N)
}

func New(data []float32) blas32.Vector {
	return blas32.Vector{
		N:    len(data),
		Inc:  1,
		Data: data,
	}
}

func NewOneHot(n, idx int) blas32.Vector {
	vec := NewZeros(n)
	vec.Data[idx] = 1.0
	return vec
}

func NewFromInts(xs []int) blas32.Vector {
	vec := NewZeros(len(xs))
	for i, x := range xs {
		vec.Data[i] = float32(x)
	}
	return vec
}

func Clone(vec blas32.Vector) blas32.Vector {
	return blas32.Vector{
		N:    vec.N,
		Inc:  vec.Inc,
		Data: slices.Clone(vec.Data),
	}
}

// Affine computes x^T w + b, with w shaped (len(x), len(b)).
func Affine(x blas32.Vector, w blas32.General, b blas32.Vector) blas32.Vector {
	yn := len(b.Data)
	y := blas32.Vector{N: yn, Inc: 1, Data: make([]float32, yn)}
	blas32.Copy(b, y)
	blas32.Gemv(blas.Trans, 1.0, w, x, 1.0, y)
	return y
}

func Dot(x, y blas32.Vector) float32 {
	return blas32.Dot(x, y)
}

func ArgMax(vec blas32.Vector) int {
	idx := 0
	for i, v := range vec.Data {
		if v > vec.Data[idx] {
			idx = i
		}
	}
	return idx
}
