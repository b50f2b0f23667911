package dense

import (
	"slices"

	"github.com/chewxy/math32"
	"github.com/sw965/ganblr/blas32/tensor/2d"
	"github.com/sw965/ganblr/blas32/vector"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

type Forward func(blas32.Vector, *Parameter) (blas32.Vector, Backward, error)
type Forwards []Forward

func (fs Forwards) Propagate(x blas32.Vector, params Parameters) (blas32.Vector, Backwards, error) {
	var err error
	var backward Backward
	backwards := make(Backwards, len(fs))
	for i, f := range fs {
		x, backward, err = f(x, &params[i])
		if err != nil {
			return blas32.Vector{}, nil, err
		}
		backwards[i] = backward
	}
	y := x
	slices.Reverse(backwards)
	return y, backwards, nil
}

type Backward func(blas32.Vector) (blas32.Vector, GradBuffer, error)
type Backwards []Backward

func (bs Backwards) Propagate(chain blas32.Vector) (blas32.Vector, GradBuffers, error) {
	grads := make(GradBuffers, len(bs))
	var grad GradBuffer
	var err error
	for i, b := range bs {
		chain, grad, err = b(chain)
		if err != nil {
			return blas32.Vector{}, nil, err
		}
		grads[i] = grad
	}
	dx := chain
	slices.Reverse(grads)
	return dx, grads, nil
}

func AffineForward(x blas32.Vector, param *Parameter) (blas32.Vector, Backward, error) {
	w := param.Weight
	y := vector.Affine(x, w, param.Bias)

	var backward Backward
	backward = func(chain blas32.Vector) (blas32.Vector, GradBuffer, error) {
		dx := vector.NewZeros(w.Rows)
		blas32.Gemv(blas.NoTrans, 1.0, w, chain, 0.0, dx)

		dw := tensor2d.NewZeros(w.Rows, w.Cols)
		blas32.Ger(1.0, x, chain, dw)

		db := vector.Clone(chain)
		grad := GradBuffer{
			Weight: dw,
			Bias:   db,
		}
		return dx, grad, nil
	}
	return y, backward, nil
}

func emptyGrad() GradBuffer {
	p := emptyParameter()
	return p.NewGradZerosLike()
}

func ReLUForward(x blas32.Vector, _ *Parameter) (blas32.Vector, Backward, error) {
	xData := x.Data
	y := vector.NewZeros(x.N)
	for i, e := range xData {
		if e > 0 {
			y.Data[i] = e
		}
	}

	var backward Backward
	backward = func(chain blas32.Vector) (blas32.Vector, GradBuffer, error) {
		dx := vector.NewZeros(chain.N)
		for i, e := range xData {
			if e > 0 {
				dx.Data[i] = chain.Data[i]
			}
		}
		return dx, emptyGrad(), nil
	}
	return y, backward, nil
}

func SigmoidForward(x blas32.Vector, _ *Parameter) (blas32.Vector, Backward, error) {
	y := vector.NewZeros(x.N)
	for i, e := range x.Data {
		y.Data[i] = 1.0 / (1.0 + math32.Exp(-e))
	}

	var backward Backward
	backward = func(chain blas32.Vector) (blas32.Vector, GradBuffer, error) {
		dx := vector.NewZeros(chain.N)
		for i, yi := range y.Data {
			dx.Data[i] = chain.Data[i] * yi * (1.0 - yi)
		}
		return dx, emptyGrad(), nil
	}
	return y, backward, nil
}

// SoftmaxForward back-propagates through the full Jacobian, so it can be
// followed by any loss and not only cross-entropy.
func SoftmaxForward(x blas32.Vector, _ *Parameter) (blas32.Vector, Backward, error) {
	maxX := slices.Max(x.Data)
	y := vector.NewZeros(x.N)
	sumExpX := float32(0.0)
	for i, e := range x.Data {
		y.Data[i] = math32.Exp(e - maxX)
		sumExpX += y.Data[i]
	}
	for i := range y.Data {
		y.Data[i] /= sumExpX
	}

	var backward Backward
	backward = func(chain blas32.Vector) (blas32.Vector, GradBuffer, error) {
		// dx_i = y_i * (g_i - sum_j y_j g_j)
		dot := vector.Dot(y, chain)
		dx := vector.NewZeros(chain.N)
		for i, yi := range y.Data {
			dx.Data[i] = yi * (chain.Data[i] - dot)
		}
		return dx, emptyGrad(), nil
	}
	return y, backward, nil
}
