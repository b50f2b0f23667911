package dense

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/sw965/ganblr/blas32/vector"
	"github.com/sw965/ganblr/mathx"
	"gonum.org/v1/gonum/blas/blas32"
)

// Epsilon bounds probabilities away from 0 and 1 before taking logs.
const Epsilon float32 = 1e-7

type PredictLoss struct {
	Func       func(blas32.Vector, blas32.Vector) (float32, error)
	Derivative func(blas32.Vector, blas32.Vector) (blas32.Vector, error)
}

func checkLen(y, t blas32.Vector) error {
	if y.N != t.N {
		return errors.Errorf("dense: prediction has %d entries but target has %d", y.N, t.N)
	}
	return nil
}

func crossEntropy(y, t blas32.Vector) float32 {
	loss := float32(0.0)
	for i, yi := range y.Data {
		loss += -t.Data[i] * math32.Log(mathx.Clip(yi, Epsilon, 1.0))
	}
	return loss
}

func crossEntropyDerivative(y, t blas32.Vector) blas32.Vector {
	dy := vector.NewZeros(y.N)
	for i, yi := range y.Data {
		dy.Data[i] = -t.Data[i] / mathx.Clip(yi, Epsilon, 1.0)
	}
	return dy
}

func NewCrossEntropyLoss() PredictLoss {
	f := func(y, t blas32.Vector) (float32, error) {
		if err := checkLen(y, t); err != nil {
			return 0.0, err
		}
		return crossEntropy(y, t), nil
	}

	d := func(y, t blas32.Vector) (blas32.Vector, error) {
		if err := checkLen(y, t); err != nil {
			return blas32.Vector{}, err
		}
		return crossEntropyDerivative(y, t), nil
	}

	return PredictLoss{
		Func:       f,
		Derivative: d,
	}
}

func NewBinaryCrossEntropyLoss() PredictLoss {
	f := func(y, t blas32.Vector) (float32, error) {
		if err := checkLen(y, t); err != nil {
			return 0.0, err
		}
		loss := float32(0.0)
		for i, yi := range y.Data {
			p := mathx.Clip(yi, Epsilon, 1.0-Epsilon)
			ti := t.Data[i]
			loss += -(ti*math32.Log(p) + (1.0-ti)*math32.Log(1.0-p))
		}
		return loss / float32(y.N), nil
	}

	d := func(y, t blas32.Vector) (blas32.Vector, error) {
		if err := checkLen(y, t); err != nil {
			return blas32.Vector{}, err
		}
		dy := vector.NewZeros(y.N)
		n := float32(y.N)
		for i, yi := range y.Data {
			p := mathx.Clip(yi, Epsilon, 1.0-Epsilon)
			dy.Data[i] = (p - t.Data[i]) / (p * (1.0 - p)) / n
		}
		return dy, nil
	}

	return PredictLoss{
		Func:       f,
		Derivative: d,
	}
}

// NewElasticCrossEntropyLoss blends categorical cross-entropy with a
// discriminator-derived weight lambda:
//
//	L(t, y) = -sum t*log(y) + lambda * (1 - sum t*y)
//
// The second term is the probability mass the prediction leaves off the true
// class, so a confident discriminator pushes harder towards the labels.
// lambda == 0 is plain cross-entropy.
func NewElasticCrossEntropyLoss(lambda float32) PredictLoss {
	f := func(y, t blas32.Vector) (float32, error) {
		if err := checkLen(y, t); err != nil {
			return 0.0, err
		}
		loss := crossEntropy(y, t)
		if lambda == 0 {
			return loss, nil
		}
		return loss + lambda*(1.0-vector.Dot(t, y)), nil
	}

	d := func(y, t blas32.Vector) (blas32.Vector, error) {
		if err := checkLen(y, t); err != nil {
			return blas32.Vector{}, err
		}
		dy := crossEntropyDerivative(y, t)
		if lambda != 0 {
			blas32.Axpy(-lambda, t, dy)
		}
		return dy, nil
	}

	return PredictLoss{
		Func:       f,
		Derivative: d,
	}
}
