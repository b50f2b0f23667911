package optimizer

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// Optimizer updates params in place from grads. Both are flat views whose
// i-th slices share a shape; the view order must be stable across steps.
type Optimizer interface {
	Step(params, grads [][]float32) error
}

func checkShapes(params, grads [][]float32) error {
	if len(params) != len(grads) {
		return errors.Errorf("optimizer: %d parameter views but %d gradient views", len(params), len(grads))
	}
	for i := range params {
		if len(params[i]) != len(grads[i]) {
			return errors.Errorf("optimizer: view %d has %d parameters but %d gradients", i, len(params[i]), len(grads[i]))
		}
	}
	return nil
}

func zerosLike(xs [][]float32) [][]float32 {
	zeros := make([][]float32, len(xs))
	for i, x := range xs {
		zeros[i] = make([]float32, len(x))
	}
	return zeros
}

type Momentum struct {
	LearningRate float32
	MomentumRate float32
	velocity     [][]float32
}

func NewMomentum(lr float32) *Momentum {
	return &Momentum{
		LearningRate: lr,
		MomentumRate: 0.9,
	}
}

func (opt *Momentum) Step(params, grads [][]float32) error {
	if err := checkShapes(params, grads); err != nil {
		return err
	}
	if opt.velocity == nil {
		opt.velocity = zerosLike(params)
	}

	for i := range params {
		vi := opt.velocity[i]
		wi := params[i]
		gradi := grads[i]
		for j := range wi {
			vi[j] = (opt.MomentumRate * vi[j]) - (opt.LearningRate * gradi[j])
			wi[j] += vi[j]
		}
	}
	return nil
}

type Adam struct {
	LearningRate float32
	Beta1        float32
	Beta2        float32
	Epsilon      float32

	iter int
	m    [][]float32
	v    [][]float32
}

func NewAdam(lr float32) *Adam {
	return &Adam{
		LearningRate: lr,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-7,
	}
}

func (a *Adam) Step(params, grads [][]float32) error {
	if err := checkShapes(params, grads); err != nil {
		return err
	}

	// moment buffers follow the first shapes seen
	if a.m == nil {
		a.m = zerosLike(params)
		a.v = zerosLike(params)
	}

	a.iter++
	beta1, beta2 := a.Beta1, a.Beta2
	iter := float32(a.iter)
	lrt := a.LearningRate * math32.Sqrt(1-math32.Pow(beta2, iter)) / (1 - math32.Pow(beta1, iter))

	for i := range grads {
		mi := a.m[i]
		vi := a.v[i]
		wi := params[i]
		for j, g := range grads[i] {
			mi[j] += (1 - beta1) * (g - mi[j])
			vi[j] += (1 - beta2) * (g*g - vi[j])
			wi[j] -= lrt * mi[j] / (math32.Sqrt(vi[j]) + a.Epsilon)
		}
	}
	return nil
}

// New returns an optimizer with empty state.
func New(name string, lr float32) (Optimizer, error) {
	switch name {
	case "adam":
		return NewAdam(lr), nil
	case "momentum":
		return NewMomentum(lr), nil
	default:
		return nil, errors.Errorf("optimizer: unknown optimizer %q", name)
	}
}
