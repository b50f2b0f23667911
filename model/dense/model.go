package dense

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/sw965/ganblr/blas32/vector"
	omath "github.com/sw965/omw/mathx"
	"github.com/sw965/omw/parallel"
	"github.com/sw965/omw/slicesx"
	"gonum.org/v1/gonum/blas/blas32"
)

// KernelConstraint projects a layer's weight matrix after every optimizer
// step. It must not modify its argument.
type KernelConstraint func(blas32.General) blas32.General

type Model struct {
	Parameters  Parameters
	Forwards    Forwards
	Constraints []KernelConstraint
	PredictLoss PredictLoss
}

func (m *Model) appendLayer(param Parameter, f Forward, c KernelConstraint) {
	m.Parameters = append(m.Parameters, param)
	m.Forwards = append(m.Forwards, f)
	m.Constraints = append(m.Constraints, c)
}

func (m *Model) AppendAffine(xn, yn int, init Initializer, rng *rand.Rand) {
	m.AppendConstrainedAffine(xn, yn, init, nil, rng)
}

func (m *Model) AppendConstrainedAffine(xn, yn int, init Initializer, c KernelConstraint, rng *rand.Rand) {
	param := Parameter{
		Weight: init(xn, yn, rng),
		Bias:   vector.NewZeros(yn),
	}
	m.appendLayer(param, AffineForward, c)
}

func (m *Model) AppendReLU() {
	m.appendLayer(emptyParameter(), ReLUForward, nil)
}

func (m *Model) AppendSigmoid() {
	m.appendLayer(emptyParameter(), SigmoidForward, nil)
}

func (m *Model) AppendSoftmax() {
	m.appendLayer(emptyParameter(), SoftmaxForward, nil)
}

// ApplyConstraints replaces every constrained weight by its projection.
func (m *Model) ApplyConstraints() {
	for i, c := range m.Constraints {
		if c == nil {
			continue
		}
		m.Parameters[i].Weight = c(m.Parameters[i].Weight)
	}
}

func (m *Model) Predict(x blas32.Vector) (blas32.Vector, error) {
	y, _, err := m.Forwards.Propagate(x, m.Parameters)
	return y, err
}

func (m *Model) PredictBatch(xs []blas32.Vector) ([]blas32.Vector, error) {
	ys := make([]blas32.Vector, len(xs))
	for i, x := range xs {
		y, err := m.Predict(x)
		if err != nil {
			return nil, err
		}
		ys[i] = y
	}
	return ys, nil
}

func (m *Model) MeanLoss(xs, ts []blas32.Vector) (float32, error) {
	n := len(xs)
	if n != len(ts) {
		return 0.0, errors.Errorf("dense: %d inputs but %d targets", n, len(ts))
	}
	if n == 0 {
		return 0.0, errors.New("dense: empty batch")
	}

	sum := float32(0.0)
	for i := range xs {
		y, err := m.Predict(xs[i])
		if err != nil {
			return 0.0, err
		}
		loss, err := m.PredictLoss.Func(y, ts[i])
		if err != nil {
			return 0.0, err
		}
		sum += loss
	}
	return sum / float32(n), nil
}

func hit(y, t blas32.Vector) bool {
	// a single output is a probability of the positive class
	if y.N == 1 {
		return (y.Data[0] >= 0.5) == (t.Data[0] >= 0.5)
	}
	yIdx := slicesx.Argsort(y.Data)[y.N-1]
	tIdx := slicesx.Argsort(t.Data)[t.N-1]
	return yIdx == tIdx
}

func (m *Model) Accuracy(xs, ts []blas32.Vector, p int) (float32, error) {
	n := len(xs)
	if n != len(ts) {
		return 0.0, errors.Errorf("dense: %d inputs but %d targets", n, len(ts))
	}
	if n == 0 {
		return 0.0, errors.New("dense: empty batch")
	}
	correctCounts := make([]int, p)

	err := parallel.For(n, p, func(workerId, idx int) error {
		y, err := m.Predict(xs[idx])
		if err != nil {
			return err
		}
		if hit(y, ts[idx]) {
			correctCounts[workerId] += 1
		}
		return nil
	})

	if err != nil {
		return 0.0, err
	}
	sum := omath.Sum(correctCounts...)
	return float32(sum) / float32(n), nil
}

func (m *Model) BackPropagate(x, t blas32.Vector) (GradBuffers, error) {
	y, backwards, err := m.Forwards.Propagate(x, m.Parameters)
	if err != nil {
		return nil, err
	}
	firstChain, err := m.PredictLoss.Derivative(y, t)
	if err != nil {
		return nil, err
	}
	_, grads, err := backwards.Propagate(firstChain)
	return grads, err
}

// ComputeGrad averages the per-sample gradients of a mini-batch. Samples are
// spread over p workers but summed in index order, so the result does not
// depend on scheduling.
func (m *Model) ComputeGrad(xs, ts []blas32.Vector, p int) (GradBuffers, error) {
	n := len(xs)
	if n != len(ts) {
		return nil, errors.Errorf("dense: %d inputs but %d targets", n, len(ts))
	}
	if n == 0 {
		return nil, errors.New("dense: empty batch")
	}

	perSample := make([]GradBuffers, n)
	err := parallel.For(n, p, func(_, idx int) error {
		grads, err := m.BackPropagate(xs[idx], ts[idx])
		if err != nil {
			return err
		}
		perSample[idx] = grads
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := perSample[0]
	for _, grads := range perSample[1:] {
		total.Axpy(1.0, grads)
	}
	total.Scal(1.0 / float32(n))
	return total, nil
}
