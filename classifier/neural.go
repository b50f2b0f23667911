package classifier

import (
	"math/rand/v2"
	"runtime"
	"slices"

	"github.com/pkg/errors"
	"github.com/sw965/ganblr/blas32/vector"
	"github.com/sw965/ganblr/model/dense"
	"github.com/sw965/ganblr/optimizer"
	"gonum.org/v1/gonum/blas/blas32"
)

// Neural is a scaled-input softmax network. With no hidden layers it is
// multinomial logistic regression.
type Neural struct {
	Hidden        []int
	Epochs        int
	MiniBatchSize int
	LearningRate  float32

	rng        *rand.Rand
	scaler     StandardScaler
	model      *dense.Model
	numClasses int
}

func NewLogisticRegression(rng *rand.Rand) *Neural {
	return &Neural{
		Hidden:        nil,
		Epochs:        50,
		MiniBatchSize: 32,
		LearningRate:  0.01,
		rng:           rng,
	}
}

func NewMLP(rng *rand.Rand) *Neural {
	return &Neural{
		Hidden:        []int{100},
		Epochs:        50,
		MiniBatchSize: 32,
		LearningRate:  0.001,
		rng:           rng,
	}
}

func (c *Neural) Fit(x [][]int, y []int) error {
	if err := checkXY(x, y); err != nil {
		return err
	}
	if err := c.scaler.Fit(x); err != nil {
		return err
	}
	xs, err := c.scaler.Transform(x)
	if err != nil {
		return err
	}

	c.numClasses = max(slices.Max(y)+1, 2)
	ts := make([]blas32.Vector, len(y))
	for i, label := range y {
		ts[i] = vector.NewOneHot(c.numClasses, label)
	}

	model := &dense.Model{}
	xn := len(x[0])
	for _, h := range c.Hidden {
		model.AppendAffine(xn, h, dense.HeInitializer, c.rng)
		model.AppendReLU()
		xn = h
	}
	model.AppendAffine(xn, c.numClasses, dense.GlorotUniformInitializer, c.rng)
	model.AppendSoftmax()
	model.PredictLoss = dense.NewCrossEntropyLoss()

	trainer := dense.Trainer{
		Model:         model,
		Optimizer:     optimizer.NewAdam(c.LearningRate),
		MiniBatchSize: c.MiniBatchSize,
		Parallel:      runtime.NumCPU(),
		Rand:          c.rng,
	}
	if _, err := trainer.Fit(xs, ts, c.Epochs); err != nil {
		return errors.Wrap(err, "classifier: fit")
	}
	c.model = model
	return nil
}

func (c *Neural) Predict(x [][]int) ([]int, error) {
	if c.model == nil {
		return nil, errors.New("classifier: predict before fit")
	}
	xs, err := c.scaler.Transform(x)
	if err != nil {
		return nil, err
	}
	pred := make([]int, len(xs))
	for i, vec := range xs {
		y, err := c.model.Predict(vec)
		if err != nil {
			return nil, err
		}
		pred[i] = vector.ArgMax(y)
	}
	return pred, nil
}
