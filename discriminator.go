package ganblr

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/sw965/ganblr/blas32/vector"
	"github.com/sw965/ganblr/mathx"
	"github.com/sw965/ganblr/mathx/randx"
	"github.com/sw965/ganblr/model/dense"
	"github.com/sw965/ganblr/optimizer"
	"gonum.org/v1/gonum/blas/blas32"
)

func rowsToVectors(x [][]int) []blas32.Vector {
	xs := make([]blas32.Vector, len(x))
	for i, row := range x {
		xs[i] = vector.NewFromInts(row)
	}
	return xs
}

func newDiscriminator(numFeatures int, rng *rand.Rand) *dense.Model {
	model := &dense.Model{}
	model.AppendAffine(numFeatures, 1, dense.GlorotUniformInitializer, rng)
	model.AppendSigmoid()
	model.PredictLoss = dense.NewBinaryCrossEntropyLoss()
	return model
}

// discriminate trains a fresh discriminator for one epoch on a subsample of
// real rows (label 1) and synthetic rows (label 0), then scores the real rows.
// It returns mean(-log(1 - p)) over those scores.
func discriminate(realRows, synRows [][]int, cfg Config, rng *rand.Rand) (float32, dense.History, error) {
	if len(realRows) == 0 || len(synRows) == 0 {
		return 0.0, nil, errors.Wrap(ErrInvalidArgument, "discriminator needs real and synthetic rows")
	}

	realXs := rowsToVectors(realRows)
	xs := append(append([]blas32.Vector{}, realXs...), rowsToVectors(synRows)...)
	ts := make([]blas32.Vector, len(xs))
	for i := range ts {
		label := float32(0.0)
		if i < len(realRows) {
			label = 1.0
		}
		ts[i] = vector.New([]float32{label})
	}

	idxs := randx.Subsample(len(xs), cfg.DiscriminatorFrac, rng)
	if len(idxs) == 0 {
		return 0.0, nil, errors.Wrap(ErrInvalidArgument, "discriminator subsample is empty")
	}
	subXs := make([]blas32.Vector, len(idxs))
	subTs := make([]blas32.Vector, len(idxs))
	for i, idx := range idxs {
		subXs[i] = xs[idx]
		subTs[i] = ts[idx]
	}

	opt, err := optimizer.New(cfg.Optimizer, cfg.LearningRate)
	if err != nil {
		return 0.0, nil, err
	}
	model := newDiscriminator(realXs[0].N, rng)
	trainer := dense.Trainer{
		Model:         model,
		Optimizer:     opt,
		MiniBatchSize: cfg.BatchSize,
		Parallel:      cfg.Parallel,
		Rand:          rng,
	}
	history, err := trainer.Fit(subXs, subTs, 1)
	if err != nil {
		return 0.0, nil, err
	}

	ps, err := model.PredictBatch(realXs)
	if err != nil {
		return 0.0, nil, err
	}
	return discriminatorLoss(ps), history, nil
}

func discriminatorLoss(ps []blas32.Vector) float32 {
	sum := 0.0
	for _, p := range ps {
		clipped := mathx.Clip(float64(p.Data[0]), 1e-7, 1.0-1e-7)
		sum += -math.Log(1.0 - clipped)
	}
	return float32(sum / float64(len(ps)))
}
