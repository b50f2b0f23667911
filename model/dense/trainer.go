package dense

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/sw965/ganblr/optimizer"
	"gonum.org/v1/gonum/blas/blas32"
)

type EpochStats struct {
	Loss     float32
	Accuracy float32
}

type History []EpochStats

func (h History) Last() EpochStats {
	if len(h) == 0 {
		return EpochStats{}
	}
	return h[len(h)-1]
}

// Trainer runs shuffled mini-batch epochs. Every epoch visits each sample
// once, the last mini-batch may be short.
type Trainer struct {
	Model         *Model
	Optimizer     optimizer.Optimizer
	MiniBatchSize int
	Parallel      int
	Rand          *rand.Rand

	// OnEpoch, if set, is called after every epoch.
	OnEpoch func(epoch int, stats EpochStats)
}

func (t *Trainer) Validate() error {
	if t.Model == nil || len(t.Model.Forwards) == 0 {
		return errors.New("dense: trainer has no model")
	}
	if t.Model.PredictLoss.Func == nil || t.Model.PredictLoss.Derivative == nil {
		return errors.New("dense: model has no loss")
	}
	if t.Optimizer == nil {
		return errors.New("dense: trainer has no optimizer")
	}
	if t.MiniBatchSize <= 0 {
		return errors.Errorf("dense: mini-batch size must be positive, got %d", t.MiniBatchSize)
	}
	if t.Parallel <= 0 {
		return errors.Errorf("dense: parallel must be positive, got %d", t.Parallel)
	}
	if t.Rand == nil {
		return errors.New("dense: trainer has no random source")
	}
	return nil
}

func (t *Trainer) Fit(xs, ts []blas32.Vector, epochs int) (History, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	n := len(xs)
	if n != len(ts) {
		return nil, errors.Errorf("dense: %d inputs but %d targets", n, len(ts))
	}
	if n == 0 {
		return nil, errors.New("dense: no training data")
	}
	if epochs <= 0 {
		return nil, errors.Errorf("dense: epochs must be positive, got %d", epochs)
	}

	size := t.MiniBatchSize
	if n < size {
		size = n
	}

	model := t.Model
	history := make(History, 0, epochs)
	miniXs := make([]blas32.Vector, 0, size)
	miniTs := make([]blas32.Vector, 0, size)
	for epoch := 0; epoch < epochs; epoch++ {
		idxs := t.Rand.Perm(n)
		for i := 0; i < n; i += size {
			end := min(i+size, n)
			miniXs = miniXs[:0]
			miniTs = miniTs[:0]
			for _, idx := range idxs[i:end] {
				miniXs = append(miniXs, xs[idx])
				miniTs = append(miniTs, ts[idx])
			}

			grads, err := model.ComputeGrad(miniXs, miniTs, t.Parallel)
			if err != nil {
				return nil, err
			}

			err = t.Optimizer.Step(model.Parameters.Views(), grads.Views())
			if err != nil {
				return nil, err
			}
			model.ApplyConstraints()
		}

		loss, err := model.MeanLoss(xs, ts)
		if err != nil {
			return nil, err
		}
		acc, err := model.Accuracy(xs, ts, t.Parallel)
		if err != nil {
			return nil, err
		}
		stats := EpochStats{Loss: loss, Accuracy: acc}
		history = append(history, stats)
		if t.OnEpoch != nil {
			t.OnEpoch(epoch, stats)
		}
	}
	return history, nil
}
