package ganblr

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sw965/ganblr/blas32/tensor/2d"
	"github.com/sw965/ganblr/model/dense"
	"github.com/sw965/ganblr/optimizer"
	"gonum.org/v1/gonum/blas/blas32"
)

// generatorEnv is everything a generator training run needs apart from the
// weights it starts from.
type generatorEnv struct {
	xs         []blas32.Vector
	ts         []blas32.Vector
	numClasses int
	constraint SoftmaxWeight
	config     Config
	rng        *rand.Rand
	logger     logrus.FieldLogger
}

type trainingRound struct {
	index  int
	lambda float32
}

func zerosInitializer(rows, cols int, _ *rand.Rand) blas32.General {
	return tensor2d.NewZeros(rows, cols)
}

// generatorSession owns one constrained softmax network and its optimizer
// for the length of a single training run. Nothing in it outlives release.
type generatorSession struct {
	model   *dense.Model
	trainer *dense.Trainer
	env     generatorEnv
}

func newGeneratorSession(env generatorEnv, init dense.Initializer, loss dense.PredictLoss) (*generatorSession, error) {
	opt, err := optimizer.New(env.config.Optimizer, env.config.LearningRate)
	if err != nil {
		return nil, err
	}

	model := &dense.Model{}
	model.AppendConstrainedAffine(env.constraint.Width(), env.numClasses, init, env.constraint.Apply, env.rng)
	model.AppendSoftmax()
	model.PredictLoss = loss

	trainer := &dense.Trainer{
		Model:         model,
		Optimizer:     opt,
		MiniBatchSize: env.config.BatchSize,
		Parallel:      env.config.Parallel,
		Rand:          env.rng,
	}
	return &generatorSession{model: model, trainer: trainer, env: env}, nil
}

func (s *generatorSession) load(w Weights) error {
	return s.model.Parameters[:1].CopyFrom(w.parameters())
}

func (s *generatorSession) train(phase string, round, epochs int) (dense.History, error) {
	s.trainer.OnEpoch = func(epoch int, stats dense.EpochStats) {
		s.env.logger.WithFields(logrus.Fields{
			"phase":    phase,
			"round":    round,
			"epoch":    epoch,
			"loss":     stats.Loss,
			"accuracy": stats.Accuracy,
		}).Debug("generator epoch")
	}
	return s.trainer.Fit(s.env.xs, s.env.ts, epochs)
}

func (s *generatorSession) weights() Weights {
	param := s.model.Parameters[0]
	return Weights{Kernel: param.Weight, Bias: param.Bias}.Clone()
}

func (s *generatorSession) release() {
	s.model = nil
	s.trainer = nil
}

// warmup fits a freshly initialised generator with plain cross-entropy.
func warmup(env generatorEnv, epochs int) (Weights, dense.History, error) {
	session, err := newGeneratorSession(env, dense.GlorotUniformInitializer, dense.NewCrossEntropyLoss())
	if err != nil {
		return Weights{}, nil, err
	}
	defer session.release()

	history, err := session.train("warmup", -1, epochs)
	if err != nil {
		return Weights{}, nil, err
	}
	return session.weights(), history, nil
}

// refine trains a new generator, started from current, for one epoch of the
// elastic loss weighted by round.lambda. Only the returned weights carry
// over to the next round.
func refine(env generatorEnv, current Weights, round trainingRound) (Weights, dense.History, error) {
	session, err := newGeneratorSession(env, zerosInitializer, dense.NewElasticCrossEntropyLoss(round.lambda))
	if err != nil {
		return Weights{}, nil, err
	}
	defer session.release()

	if err := session.load(current); err != nil {
		return Weights{}, nil, errors.Wrap(err, "load generator weights")
	}
	history, err := session.train("refine", round.index, 1)
	if err != nil {
		return Weights{}, nil, err
	}
	return session.weights(), history, nil
}
