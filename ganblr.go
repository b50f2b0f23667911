// Package ganblr trains a kDB-structured softmax generator adversarially
// and samples synthetic categorical rows from the Bayesian network its
// weights describe.
package ganblr

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sw965/ganblr/blas32/tensor/2d"
	"github.com/sw965/ganblr/blas32/vector"
	"github.com/sw965/ganblr/kdb"
	"github.com/sw965/ganblr/mathx/randx"
	"github.com/sw965/ganblr/model/dense"
	"gonum.org/v1/gonum/blas/blas32"
)

type State int

const (
	Unfit State = iota
	WarmedUp
	Refining
	Fitted
)

func (s State) String() string {
	switch s {
	case Unfit:
		return "UNFIT"
	case WarmedUp:
		return "WARMED_UP"
	case Refining:
		return "REFINING"
	case Fitted:
		return "FIT"
	default:
		return "UNKNOWN"
	}
}

// Weights are the raw generator logits. Kernel is [encoded width x classes].
type Weights struct {
	Kernel blas32.General
	Bias   blas32.Vector
}

func (w Weights) Clone() Weights {
	return Weights{
		Kernel: tensor2d.Clone(w.Kernel),
		Bias:   vector.Clone(w.Bias),
	}
}

func (w Weights) parameters() dense.Parameters {
	return dense.Parameters{{Weight: w.Kernel, Bias: w.Bias}}
}

// LoadWeightsJSON reads weights written by Model.SaveWeights.
func LoadWeightsJSON(path string) (Weights, error) {
	params, err := dense.LoadParametersJSON(path)
	if err != nil {
		return Weights{}, errors.Wrapf(err, "load weights %s", path)
	}
	if len(params) != 1 {
		return Weights{}, errors.Wrapf(ErrInvalidArgument, "%s holds %d layers, want 1", path, len(params))
	}
	return Weights{Kernel: params[0].Weight, Bias: params[0].Bias}, nil
}

type RoundStats struct {
	Round int

	// Lambda is the discriminator-derived weight of the elastic loss.
	Lambda        float32
	Discriminator dense.History
	Generator     dense.History
}

type History struct {
	Warmup dense.History
	Rounds []RoundStats
}

type Option func(*Model)

// WithSeed makes Fit and Sample reproducible.
func WithSeed(seed uint64) Option {
	return func(m *Model) {
		m.rng = randx.NewPCG(seed)
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

type Model struct {
	state      State
	config     Config
	rng        *rand.Rand
	logger     *logrus.Logger
	data       *kdb.DataUtils
	constraint SoftmaxWeight
	weights    Weights
	history    History
}

func New(opts ...Option) *Model {
	m := &Model{config: DefaultConfig()}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = randx.NewPCGFromEntropy()
	}
	if m.logger == nil {
		m.logger = logrus.New()
	}
	return m
}

func (m *Model) State() State {
	return m.state
}

// Rand is the random stream shared by training and sampling.
func (m *Model) Rand() *rand.Rand {
	return m.rng
}

func (m *Model) Config() Config {
	return m.config
}

func (m *Model) Data() *kdb.DataUtils {
	return m.data
}

func (m *Model) History() History {
	return m.history
}

// Weights returns a copy of the generator logits.
func (m *Model) Weights() (Weights, error) {
	if m.state != Fitted {
		return Weights{}, ErrNotFitted
	}
	return m.weights.Clone(), nil
}

func (m *Model) SaveWeights(path string) error {
	if m.state != Fitted {
		return ErrNotFitted
	}
	return errors.Wrapf(m.weights.parameters().SaveJSON(path), "save weights %s", path)
}

// ProbabilityTables reconstructs the conditional probability tables of the
// fitted generator without touching its weights.
func (m *Model) ProbabilityTables() (ProbabilityTables, error) {
	if m.state != Fitted {
		return ProbabilityTables{}, ErrNotFitted
	}
	return Reconstruct(m.weights, m.data)
}

// Fit runs the warmup and then cfg.Epochs adversarial rounds on the
// ordinal-encoded rows x and labels y. Any failure leaves the model unfit.
func (m *Model) Fit(x [][]int, y []int, cfg Config) error {
	m.reset()
	cfg = cfg.normalized()
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.logger.SetLevel(cfg.logLevel())
	if cfg.K > 2 {
		m.logger.WithField("k", cfg.K).Warn("k above 2 tends to overfit the kDB structure")
	}

	if err := m.fit(x, y, cfg); err != nil {
		m.reset()
		return err
	}
	m.state = Fitted
	return nil
}

func (m *Model) reset() {
	m.state = Unfit
	m.data = nil
	m.weights = Weights{}
	m.history = History{}
}

func (m *Model) fit(x [][]int, y []int, cfg Config) error {
	data, err := kdb.NewDataUtils(x, y)
	if err != nil {
		return err
	}
	xs, err := data.KdbX(cfg.K)
	if err != nil {
		return err
	}
	m.config = cfg
	m.data = data
	m.constraint = NewSoftmaxWeight(data.ConstraintPositions())

	env := generatorEnv{
		xs:         xs,
		ts:         data.OneHotY(),
		numClasses: data.NumClasses,
		constraint: m.constraint,
		config:     cfg,
		rng:        m.rng,
		logger:     m.logger,
	}

	m.logger.WithFields(logrus.Fields{
		"phase": "warmup",
		"rows":  data.DataSize,
		"width": m.constraint.Width(),
	}).Info("warming up generator")
	weights, history, err := warmup(env, cfg.WarmupEpochs)
	if err != nil {
		return errors.Wrap(err, "warmup")
	}
	m.weights = weights
	m.history.Warmup = history
	m.state = WarmedUp

	synX, _, err := m.sample(data.DataSize)
	if err != nil {
		return errors.Wrap(err, "warmup sample")
	}

	m.state = Refining
	for round := 0; round < cfg.Epochs; round++ {
		lambda, discHistory, err := discriminate(x, synX, cfg, m.rng)
		if err != nil {
			return errors.Wrapf(err, "round %d: discriminator", round)
		}

		weights, genHistory, err := refine(env, m.weights, trainingRound{index: round, lambda: lambda})
		if err != nil {
			return errors.Wrapf(err, "round %d: generator", round)
		}
		m.weights = weights
		m.history.Rounds = append(m.history.Rounds, RoundStats{
			Round:         round,
			Lambda:        lambda,
			Discriminator: discHistory,
			Generator:     genHistory,
		})

		last := genHistory.Last()
		m.logger.WithFields(logrus.Fields{
			"phase":    "refine",
			"round":    round,
			"loss":     lambda,
			"accuracy": last.Accuracy,
		}).Info("round finished")

		synX, _, err = m.sample(data.DataSize)
		if err != nil {
			return errors.Wrapf(err, "round %d: sample", round)
		}
	}
	return nil
}
