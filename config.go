package ganblr

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sw965/ganblr/optimizer"
	"github.com/sw965/omw/encoding/jsonx"
)

// Config holds the training hyper-parameters of Fit.
type Config struct {
	// K is the kDB dependency order. Values above 2 are allowed but rarely help.
	K            int `json:"k"`
	BatchSize    int `json:"batch_size"`
	Epochs       int `json:"epochs"`
	WarmupEpochs int `json:"warmup_epochs"`

	// Verbose selects the log level: 0 warn, 1 info, 2 and above debug.
	Verbose int `json:"verbose"`

	LearningRate      float32 `json:"learning_rate"`
	DiscriminatorFrac float64 `json:"discriminator_frac"`
	Parallel          int     `json:"parallel"`
	Optimizer         string  `json:"optimizer"`
}

func DefaultConfig() Config {
	return Config{
		K:                 0,
		BatchSize:         32,
		Epochs:            10,
		WarmupEpochs:      1,
		Verbose:           1,
		LearningRate:      0.001,
		DiscriminatorFrac: 0.8,
		Parallel:          runtime.NumCPU(),
		Optimizer:         "adam",
	}
}

func LoadConfigJSON(path string) (Config, error) {
	cfg, err := jsonx.Load[Config](path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load config %s", path)
	}
	return cfg, nil
}

func (c Config) SaveJSON(path string) error {
	return jsonx.Save[Config](c, path)
}

func (c Config) Validate() error {
	if c.K < 0 {
		return errors.Wrapf(ErrInvalidArgument, "k must be >= 0, got %d", c.K)
	}
	if c.BatchSize <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "batch size must be positive, got %d", c.BatchSize)
	}
	if c.Epochs <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "epochs must be positive, got %d", c.Epochs)
	}
	if c.WarmupEpochs <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "warmup epochs must be positive, got %d", c.WarmupEpochs)
	}
	if c.LearningRate <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "learning rate must be positive, got %g", c.LearningRate)
	}
	if c.DiscriminatorFrac <= 0 || c.DiscriminatorFrac > 1 {
		return errors.Wrapf(ErrInvalidArgument, "discriminator fraction must be in (0, 1], got %g", c.DiscriminatorFrac)
	}
	if c.Parallel <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "parallel must be positive, got %d", c.Parallel)
	}
	if _, err := optimizer.New(c.Optimizer, c.LearningRate); err != nil {
		return errors.Wrap(ErrInvalidArgument, err.Error())
	}
	return nil
}

// normalized coerces Verbose the way Fit expects it.
func (c Config) normalized() Config {
	if c.Verbose < 0 {
		c.Verbose = 1
	}
	return c
}

func (c Config) logLevel() logrus.Level {
	switch {
	case c.Verbose == 0:
		return logrus.WarnLevel
	case c.Verbose == 1:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}
