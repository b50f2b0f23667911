// Command ganblr fits a GANBLR generator on a categorical CSV and writes
// synthetic rows.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sw965/ganblr"
	"github.com/sw965/ganblr/dataset"
)

type options struct {
	data     string
	class    string
	config   string
	k        int
	epochs   int
	warmup   int
	batch    int
	verbose  int
	seed     uint64
	size     int
	out      string
	eval     string
	testFrac float64
	weights  string
}

func parseFlags() options {
	defaults := ganblr.DefaultConfig()
	opts := options{}
	flag.StringVar(&opts.data, "data", "", "training CSV path or http(s) URL")
	flag.StringVar(&opts.class, "class", "", "class column (default: last column)")
	flag.StringVar(&opts.config, "config", "", "JSON config; explicit flags override it")
	flag.IntVar(&opts.k, "k", defaults.K, "kDB dependency order")
	flag.IntVar(&opts.epochs, "epochs", defaults.Epochs, "adversarial rounds")
	flag.IntVar(&opts.warmup, "warmup", defaults.WarmupEpochs, "warmup epochs")
	flag.IntVar(&opts.batch, "batch", defaults.BatchSize, "mini-batch size")
	flag.IntVar(&opts.verbose, "v", defaults.Verbose, "verbosity: 0 warn, 1 info, 2 debug")
	flag.Uint64Var(&opts.seed, "seed", 0, "random seed (0: from entropy)")
	flag.IntVar(&opts.size, "size", 0, "synthetic rows (0: as many as the training data)")
	flag.StringVar(&opts.out, "out", "synthetic.csv", "output CSV path")
	flag.StringVar(&opts.eval, "eval", "", "TSTR evaluator: lr, mlp or rf")
	flag.Float64Var(&opts.testFrac, "test-frac", 0.0, "rows held out for -eval (0: evaluate on the training rows)")
	flag.StringVar(&opts.weights, "weights", "", "save generator weights as JSON")
	flag.Parse()
	return opts
}

// buildConfig starts from -config (or the defaults) and applies the flags
// the user set explicitly.
func buildConfig(opts options) (ganblr.Config, error) {
	cfg := ganblr.DefaultConfig()
	if opts.config != "" {
		loaded, err := ganblr.LoadConfigJSON(opts.config)
		if err != nil {
			return ganblr.Config{}, err
		}
		cfg = loaded
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "k":
			cfg.K = opts.k
		case "epochs":
			cfg.Epochs = opts.epochs
		case "warmup":
			cfg.WarmupEpochs = opts.warmup
		case "batch":
			cfg.BatchSize = opts.batch
		case "v":
			cfg.Verbose = opts.verbose
		}
	})
	return cfg, cfg.Validate()
}

func loadTable(opts options) (dataset.Table, error) {
	if dataset.IsURL(opts.data) {
		return dataset.LoadURL(opts.data, opts.class)
	}
	return dataset.LoadCSV(opts.data, opts.class)
}

func run(opts options, logger *logrus.Logger) error {
	if opts.data == "" {
		return errors.New("-data is required")
	}
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}

	table, err := loadTable(opts)
	if err != nil {
		return err
	}

	modelOpts := []ganblr.Option{ganblr.WithLogger(logger)}
	if opts.seed != 0 {
		modelOpts = append(modelOpts, ganblr.WithSeed(opts.seed))
	}
	model := ganblr.New(modelOpts...)

	train, test := table, table
	if opts.testFrac > 0 {
		train, test, err = table.Split(opts.testFrac, model.Rand())
		if err != nil {
			return err
		}
	}

	logger.WithFields(logrus.Fields{"rows": len(train.X), "features": len(train.FeatureNames)}).Info("fitting")
	if err := model.Fit(train.X, train.Y, cfg); err != nil {
		return err
	}

	synX, synY, err := model.Sample(opts.size)
	if err != nil {
		return err
	}
	records, err := table.Decode(synX, synY)
	if err != nil {
		return err
	}
	if err := dataset.WriteCSV(opts.out, table.Header(), records); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{"rows": len(records), "path": opts.out}).Info("wrote synthetic data")

	if opts.weights != "" {
		if err := model.SaveWeights(opts.weights); err != nil {
			return err
		}
	}

	if opts.eval != "" {
		acc, err := model.Evaluate(test.X, test.Y, opts.eval)
		if err != nil {
			return err
		}
		fmt.Printf("TSTR accuracy (%s): %.4f\n", opts.eval, acc)
	}
	return nil
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(parseFlags(), logger); err != nil {
		logger.WithError(err).Error("ganblr failed")
		os.Exit(1)
	}
}
