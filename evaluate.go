package ganblr

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sw965/ganblr/classifier"
)

// Evaluate scores the model by training on synthetic rows and testing on
// real ones (TSTR). model is "lr", "mlp", "rf" or a classifier.Classifier.
// It returns the accuracy on (x, y).
func (m *Model) Evaluate(x [][]int, y []int, model any) (float64, error) {
	var clf classifier.Classifier
	switch v := model.(type) {
	case string:
		c, err := classifier.New(v, m.rng)
		if err != nil {
			return 0.0, errors.Wrap(ErrInvalidArgument, err.Error())
		}
		clf = c
	case classifier.Classifier:
		clf = v
	default:
		return 0.0, errors.Wrapf(ErrInvalidArgument, "evaluator must be a name or a classifier, got %T", model)
	}
	if len(x) != len(y) {
		return 0.0, errors.Wrapf(ErrInvalidArgument, "%d rows but %d labels", len(x), len(y))
	}

	synX, synY, err := m.Sample(0)
	if err != nil {
		return 0.0, err
	}
	if err := clf.Fit(synX, synY); err != nil {
		return 0.0, errors.Wrap(err, "fit evaluator on synthetic data")
	}
	pred, err := clf.Predict(x)
	if err != nil {
		return 0.0, errors.Wrap(err, "predict real rows")
	}
	acc, err := classifier.Accuracy(y, pred)
	if err != nil {
		return 0.0, err
	}
	m.logger.WithFields(logrus.Fields{"phase": "evaluate", "accuracy": acc, "rows": len(x)}).Info("TSTR accuracy")
	return acc, nil
}
