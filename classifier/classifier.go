// Package classifier provides the downstream models used to score
// synthetic data by training on it and testing on real rows.
package classifier

import (
	"math/rand/v2"

	"github.com/pkg/errors"
)

var ErrUnknownClassifier = errors.New("classifier: unknown classifier")

type Classifier interface {
	Fit(x [][]int, y []int) error
	Predict(x [][]int) ([]int, error)
}

// New returns the classifier registered under name: "lr", "mlp" or "rf".
func New(name string, rng *rand.Rand) (Classifier, error) {
	switch name {
	case "lr":
		return NewLogisticRegression(rng), nil
	case "mlp":
		return NewMLP(rng), nil
	case "rf":
		return NewRandomForest(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownClassifier, "%q", name)
	}
}

func Accuracy(y, pred []int) (float64, error) {
	if len(y) != len(pred) {
		return 0.0, errors.Errorf("classifier: %d labels but %d predictions", len(y), len(pred))
	}
	if len(y) == 0 {
		return 0.0, errors.New("classifier: no labels")
	}
	correct := 0
	for i := range y {
		if y[i] == pred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(y)), nil
}

func checkXY(x [][]int, y []int) error {
	if len(x) == 0 {
		return errors.New("classifier: no training rows")
	}
	if len(x) != len(y) {
		return errors.Errorf("classifier: %d rows but %d labels", len(x), len(y))
	}
	for i, label := range y {
		if label < 0 {
			return errors.Errorf("classifier: negative label %d at row %d", label, i)
		}
	}
	return nil
}
