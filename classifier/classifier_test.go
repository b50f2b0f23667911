package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw965/ganblr/classifier"
	"github.com/sw965/ganblr/mathx/randx"
)

// separable labels each row by whether its first feature is above 1.
func separable() ([][]int, []int) {
	x := make([][]int, 0, 60)
	y := make([]int, 0, 60)
	for i := 0; i < 60; i++ {
		a, b := i%4, (i/4)%3
		x = append(x, []int{a, b})
		label := 0
		if a > 1 {
			label = 1
		}
		y = append(y, label)
	}
	return x, y
}

func TestNew(t *testing.T) {
	rng := randx.NewPCG(1)
	for _, name := range []string{"lr", "mlp", "rf"} {
		c, err := classifier.New(name, rng)
		require.NoError(t, err)
		assert.NotNil(t, c)
	}
	_, err := classifier.New("svm", rng)
	assert.ErrorIs(t, err, classifier.ErrUnknownClassifier)
}

func TestAccuracy(t *testing.T) {
	acc, err := classifier.Accuracy([]int{0, 1, 1, 0}, []int{0, 1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.75, acc)

	_, err = classifier.Accuracy([]int{0}, []int{0, 1})
	assert.Error(t, err)
	_, err = classifier.Accuracy(nil, nil)
	assert.Error(t, err)
}

func TestStandardScaler(t *testing.T) {
	scaler := classifier.StandardScaler{}
	require.NoError(t, scaler.Fit([][]int{{0, 5}, {2, 5}}))
	assert.Equal(t, []float64{1, 5}, scaler.Mean)
	assert.Equal(t, []float64{1, 1}, scaler.Scale)

	xs, err := scaler.Transform([][]int{{0, 5}, {2, 6}})
	require.NoError(t, err)
	assert.Equal(t, []float32{-1, 0}, xs[0].Data)
	assert.Equal(t, []float32{1, 1}, xs[1].Data)

	_, err = scaler.Transform([][]int{{1}})
	assert.Error(t, err)
}

func TestLogisticRegressionLearnsThreshold(t *testing.T) {
	x, y := separable()
	lr := classifier.NewLogisticRegression(randx.NewPCG(2))
	lr.Epochs = 200
	require.NoError(t, lr.Fit(x, y))

	pred, err := lr.Predict(x)
	require.NoError(t, err)
	acc, err := classifier.Accuracy(y, pred)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.9)
}

func TestMLPPredictShape(t *testing.T) {
	x, y := separable()
	mlp := classifier.NewMLP(randx.NewPCG(3))
	mlp.Hidden = []int{8}
	mlp.Epochs = 5
	require.NoError(t, mlp.Fit(x, y))

	pred, err := mlp.Predict(x[:7])
	require.NoError(t, err)
	assert.Len(t, pred, 7)
	for _, p := range pred {
		assert.Contains(t, []int{0, 1}, p)
	}
}

func TestPredictBeforeFit(t *testing.T) {
	_, err := classifier.NewMLP(randx.NewPCG(4)).Predict([][]int{{0}})
	assert.Error(t, err)
	_, err = classifier.NewRandomForest().Predict([][]int{{0}})
	assert.Error(t, err)
}

func TestFitRejectsBadInput(t *testing.T) {
	lr := classifier.NewLogisticRegression(randx.NewPCG(5))
	assert.Error(t, lr.Fit(nil, nil))
	assert.Error(t, lr.Fit([][]int{{0}}, []int{0, 1}))
	assert.Error(t, lr.Fit([][]int{{0}}, []int{-1}))
}

func TestRandomForestLearnsThreshold(t *testing.T) {
	x, y := separable()
	rf := classifier.NewRandomForest()
	rf.ForestSize = 10
	require.NoError(t, rf.Fit(x, y))

	pred, err := rf.Predict(x)
	require.NoError(t, err)
	acc, err := classifier.Accuracy(y, pred)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.8)
}

func TestRandomForestSingleFeature(t *testing.T) {
	x := make([][]int, 0, 48)
	y := make([]int, 0, 48)
	for i := 0; i < 48; i++ {
		v := i % 6
		x = append(x, []int{v})
		label := 0
		if v > 2 {
			label = 1
		}
		y = append(y, label)
	}
	rf := classifier.NewRandomForest()
	rf.ForestSize = 10
	require.NoError(t, rf.Fit(x, y))

	pred, err := rf.Predict([][]int{{0}, {1}, {2}, {3}, {4}, {5}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, pred)

	_, err = rf.Predict([][]int{{0, 1}})
	assert.Error(t, err)
}
