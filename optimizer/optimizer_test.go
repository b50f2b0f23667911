package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw965/ganblr/optimizer"
)

// minimises (w-3)^2 from w = 0
func descend(t *testing.T, opt optimizer.Optimizer, steps int) float32 {
	w := []float32{0.0}
	for i := 0; i < steps; i++ {
		grad := []float32{2.0 * (w[0] - 3.0)}
		require.NoError(t, opt.Step([][]float32{w}, [][]float32{grad}))
	}
	return w[0]
}

func TestAdam(t *testing.T) {
	w := descend(t, optimizer.NewAdam(0.05), 2000)
	assert.InDelta(t, 3.0, w, 0.05)
}

func TestAdamFirstStep(t *testing.T) {
	// the bias-corrected first step moves by the learning rate
	w := []float32{1.0}
	opt := optimizer.NewAdam(0.01)
	require.NoError(t, opt.Step([][]float32{w}, [][]float32{{0.5}}))
	assert.InDelta(t, 0.99, w[0], 1e-5)
}

func TestMomentum(t *testing.T) {
	w := descend(t, optimizer.NewMomentum(0.01), 1000)
	assert.InDelta(t, 3.0, w, 0.01)
}

func TestShapeMismatch(t *testing.T) {
	opt := optimizer.NewAdam(0.001)
	err := opt.Step([][]float32{{1, 2}}, [][]float32{{1}})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	opt, err := optimizer.New("adam", 0.001)
	require.NoError(t, err)
	assert.IsType(t, &optimizer.Adam{}, opt)

	_, err = optimizer.New("rmsprop", 0.001)
	assert.Error(t, err)
}
