package mathx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sw965/ganblr/mathx"
	"github.com/sw965/ganblr/mathx/randx"
)

func TestNumericalGradient(t *testing.T) {
	xs := []float64{1.0, -2.0, 3.0}
	f := func(xs []float64) float64 {
		return xs[0]*xs[0] + 3.0*xs[1] - xs[2]*xs[0]
	}
	grad := mathx.NumericalGradient(xs, 1e-5, f)
	assert.InDelta(t, 2.0*1.0-3.0, grad[0], 1e-6)
	assert.InDelta(t, 3.0, grad[1], 1e-6)
	assert.InDelta(t, -1.0, grad[2], 1e-6)
	assert.Equal(t, []float64{1.0, -2.0, 3.0}, xs)
}

func TestClip(t *testing.T) {
	assert.Equal(t, float32(0.5), mathx.Clip(float32(0.5), 0.0, 1.0))
	assert.Equal(t, 1e-7, mathx.Clip(0.0, 1e-7, 1.0-1e-7))
	assert.Equal(t, 1.0-1e-7, mathx.Clip(1.0, 1e-7, 1.0-1e-7))
}

func TestSubsample(t *testing.T) {
	rng := randx.NewPCG(7)
	idxs := randx.Subsample(10, 0.8, rng)
	assert.Len(t, idxs, 8)

	seen := map[int]bool{}
	for _, idx := range idxs {
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 10)
		assert.False(t, seen[idx])
		seen[idx] = true
	}

	again := randx.Subsample(10, 0.8, randx.NewPCG(7))
	assert.Equal(t, idxs, again)
}
