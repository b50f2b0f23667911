package ganblr

import (
	"io"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw965/ganblr/blas32/tensor/2d"
	"github.com/sw965/ganblr/blas32/vector"
	"github.com/sw965/ganblr/kdb"
	"github.com/sw965/ganblr/mathx/randx"
	"gonum.org/v1/gonum/blas/blas32"
)

func newTestEnv(t *testing.T) (generatorEnv, [][]int) {
	rng := randx.NewPCG(17)
	x := make([][]int, 60)
	y := make([]int, 60)
	for i := range x {
		label := i % 2
		x[i] = []int{(label + rng.IntN(2)) % 3, label, rng.IntN(2)}
		y[i] = label
	}
	x[0], x[2] = []int{2, 0, 0}, []int{0, 0, 1}

	data, err := kdb.NewDataUtils(x, y)
	require.NoError(t, err)
	xs, err := data.KdbX(1)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := DefaultConfig()
	cfg.BatchSize = 8
	cfg.LearningRate = 0.05
	cfg.Parallel = 2
	return generatorEnv{
		xs:         xs,
		ts:         data.OneHotY(),
		numClasses: data.NumClasses,
		constraint: NewSoftmaxWeight(data.ConstraintPositions()),
		config:     cfg,
		rng:        rng,
		logger:     logger,
	}, x
}

func assertProjected(t *testing.T, c SoftmaxWeight, w blas32.General) {
	t.Helper()
	assert.InDeltaSlice(t, c.Apply(w).Data, w.Data, 1e-4)
	for g := 0; g < c.NumGroups(); g++ {
		start, end := c.Group(g)
		for j := 0; j < w.Cols; j++ {
			sum := 0.0
			for i := start; i < end; i++ {
				sum += math.Exp(float64(w.Data[tensor2d.At(w, i, j)]))
			}
			assert.InDelta(t, 1.0, sum, 1e-4)
		}
	}
}

func TestWarmupSatisfiesConstraint(t *testing.T) {
	env, _ := newTestEnv(t)
	w, history, err := warmup(env, 2)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, env.constraint.Width(), w.Kernel.Rows)
	assert.Equal(t, env.numClasses, w.Kernel.Cols)
	assertProjected(t, env.constraint, w.Kernel)
}

func TestRefineLeavesInputUntouched(t *testing.T) {
	env, _ := newTestEnv(t)
	current, _, err := warmup(env, 1)
	require.NoError(t, err)
	before := current.Clone()

	next, history, err := refine(env, current, trainingRound{index: 0, lambda: 0.5})
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, before, current)
	assert.NotEqual(t, current.Kernel.Data, next.Kernel.Data)
	assertProjected(t, env.constraint, next.Kernel)

	// the returned weights are not shared with the input
	next.Kernel.Data[0] += 1.0
	assert.Equal(t, before, current)
}

func TestRefineRejectsWrongShape(t *testing.T) {
	env, _ := newTestEnv(t)
	bad := Weights{Kernel: tensor2d.NewZeros(2, 2), Bias: vector.NewZeros(2)}
	_, _, err := refine(env, bad, trainingRound{lambda: 1.0})
	assert.Error(t, err)
}

func TestDiscriminatorLoss(t *testing.T) {
	ps := []blas32.Vector{
		vector.New([]float32{0.5}),
		vector.New([]float32{0.0}),
		vector.New([]float32{1.0}),
	}
	want := (-math.Log(0.5) - math.Log(1.0-1e-7) - math.Log(1e-7)) / 3.0
	assert.InDelta(t, want, float64(discriminatorLoss(ps)), 1e-4)

	single := []blas32.Vector{vector.New([]float32{0.25})}
	assert.InDelta(t, -math.Log(0.75), float64(discriminatorLoss(single)), 1e-6)
}

func TestDiscriminate(t *testing.T) {
	env, x := newTestEnv(t)
	cfg := env.config

	_, _, err := discriminate(nil, x, cfg, env.rng)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, _, err = discriminate(x, nil, cfg, env.rng)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	cfg.DiscriminatorFrac = 0.0
	_, _, err = discriminate(x, x, cfg, env.rng)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	cfg.DiscriminatorFrac = 0.8
	lambda, history, err := discriminate(x, x[:30], cfg, env.rng)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Greater(t, lambda, float32(0.0))
}
