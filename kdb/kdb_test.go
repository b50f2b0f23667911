package kdb_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw965/ganblr/kdb"
	"gonum.org/v1/gonum/mat"
)

func TestMutualInformation(t *testing.T) {
	a := []int{0, 1, 0, 1}
	assert.InDelta(t, math.Ln2, kdb.MutualInformation(a, a), 1e-12)
	assert.InDelta(t, 0.0, kdb.MutualInformation(a, []int{0, 0, 1, 1}), 1e-12)

	c := []int{0, 0, 0, 0}
	assert.InDelta(t, math.Ln2, kdb.ConditionalMutualInformation(a, a, c), 1e-12)
	// a is fully determined by c
	assert.InDelta(t, 0.0, kdb.ConditionalMutualInformation(a, []int{0, 0, 1, 1}, a), 1e-12)
}

func TestBuildGraph(t *testing.T) {
	x := [][]int{
		{0, 0, 1}, {0, 1, 1}, {1, 0, 0}, {1, 1, 0},
		{0, 0, 0}, {1, 1, 1}, {0, 1, 0}, {1, 0, 1},
	}
	y := []int{0, 0, 1, 1, 0, 1, 0, 1}

	assert.Empty(t, kdb.BuildGraph(x, y, 0))

	edges := kdb.BuildGraph(x, y, 1)
	assert.Len(t, edges, 2)
	parents := map[int]int{}
	for _, e := range edges {
		assert.NotEqual(t, e.Parent, e.Child)
		parents[e.Child]++
	}
	for _, n := range parents {
		assert.Equal(t, 1, n)
	}
	// feature 0 equals the class, so it ranks first and has no parents
	assert.Zero(t, parents[0])

	assert.Len(t, kdb.BuildGraph(x, y, 2), 3)
}

func TestBuildGraphTiedFeatures(t *testing.T) {
	x := make([][]int, 0, 70)
	y := make([]int, 0, 70)
	for i := 0; i < 70; i++ {
		a := (i * 3) % 7
		x = append(x, []int{a, (a + 3) % 7})
		y = append(y, (i/7)%2)
	}
	a, b := make([]int, len(x)), make([]int, len(x))
	for i, row := range x {
		a[i], b[i] = row[0], row[1]
	}
	mi := kdb.MutualInformation(a, y)
	for i := 0; i < 50; i++ {
		assert.Equal(t, mi, kdb.MutualInformation(a, y))
		assert.Equal(t, mi, kdb.MutualInformation(b, y))
	}

	// equal scores rank the later feature first
	want := []kdb.Edge{{Parent: 1, Child: 0}}
	for i := 0; i < 300; i++ {
		require.Equal(t, want, kdb.BuildGraph(x, y, 1))
	}
}

func TestEncoderIndependentFeatures(t *testing.T) {
	x := [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	y := []int{0, 1, 0, 1}

	encoder := &kdb.HighOrderFeatureEncoder{}
	require.NoError(t, encoder.Fit(x, y, 0))
	assert.Equal(t, []int{2, 2}, encoder.FeatureUniques)
	assert.Equal(t, [][]int{{}, {}}, encoder.Dependencies)
	assert.Equal(t, []int{2, 2}, encoder.Constraints)
	assert.Equal(t, []int{2, 2}, encoder.HighOrderFeatureUniques)
	assert.Equal(t, 4, encoder.Width())

	xs, err := encoder.Transform([][]int{{1, 0}})
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 1, 0}, xs[0].Data)
}

func TestEncoderHaveValues(t *testing.T) {
	x := [][]int{{0, 0}, {1, 1}, {0, 0}, {1, 1}}
	y := []int{0, 1, 0, 1}

	encoder := &kdb.HighOrderFeatureEncoder{}
	require.NoError(t, encoder.Fit(x, y, 1))
	assert.Equal(t, []kdb.Edge{{Parent: 0, Child: 1}}, encoder.Edges)
	assert.Equal(t, [][]int{{}, {0}}, encoder.Dependencies)

	have := encoder.HaveValues[1]
	assert.Equal(t, 2, have.Rows)
	assert.Equal(t, 2, have.Cols)
	assert.Equal(t, []bool{true, false, false, true}, have.Data)
	assert.Equal(t, []int{0, 3}, have.Positions())
	assert.True(t, have.At(1, 1))

	assert.Equal(t, []int{2, 1, 1}, encoder.Constraints)
	assert.Equal(t, []int{2, 2}, encoder.HighOrderFeatureUniques)
	assert.Equal(t, 3, encoder.HighOrderCode([]int{1, 1}, 1))

	xs, err := encoder.Transform([][]int{{1, 1}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0, 1}, xs[0].Data)
	// (0, 1) never occurs, so feature 1's block stays empty
	assert.Equal(t, []float32{1, 0, 0, 0}, xs[1].Data)

	_, err = encoder.Transform([][]int{{0, 5}})
	assert.ErrorIs(t, err, kdb.ErrInvalidData)
}

func TestDataUtils(t *testing.T) {
	x := [][]int{{0, 0}, {1, 1}, {0, 0}, {1, 1}, {0, 0}}
	y := []int{0, 1, 0, 1, 0}

	d, err := kdb.NewDataUtils(x, y)
	require.NoError(t, err)
	assert.Equal(t, 5, d.DataSize)
	assert.Equal(t, 2, d.NumFeatures)
	assert.Equal(t, 2, d.NumClasses)
	assert.Equal(t, []int{2, 2}, d.FeatureUniques)
	assert.Equal(t, []int{3, 2}, d.ClassCounts)
	assert.Nil(t, d.Encoder())
	assert.Nil(t, d.ConstraintPositions())

	xs, err := d.KdbX(1)
	require.NoError(t, err)
	assert.Len(t, xs, 5)
	assert.Equal(t, []int{0, 2, 3, 4}, d.ConstraintPositions())

	again, err := d.KdbX(1)
	require.NoError(t, err)
	assert.Same(t, &xs[0], &again[0])

	ts := d.OneHotY()
	assert.Equal(t, []float32{0, 1}, ts[1].Data)
}

func TestDataUtilsInvalid(t *testing.T) {
	_, err := kdb.NewDataUtils(nil, nil)
	assert.ErrorIs(t, err, kdb.ErrInvalidData)

	_, err = kdb.NewDataUtils([][]int{{0}, {1}}, []int{0})
	assert.ErrorIs(t, err, kdb.ErrInvalidData)

	_, err = kdb.NewDataUtils([][]int{{0}, {-2}}, []int{0, 1})
	assert.ErrorIs(t, err, kdb.ErrInvalidData)

	_, err = kdb.NewDataUtils([][]int{{0, 1}, {1}}, []int{0, 1})
	assert.ErrorIs(t, err, kdb.ErrInvalidData)

	_, err = kdb.NewDataUtils([][]int{{0}, {1}}, []int{0, -1})
	assert.ErrorIs(t, err, kdb.ErrInvalidData)
}

func TestDataUtilsUnobservedCode(t *testing.T) {
	// code 1 of feature 0 and class 1 never occur
	d, err := kdb.NewDataUtils([][]int{{0}, {2}, {2}}, []int{0, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, d.FeatureUniques)
	assert.Equal(t, 3, d.NumClasses)
	assert.Equal(t, []int{1, 0, 2}, d.ClassCounts)

	_, err = d.KdbX(0)
	require.NoError(t, err)
	have := d.Encoder().HaveValues[0]
	assert.Equal(t, []bool{true, false, true}, have.Data)
	assert.Equal(t, []int{2}, d.Encoder().Constraints)
}

func TestAddUniform(t *testing.T) {
	table := mat.NewDense(2, 3, []float64{
		0, 0.2, 0,
		0, 0.8, 1,
	})

	out := kdb.AddUniform(table, 0.0)
	assert.Equal(t, []float64{0.5, 0.5}, mat.Col(nil, 0, out))
	assert.Equal(t, []float64{0.2, 0.8}, mat.Col(nil, 1, out))
	assert.Equal(t, []float64{0, 1}, mat.Col(nil, 2, out))
	assert.Equal(t, 0.0, table.At(0, 0))

	noisy := kdb.AddUniform(table, 0.1)
	assert.InDelta(t, 0.1/1.1, noisy.At(0, 2), 1e-12)
	assert.InDelta(t, 1.0/1.1, noisy.At(1, 2), 1e-12)
}
