package dataset_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw965/ganblr/dataset"
	"github.com/sw965/ganblr/mathx/randx"
)

const adultLike = `age, workclass, income
young, private, <=50K
old, gov, >50K
young, gov, <=50K
mid, private, >50K
`

func TestReadCSV(t *testing.T) {
	table, err := dataset.ReadCSV(strings.NewReader(adultLike), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "workclass"}, table.FeatureNames)
	assert.Equal(t, "income", table.ClassName)
	assert.Equal(t, []string{"mid", "old", "young"}, table.Encoders[0].Categories)
	assert.Equal(t, [][]int{{2, 1}, {1, 0}, {2, 0}, {0, 1}}, table.X)
	assert.Equal(t, []int{0, 1, 0, 1}, table.Y)
	assert.Equal(t, []string{"age", "workclass", "income"}, table.Header())

	byName, err := dataset.ReadCSV(strings.NewReader(adultLike), "age")
	require.NoError(t, err)
	assert.Equal(t, []string{"workclass", "income"}, byName.FeatureNames)
	assert.Equal(t, []int{2, 1, 2, 0}, byName.Y)

	_, err = dataset.ReadCSV(strings.NewReader(adultLike), "salary")
	assert.Error(t, err)
	_, err = dataset.ReadCSV(strings.NewReader("a,b\n"), "")
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	table, err := dataset.ReadCSV(strings.NewReader(adultLike), "")
	require.NoError(t, err)

	records, err := table.Decode(table.X, table.Y)
	require.NoError(t, err)
	assert.Equal(t, []string{"young", "private", "<=50K"}, records[0])

	_, err = table.Decode([][]int{{5, 0}}, []int{0})
	assert.ErrorIs(t, err, dataset.ErrUnknownCategory)
	_, err = table.Decode([][]int{{0, 0}}, nil)
	assert.Error(t, err)
}

func TestOrdinalEncoder(t *testing.T) {
	enc := dataset.FitOrdinalEncoder([]string{"b", "a", "b", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, enc.Categories)

	code, err := enc.Encode("c")
	require.NoError(t, err)
	assert.Equal(t, 2, code)
	_, err = enc.Encode("z")
	assert.ErrorIs(t, err, dataset.ErrUnknownCategory)

	v, err := enc.Decode(1)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestWriteAndLoadCSV(t *testing.T) {
	table, err := dataset.ReadCSV(strings.NewReader(adultLike), "")
	require.NoError(t, err)
	records, err := table.Decode(table.X, table.Y)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, dataset.WriteCSV(path, table.Header(), records))

	loaded, err := dataset.LoadCSV(path, "income")
	require.NoError(t, err)
	assert.Equal(t, table.X, loaded.X)
	assert.Equal(t, table.Y, loaded.Y)

	_, err = dataset.LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), "")
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	table, err := dataset.ReadCSV(strings.NewReader(adultLike), "")
	require.NoError(t, err)

	train, test, err := table.Split(0.5, randx.NewPCG(1))
	require.NoError(t, err)
	assert.Len(t, train.X, 2)
	assert.Len(t, test.X, 2)
	assert.Len(t, test.Y, 2)
	assert.Equal(t, table.Encoders, train.Encoders)

	_, _, err = table.Split(1.0, randx.NewPCG(1))
	assert.Error(t, err)
}

func TestFetchUsesCachedFile(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "adult.csv")
	require.NoError(t, os.WriteFile(local, []byte(adultLike), 0644))

	// the file is already there, so nothing is downloaded
	got, err := dataset.Fetch("http://127.0.0.1:1/data/adult.csv", dir)
	require.NoError(t, err)
	assert.Equal(t, local, got)

	assert.True(t, dataset.IsURL("https://example.org/a.csv"))
	assert.False(t, dataset.IsURL("data/a.csv"))
}
