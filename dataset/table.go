// Package dataset reads categorical tables from CSV, ordinal-encodes them
// for training and writes synthetic rows back out.
package dataset

import (
	"math/rand/v2"
	"slices"

	"github.com/pkg/errors"
)

var ErrUnknownCategory = errors.New("dataset: unknown category")

// OrdinalEncoder maps the sorted distinct values of a column to 0..n-1.
type OrdinalEncoder struct {
	Categories []string
}

func FitOrdinalEncoder(values []string) OrdinalEncoder {
	categories := slices.Clone(values)
	slices.Sort(categories)
	return OrdinalEncoder{Categories: slices.Compact(categories)}
}

func (e OrdinalEncoder) Encode(value string) (int, error) {
	code, ok := slices.BinarySearch(e.Categories, value)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownCategory, "%q", value)
	}
	return code, nil
}

func (e OrdinalEncoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.Categories) {
		return "", errors.Wrapf(ErrUnknownCategory, "code %d of %d", code, len(e.Categories))
	}
	return e.Categories[code], nil
}

// Table is an ordinal-encoded dataset. FeatureNames and Encoders follow the
// column order of X.
type Table struct {
	FeatureNames []string
	ClassName    string
	Encoders     []OrdinalEncoder
	ClassEncoder OrdinalEncoder
	X            [][]int
	Y            []int
}

// Header returns the feature names followed by the class name.
func (t Table) Header() []string {
	return append(slices.Clone(t.FeatureNames), t.ClassName)
}

// Decode maps encoded rows back to strings, class value last.
func (t Table) Decode(x [][]int, y []int) ([][]string, error) {
	if len(x) != len(y) {
		return nil, errors.Errorf("dataset: %d rows but %d labels", len(x), len(y))
	}
	records := make([][]string, len(x))
	for i, row := range x {
		if len(row) != len(t.Encoders) {
			return nil, errors.Errorf("dataset: row %d has %d features, want %d", i, len(row), len(t.Encoders))
		}
		record := make([]string, len(row)+1)
		for j, code := range row {
			v, err := t.Encoders[j].Decode(code)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d column %s", i, t.FeatureNames[j])
			}
			record[j] = v
		}
		v, err := t.ClassEncoder.Decode(y[i])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d column %s", i, t.ClassName)
		}
		record[len(row)] = v
		records[i] = record
	}
	return records, nil
}

// Split shuffles the rows and moves floor(testFrac*n) of them into the test
// table. Both tables share the encoders.
func (t Table) Split(testFrac float64, rng *rand.Rand) (Table, Table, error) {
	if testFrac < 0 || testFrac >= 1 {
		return Table{}, Table{}, errors.Errorf("dataset: test fraction must be in [0, 1), got %g", testFrac)
	}
	n := len(t.X)
	idxs := rng.Perm(n)
	nTest := int(testFrac * float64(n))

	subset := func(idxs []int) Table {
		sub := t
		sub.X = make([][]int, len(idxs))
		sub.Y = make([]int, len(idxs))
		for i, idx := range idxs {
			sub.X[i] = t.X[idx]
			sub.Y[i] = t.Y[idx]
		}
		return sub
	}
	return subset(idxs[nTest:]), subset(idxs[:nTest]), nil
}
