package kdb

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// jointEntropy is the Shannon entropy (nats) of the empirical joint
// distribution of the given columns. Counts are summed in ascending order so
// relabelling a column never changes the result.
func jointEntropy(cols ...[]int) float64 {
	if len(cols) == 0 || len(cols[0]) == 0 {
		return 0.0
	}
	n := len(cols[0])
	counts := map[[3]int]int{}
	for i := 0; i < n; i++ {
		var key [3]int
		for j, col := range cols {
			key[j] = col[i]
		}
		counts[key]++
	}

	cs := make([]int, 0, len(counts))
	for _, c := range counts {
		cs = append(cs, c)
	}
	slices.Sort(cs)

	p := make([]float64, len(cs))
	for i, c := range cs {
		p[i] = float64(c) / float64(n)
	}
	return stat.Entropy(p)
}

// MutualInformation returns I(a; b) in nats.
func MutualInformation(a, b []int) float64 {
	return jointEntropy(a) + jointEntropy(b) - jointEntropy(a, b)
}

// ConditionalMutualInformation returns I(a; b | c) in nats.
func ConditionalMutualInformation(a, b, c []int) float64 {
	return jointEntropy(a, c) + jointEntropy(b, c) - jointEntropy(a, b, c) - jointEntropy(c)
}
