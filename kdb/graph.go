package kdb

import (
	"slices"
	"sort"
)

// Edge is a feature-to-feature dependency. The class is a parent of every
// feature and is not listed.
type Edge struct {
	Parent int
	Child  int
}

func column(x [][]int, j int) []int {
	col := make([]int, len(x))
	for i, row := range x {
		col[i] = row[j]
	}
	return col
}

// argsortDesc orders idxs by score, highest first. Tied entries come out in
// reverse input order.
func argsortDesc(idxs []int, score func(int) float64) []int {
	sorted := slices.Clone(idxs)
	scores := make(map[int]float64, len(idxs))
	for _, idx := range idxs {
		scores[idx] = score(idx)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return scores[sorted[i]] < scores[sorted[j]]
	})
	slices.Reverse(sorted)
	return sorted
}

// BuildGraph learns a k-dependency Bayesian network structure. Features are
// ranked by I(X; Y). The i-th ranked feature gets every earlier feature as a
// parent while i <= k, and afterwards the k earlier features with the
// largest I(Xp; Xi | Y).
func BuildGraph(x [][]int, y []int, k int) []Edge {
	if len(x) == 0 {
		return nil
	}
	numFeatures := len(x[0])
	cols := make([][]int, numFeatures)
	features := make([]int, numFeatures)
	for j := range cols {
		cols[j] = column(x, j)
		features[j] = j
	}

	ranked := argsortDesc(features, func(j int) float64 {
		return MutualInformation(cols[j], y)
	})

	edges := make([]Edge, 0)
	for iter, target := range ranked {
		candidates := ranked[:iter]
		var parents []int
		if iter <= k {
			parents = candidates
		} else {
			byCMI := argsortDesc(candidates, func(p int) float64 {
				return ConditionalMutualInformation(cols[p], cols[target], y)
			})
			parents = byCMI[:k]
		}
		for _, p := range parents {
			edges = append(edges, Edge{Parent: p, Child: target})
		}
	}
	return edges
}
