package randx

import (
	"math/rand/v2"
)

// NewPCG derives both PCG words from seed so a single integer reproduces a run.
func NewPCG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func NewPCGFromEntropy() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Subsample draws floor(frac*n) distinct indices in [0, n) without replacement.
func Subsample(n int, frac float64, rng *rand.Rand) []int {
	m := int(frac * float64(n))
	if m > n {
		m = n
	}
	return rng.Perm(n)[:m]
}
