package dataset

import (
	"math/rand/v2"

	"gitlab.com/zephyrtronium/pick"
)

// regimes weights the kinds of values random datasets draw from. Mixing
// magnitudes and a heavy dose of repeats gives the scanner ties and long
// monotonic runs to chew on.
var regimes = pick.New([]pick.Case[func(*rand.Rand) int64]{
	{E: func(rng *rand.Rand) int64 { return rng.Int64N(21) - 10 }, W: 5},
	{E: func(rng *rand.Rand) int64 { return rng.Int64N(1 << 31) }, W: 2},
	{E: func(rng *rand.Rand) int64 { return -rng.Int64N(1 << 31) }, W: 2},
	{E: func(rng *rand.Rand) int64 { return 0 }, W: 1},
})

// Generate creates a random dataset of n values to be scanned with a k-wide
// window. It does not validate n and k; the scanner does.
func Generate(n, k int, rng *rand.Rand) *Dataset {
	vals := make([]int64, n)
	for i := range vals {
		vals[i] = regimes.Pick(rng.Uint32())(rng)
	}
	return &Dataset{K: k, Values: vals}
}
