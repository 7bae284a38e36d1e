package analytics

import (
	"math/rand/v2"

	"amtkcli/internal/frame"
)

// Sample draws n rows without replacement using a generator seeded with
// seed, so the same seed always selects the same rows. n <= 0 or n >= the
// row count returns every row in shuffled order.
func Sample(f *frame.Frame, n int, seed int64) *frame.Frame {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	perm := rng.Perm(f.Len())
	if n > 0 && n < len(perm) {
		perm = perm[:n]
	}
	return f.Take(perm)
}
