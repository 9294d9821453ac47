package replacement

import (
	"fmt"
	"math/rand"
)

// Random evicts a uniformly random way in the target set. It is seeded
// from the cache's shape alone, so two caches of identical dimensions
// produce identical eviction sequences given identical access
// patterns, which keeps runs reproducible.
type Random struct {
	assoc int
	rng   *rand.Rand
}

// NewRandom returns a random-replacement policy for a cache of the
// given shape.
func NewRandom(cache LineStater, numSets, assoc int) Policy {
	seed := int64(numSets * assoc)
	return &Random{assoc: assoc, rng: rand.New(rand.NewSource(seed))}
}

// GetVictim returns a uniformly random way within the set.
func (p *Random) GetVictim(setIdx int) int {
	return p.rng.Intn(p.assoc)
}

// Touch is a no-op; random replacement does not track recency of use.
func (p *Random) Touch(setIdx, wayIdx int) {}

// PrintState has nothing stable to report for a random policy.
func (p *Random) PrintState(setIdx int) string {
	return fmt.Sprintf("<random, %d ways>", p.assoc)
}
