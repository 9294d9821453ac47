// Package replacement implements the line-replacement policies a cache
// can be configured with: least-recently-used, first-in-first-out, and
// random, plus the degenerate DirectMapped policy that a cache with an
// associativity of one always uses, since it only ever has one way to
// choose.
package replacement

// LineStater answers, for a given set and way, whether that line is
// currently allocated (the cache reports a line as allocated whenever
// its coherence state is not Invalid). A policy uses this to prefer an empty way over
// evicting a line that is actually in use.
type LineStater interface {
	IsAllocated(setIdx, wayIdx int) bool
}

// Policy chooses which way within a set to evict next and is told when
// a line is accessed so it can update whatever recency or order it
// tracks.
type Policy interface {
	// GetVictim returns the way (0 to associativity-1) to replace within
	// the given set.
	GetVictim(setIdx int) int

	// Touch notifies the policy that the line in way wayIdx of set
	// setIdx was just accessed.
	Touch(setIdx, wayIdx int)

	// PrintState renders the policy's bookkeeping for one set, in the
	// same order GetVictim would consider its ways.
	PrintState(setIdx int) string
}

// Factory constructs a Policy sized for a cache with the given number
// of sets and associativity, backed by cache for allocation queries.
type Factory func(cache LineStater, numSets, assoc int) Policy
