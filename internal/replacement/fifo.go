package replacement

import (
	"fmt"
	"strings"
)

// FIFO evicts ways in the order they were originally filled, cycling
// through a set's ways regardless of any later access. Touch is a
// no-op: recency plays no part in this policy.
type FIFO struct {
	assoc  int
	upNext []int
}

// NewFIFO returns a FIFO policy for a cache of the given shape.
func NewFIFO(cache LineStater, numSets, assoc int) Policy {
	return &FIFO{assoc: assoc, upNext: make([]int, numSets)}
}

// GetVictim returns the next way due for replacement and advances the
// set's cursor.
func (p *FIFO) GetVictim(setIdx int) int {
	next := p.upNext[setIdx]
	p.upNext[setIdx] = (next + 1) % p.assoc
	return next
}

// Touch is a no-op; FIFO does not track recency of use.
func (p *FIFO) Touch(setIdx, wayIdx int) {}

// PrintState renders the eviction order for one set starting from the
// way that is next up.
func (p *FIFO) PrintState(setIdx int) string {
	next := p.upNext[setIdx]
	var b strings.Builder
	fmt.Fprintf(&b, "%d", next)
	for i := 1; i < p.assoc; i++ {
		fmt.Fprintf(&b, " %d", (next+i)%p.assoc)
	}
	return b.String()
}
