package replacement

import (
	"fmt"
	"strings"
)

// LRU evicts the least recently used way in a set, preferring an
// unallocated way outright so a cold miss never displaces live data.
// Recency is tracked per set as a queue of way indices ordered oldest
// (front) to most recently touched (back), the same shape as a cache
// directory's per-set LRU queue: touching a way removes it from wherever
// it sits and appends it to the back.
type LRU struct {
	cache LineStater
	assoc int
	queue [][]int
}

// NewLRU returns an LRU policy for a cache of the given shape.
func NewLRU(cache LineStater, numSets, assoc int) Policy {
	queue := make([][]int, numSets)
	for i := range queue {
		queue[i] = make([]int, assoc)
		for w := 0; w < assoc; w++ {
			queue[i][w] = w
		}
	}
	return &LRU{cache: cache, assoc: assoc, queue: queue}
}

// GetVictim returns the first unallocated way in queue order, or else
// the way at the front of the queue: the least recently touched.
func (p *LRU) GetVictim(setIdx int) int {
	queue := p.queue[setIdx]
	for _, way := range queue {
		if !p.cache.IsAllocated(setIdx, way) {
			return way
		}
	}
	return queue[0]
}

// Touch moves wayIdx to the back of its set's queue.
func (p *LRU) Touch(setIdx, wayIdx int) {
	queue := p.queue[setIdx]
	next := make([]int, 0, len(queue))
	for _, way := range queue {
		if way != wayIdx {
			next = append(next, way)
		}
	}
	p.queue[setIdx] = append(next, wayIdx)
}

// PrintState renders the queue for one set, front (least recently
// used) to back, the same order GetVictim considers its ways.
func (p *LRU) PrintState(setIdx int) string {
	queue := p.queue[setIdx]
	var b strings.Builder
	for i, way := range queue {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", way)
	}
	return b.String()
}
