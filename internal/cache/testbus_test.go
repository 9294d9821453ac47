package cache_test

import (
	"sort"

	"github.com/sarchlab/cohesim/internal/cache"
	"github.com/sarchlab/cohesim/internal/coherence"
)

// testBus is a minimal Bus that connects a handful of caches for
// end-to-end coherence tests, broadcasting in ascending CPU id order
// the same way the real memory system does.
type testBus struct {
	caches map[int]*cache.Cache
}

func newTestBus() *testBus {
	return &testBus{caches: map[int]*cache.Cache{}}
}

func (b *testBus) add(id int, cfg cache.Config) *cache.Cache {
	c := cache.New(id, b, cfg)
	b.caches[id] = c
	return c
}

func (b *testBus) Broadcast(fromCacheID int, msg coherence.BusMsg, addr uint32) (copiesExist, flushed bool) {
	ids := make([]int, 0, len(b.caches))
	for id := range b.caches {
		if id == fromCacheID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		ce, fl := b.caches[id].ReceiveBusMsg(msg, addr)
		copiesExist = copiesExist || ce
		flushed = flushed || fl
	}
	return copiesExist, flushed
}
