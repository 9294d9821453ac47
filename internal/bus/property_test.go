package bus_test

import (
	"fmt"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cohesim/internal/bus"
	"github.com/sarchlab/cohesim/internal/cache"
	"github.com/sarchlab/cohesim/internal/coherence"
	"github.com/sarchlab/cohesim/internal/replacement"
)

// randomTraceConfig builds a small, eviction-prone memory system for
// name so a randomized trace exercises replacement as well as
// coherence transitions.
func randomTraceConfig(name string) bus.Config {
	factory, ok := coherence.Lookup(name)
	Expect(ok).To(BeTrue(), name)
	return bus.Config{
		CacheSize:       32,
		LineSize:        4,
		Associativity:   2,
		ProtocolFactory: factory,
		ReplacerFactory: replacement.NewLRU,
	}
}

// runRandomTrace drives numCPUs caches through numSteps random
// processor accesses over a handful of addresses, checking two
// invariants after every single step: single-cache isolation (an
// access on one CPU id never perturbs another cache's own counters)
// and unique dirty ownership (at most one cache in the whole bus is
// ever simultaneously responsible for writing an address back).
func runRandomTrace(protocolName string, seed int64, numCPUs, numAddrs, numSteps int) {
	rng := rand.New(rand.NewSource(seed))
	m := bus.New(randomTraceConfig(protocolName))
	checkProt, _ := coherence.Lookup(protocolName)
	prot := checkProt()

	addrs := make([]uint32, numAddrs)
	for i := range addrs {
		addrs[i] = uint32(i) * 4
	}

	issuedReads := make([]uint64, numCPUs)
	issuedWrites := make([]uint64, numCPUs)

	for step := 0; step < numSteps; step++ {
		cpuID := rng.Intn(numCPUs)
		addr := addrs[rng.Intn(numAddrs)]

		if rng.Intn(2) == 0 {
			m.IssuePrRd(cpuID, addr)
			issuedReads[cpuID]++
		} else {
			m.IssuePrWr(cpuID, addr)
			issuedWrites[cpuID]++
		}

		for id := 0; id < numCPUs; id++ {
			stats, ok := statsIfConstructed(m, id)
			if !ok {
				Expect(issuedReads[id] + issuedWrites[id]).To(BeZero())
				continue
			}
			Expect(stats[coherence.ProcRead]).To(Equal(issuedReads[id]),
				"cpu %d ProcRead diverged from what was issued to it at step %d", id, step)
			Expect(stats[coherence.ProcWrite]).To(Equal(issuedWrites[id]),
				"cpu %d ProcWrite diverged from what was issued to it at step %d", id, step)
		}

		for _, a := range addrs {
			owners := 0
			for id := 0; id < numCPUs; id++ {
				state, ok := m.LineStateFor(id, a)
				if ok && prot.IsWriteBackNeeded(state) {
					owners++
				}
			}
			Expect(owners).To(BeNumerically("<=", 1),
				"more than one cache owns dirty data for addr %#x after step %d", a, step)
		}
	}
}

// statsIfConstructed reports cpuID's stats through PrintStats, which
// never lazily creates a cache and only enumerates ids that have seen
// an access; ok is false for an id that was never touched.
func statsIfConstructed(m *bus.MemorySystem, cpuID int) (cache.Stats, bool) {
	var found cache.Stats
	ok := false
	m.PrintStats(func(id int, stats cache.Stats) {
		if id == cpuID {
			found = stats
			ok = true
		}
	})
	return found, ok
}

var _ = Describe("MemorySystem properties", func() {
	for _, name := range coherence.Names() {
		name := name
		It(fmt.Sprintf("preserves isolation and unique dirty ownership under a random %s trace", name), func() {
			for seed := int64(1); seed <= 5; seed++ {
				runRandomTrace(name, seed, 4, 6, 300)
			}
		})
	}
})
