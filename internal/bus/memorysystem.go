// Package bus implements the shared snoopy bus that connects every L1
// cache in one configuration: lazy per-CPU cache creation, ascending-
// CPU-id broadcast order, and the optional write-timestamp
// verification used by the debug build.
package bus

import (
	"sort"

	"github.com/sarchlab/cohesim/internal/cache"
	"github.com/sarchlab/cohesim/internal/cacheline"
	"github.com/sarchlab/cohesim/internal/coherence"
	"github.com/sarchlab/cohesim/internal/diagnostics"
	"github.com/sarchlab/cohesim/internal/replacement"
)

// maxCaches mirrors the trace format's 7-bit CPU id field: a cache id
// can never be observed outside [0, maxCaches).
const maxCaches = 128

// Config is the shared shape and policy choice every cache lazily
// created by one MemorySystem is built with.
type Config struct {
	CacheSize       uint32
	LineSize        uint32
	Associativity   uint32
	ProtocolFactory coherence.Factory
	ReplacerFactory replacement.Factory
}

// MemorySystem owns a sparse array of caches, indexed by CPU id, and
// mediates every bus transaction between them. Caches are created the
// first time their CPU id appears in a trace, so a configuration whose
// trace only ever touches a handful of ids never allocates the rest.
type MemorySystem struct {
	cfg    Config
	caches [maxCaches]*cache.Cache

	debugTimestamps bool
	accessNum       uint64
}

// New returns a memory system ready to lazily build caches per cfg.
func New(cfg Config) *MemorySystem {
	return &MemorySystem{cfg: cfg}
}

// EnableTimestampVerification turns on the optional debug-build
// discrepancy check: every write-bearing bus transition stamps the
// affected line, and every access is followed by a cross-cache
// consistency assertion reported through internal/diagnostics.
func (m *MemorySystem) EnableTimestampVerification() {
	m.debugTimestamps = true
}

// IssuePrRd dispatches a processor read of addr from cpuID, lazily
// constructing that cache if this is its first appearance.
func (m *MemorySystem) IssuePrRd(cpuID int, addr uint32) {
	m.accessNum++
	c := m.cacheFor(cpuID)

	missesBefore := c.Stats()[cache.ReadMiss]
	c.ReceivePrRd(addr)

	if m.debugTimestamps {
		if c.Stats()[cache.ReadMiss] != missesBefore {
			// A fresh copy was just birthed: inherit the most recent
			// sibling timestamp if one exists, otherwise this access.
			ts := m.accessNum
			if sibling, ok := m.maxSiblingTimestamp(cpuID, addr); ok {
				ts = sibling
			}
			c.StampTimestamp(addr, ts)
		}
		m.stampAndVerify(false, addr)
	}
}

// IssuePrWr dispatches a processor write of addr from cpuID, lazily
// constructing that cache if this is its first appearance.
func (m *MemorySystem) IssuePrWr(cpuID int, addr uint32) {
	m.accessNum++
	c := m.cacheFor(cpuID)
	c.ReceivePrWr(addr)
	if m.debugTimestamps {
		c.StampTimestamp(addr, m.accessNum)
		m.stampAndVerify(true, addr)
	}
}

// maxSiblingTimestamp returns the highest write timestamp any cache
// other than cpuID currently reports for addr.
func (m *MemorySystem) maxSiblingTimestamp(cpuID int, addr uint32) (uint64, bool) {
	var max uint64
	found := false
	for _, id := range m.constructedIDsAscending() {
		if id == cpuID {
			continue
		}
		ts, ok := m.caches[id].Timestamp(addr)
		if !ok {
			continue
		}
		found = true
		if ts > max {
			max = ts
		}
	}
	return max, found
}

// Broadcast implements cache.Bus: it resets nothing itself (each
// snoop's contribution is returned, not mutated through a shared
// flag), dispatches msg to every other constructed cache in ascending
// CPU id order, and ORs their reported copies-exist/flushed signals
// for the initiator.
func (m *MemorySystem) Broadcast(fromCacheID int, msg coherence.BusMsg, addr uint32) (copiesExist, flushed bool) {
	for _, id := range m.constructedIDsAscending() {
		if id == fromCacheID {
			continue
		}
		sibling := m.caches[id]
		ce, fl := sibling.ReceiveBusMsg(msg, addr)
		copiesExist = copiesExist || ce
		flushed = flushed || fl

		if m.debugTimestamps && msg == coherence.BusUpdate && ce {
			sibling.StampTimestamp(addr, m.accessNum)
		}
	}
	return copiesExist, flushed
}

// PrintStats calls fn once for every cache that has observed at least
// one access, in ascending CPU id order, mirroring the reference
// implementation's skip-if-unused CSV emission.
func (m *MemorySystem) PrintStats(fn func(cpuID int, stats cache.Stats)) {
	for _, id := range m.constructedIDsAscending() {
		stats := m.caches[id].Stats()
		if stats.Accessed() {
			fn(id, stats)
		}
	}
}

// LineStateFor reports the state cpuID's cache currently holds for
// addr, for property tests and diagnostics. It never lazily constructs
// a cache as a side effect of inspection: a CPU id that has never
// issued an access reports ok=false.
func (m *MemorySystem) LineStateFor(cpuID int, addr uint32) (cacheline.State, bool) {
	c := m.caches[cpuID]
	if c == nil {
		return cacheline.Invalid, false
	}
	return c.LineStateForAddr(addr)
}

func (m *MemorySystem) cacheFor(cpuID int) *cache.Cache {
	if m.caches[cpuID] == nil {
		m.caches[cpuID] = cache.New(cpuID, m, cache.Config{
			CacheSize:       m.cfg.CacheSize,
			LineSize:        m.cfg.LineSize,
			Associativity:   m.cfg.Associativity,
			ProtocolFactory: m.cfg.ProtocolFactory,
			ReplacerFactory: m.cfg.ReplacerFactory,
		})
	}
	return m.caches[cpuID]
}

func (m *MemorySystem) constructedIDsAscending() []int {
	ids := make([]int, 0, maxCaches)
	for id, c := range m.caches {
		if c != nil {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// stampAndVerify checks, after one processor access to addr from c,
// whether every currently valid copy of the block agrees with the
// maximum timestamp observed across all constructed caches. Per the
// resolved ambiguity in spec.md §9, a discrepancy is raised the moment
// any valid copy sits strictly below that maximum, not only when two
// copies disagree pairwise.
func (m *MemorySystem) stampAndVerify(write bool, addr uint32) {
	type observed struct {
		id int
		ts uint64
	}
	var all []observed
	var maxTS uint64
	for _, id := range m.constructedIDsAscending() {
		ts, ok := m.caches[id].Timestamp(addr)
		if !ok {
			continue
		}
		all = append(all, observed{id, ts})
		if ts > maxTS {
			maxTS = ts
		}
	}

	var stale []int
	for _, o := range all {
		if o.ts < maxTS {
			stale = append(stale, o.id)
		}
	}

	diagnostics.ReportTimestampDiscrepancy(write, addr, m.accessNum, maxTS, stale)
}
