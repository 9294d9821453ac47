// Package cache implements a single L1 cache: address decoding, the
// line array, wiring a coherence protocol and a replacement policy
// together, and the bookkeeping statistics the rest of the simulator
// reports on.
package cache

import (
	"math/bits"

	"github.com/sarchlab/cohesim/internal/cacheline"
	"github.com/sarchlab/cohesim/internal/coherence"
	"github.com/sarchlab/cohesim/internal/replacement"
)

// Bus is the capability a cache holds back to its memory system: issue
// a message to every sibling cache and learn whether any of them held
// a copy, or flushed one, in response. It is deliberately narrow so
// that cache unit tests can substitute a fake.
type Bus interface {
	Broadcast(fromCacheID int, msg coherence.BusMsg, addr uint32) (copiesExist, flushed bool)
}

// Config describes the shape and policy factories of one cache within
// a memory system. All size fields are byte counts; Associativity of 1
// always pairs with a direct-mapped degenerate replacement policy
// regardless of what ReplacerFactory would otherwise build, the same
// "proverbial none" special case the reference cache hard-codes.
type Config struct {
	CacheSize        uint32
	LineSize         uint32
	Associativity    uint32
	ProtocolFactory  coherence.Factory
	ReplacerFactory  replacement.Factory
}

// Cache is one processor's private L1 cache: a line array addressed by
// (set, way), a coherence protocol instance, and a replacement policy
// instance. It never owns the bus; that back-reference is a capability
// interface, per the memory system's lazy-construction contract.
type Cache struct {
	id   int
	bus  Bus
	prot coherence.Protocol
	rep  replacement.Policy

	lines []cacheline.Line

	numSets       uint32
	lineOffset    uint32
	tagOffset     uint32
	associativity uint32

	stats Stats

	currAddr uint32
}

// New constructs a cache of the given id within a memory system, wired
// to bus for broadcasting. Every line starts Invalid with an
// all-ones tag, so it never spuriously matches address 0's tag.
func New(id int, bus Bus, cfg Config) *Cache {
	numLines := cfg.CacheSize / cfg.LineSize
	numSets := numLines / cfg.Associativity

	lines := make([]cacheline.Line, numLines)
	for i := range lines {
		lines[i] = cacheline.Line{Tag: ^cacheline.Tag(0), State: cacheline.Invalid}
	}

	c := &Cache{
		id:            id,
		bus:           bus,
		prot:          cfg.ProtocolFactory(),
		lines:         lines,
		numSets:       numSets,
		lineOffset:    uint32(bits.TrailingZeros32(cfg.LineSize)),
		tagOffset:     uint32(bits.TrailingZeros32(cfg.CacheSize / cfg.Associativity)),
		associativity: cfg.Associativity,
	}

	if cfg.Associativity == 1 {
		c.rep = replacement.NewDirectMapped(c, int(numSets), int(cfg.Associativity))
	} else {
		c.rep = cfg.ReplacerFactory(c, int(numSets), int(cfg.Associativity))
	}

	return c
}

// ID returns the CPU id this cache belongs to.
func (c *Cache) ID() int { return c.id }

// ReceivePrRd handles a processor read of addr: look up or allocate the
// line, invoke the protocol, account for a miss and a state change,
// and notify the replacement policy.
func (c *Cache) ReceivePrRd(addr uint32) {
	c.currAddr = addr
	c.stats[coherence.ProcRead]++

	idx, ok := c.findLine(addr)
	if !ok {
		idx = c.allocate(addr)
	}
	line := &c.lines[idx]
	if line.State == cacheline.Invalid {
		c.stats[ReadMiss]++
	}

	before := line.State
	c.prot.OnPrRd(c, line)
	c.stateChangeStatistic(before, line.State)

	c.touch(idx)
}

// ReceivePrWr handles a processor write of addr. Write-no-allocate
// protocols never materialise a line on a miss, and every write under
// them, hit or miss, counts a direct memory write.
func (c *Cache) ReceivePrWr(addr uint32) {
	c.currAddr = addr
	c.stats[coherence.ProcWrite]++

	idx, found := c.findLine(addr)

	if c.prot.DoesWriteNoAllocate() {
		c.stats[WriteMemory]++
		if !found || c.lines[idx].State == cacheline.Invalid {
			c.stats[WriteMiss]++
		}
	} else {
		if !found {
			idx = c.allocate(addr)
			found = true
		}
		if c.lines[idx].State == cacheline.Invalid {
			c.stats[WriteMiss]++
		}
	}

	var line *cacheline.Line
	var before cacheline.State
	if found {
		line = &c.lines[idx]
		before = line.State
	}
	c.prot.OnPrWr(c, line)
	if line != nil {
		c.stateChangeStatistic(before, line.State)
		if line.State != cacheline.Invalid {
			c.touch(idx)
		}
	}
}

// IssueBusMsg implements coherence.BusIssuer: it broadcasts msg for the
// address currently being accessed, classifies a BusRead/BusReadX miss
// as a cache-to-cache transfer or a line fetch from memory depending on
// whether any sibling flushed, and returns the aggregated
// copies-exist signal.
func (c *Cache) IssueBusMsg(msg coherence.BusMsg) bool {
	copiesExist, flushed := c.bus.Broadcast(c.id, msg, c.currAddr)

	switch msg {
	case coherence.BusRead, coherence.BusReadX:
		if flushed {
			c.stats[CacheToCache]++
		} else {
			c.stats[LineFetch]++
		}
	case coherence.BusUpdate, coherence.BusUpgrade, coherence.BusWrite:
		// No fetch-source classification for these.
	default:
		return false
	}

	c.stats[msg]++
	return copiesExist
}

// ReceiveBusMsg handles a snooped bus message for addr, dispatching to
// the protocol and reporting whether this cache held a valid copy and
// whether it flushed its data in response.
func (c *Cache) ReceiveBusMsg(msg coherence.BusMsg, addr uint32) (copiesExist, flushed bool) {
	idx, ok := c.findLine(addr)
	if !ok || c.lines[idx].State == cacheline.Invalid {
		return false, false
	}
	line := &c.lines[idx]
	copiesExist = true

	before := line.State
	switch msg {
	case coherence.BusRead:
		flushed = c.prot.OnBusRd(line)
		if flushed {
			if !c.prot.DoesDirtySharing() && c.prot.IsWriteBackNeeded(before) {
				c.stats[WriteBack]++
			}
			c.stats[LineFlush]++
		}
	case coherence.BusReadX:
		flushed = c.prot.OnBusRdX(line)
		if flushed {
			c.stats[LineFlush]++
		}
	case coherence.BusUpdate:
		flushed = c.prot.OnBusUpdt(line)
		if flushed {
			c.stats[LineFlush]++
		}
	case coherence.BusUpgrade:
		flushed = c.prot.OnBusUpgr(line)
		if flushed {
			c.stats[LineFlush]++
		}
	case coherence.BusWrite:
		flushed = c.prot.OnBusWr(line)
		if flushed {
			c.stats[LineFlush]++
		}
	default:
		return copiesExist, false
	}
	c.stateChangeStatistic(before, line.State)

	return copiesExist, flushed
}

// IsAllocated implements replacement.LineStater: a way is allocated iff
// its line is not Invalid.
func (c *Cache) IsAllocated(setIdx, wayIdx int) bool {
	return c.lines[uint32(setIdx)*c.associativity+uint32(wayIdx)].State != cacheline.Invalid
}

// GetLineState returns the state of one line, addressed by set and
// way, for diagnostics and property tests.
func (c *Cache) GetLineState(setIdx, wayIdx int) cacheline.State {
	return c.lines[uint32(setIdx)*c.associativity+uint32(wayIdx)].State
}

// LineStateForAddr reports the state this cache currently holds for
// addr, if any, for property tests and diagnostics. Unlike findLine's
// tag-only match, it also requires a valid state, so an Invalid line
// whose leftover tag still matches addr is reported as absent.
func (c *Cache) LineStateForAddr(addr uint32) (cacheline.State, bool) {
	idx, ok := c.findLine(addr)
	if !ok || c.lines[idx].State == cacheline.Invalid {
		return cacheline.Invalid, false
	}
	return c.lines[idx].State, true
}

// Stats returns a snapshot of this cache's running statistics.
func (c *Cache) Stats() Stats { return c.stats }

func (c *Cache) touch(idx uint32) {
	c.rep.Touch(int(idx/c.associativity), int(idx%c.associativity))
}

// stateChangeStatistic counts the three cross-cutting coherence
// statistics derivable purely from a line's (before, after) states.
func (c *Cache) stateChangeStatistic(before, after cacheline.State) {
	switch {
	case before == cacheline.Invalid:
		return
	case after == cacheline.Invalid:
		c.stats[Invalidation]++
	case before.IsSingular() && after.IsShared():
		c.stats[Intervention]++
	case before.IsShared() && after.IsSingular():
		c.stats[Exclusion]++
	}
}

// allocate chooses a victim way in addr's set via the replacement
// policy, evicts it (counting Eviction and, if the protocol demands a
// writeback for the victim's prior state, WriteBack and LineFlush),
// and resets it to addr's tag in the Invalid state. The protocol is
// responsible for promoting it out of Invalid. Returns the victim's
// absolute line index.
func (c *Cache) allocate(addr uint32) uint32 {
	setIdx := (addr >> c.lineOffset) % c.numSets
	way := c.rep.GetVictim(int(setIdx))
	idx := setIdx*c.associativity + uint32(way)

	victim := &c.lines[idx]
	if victim.State != cacheline.Invalid {
		c.stats[Eviction]++
		if c.prot.IsWriteBackNeeded(victim.State) {
			c.stats[LineFlush]++
			c.stats[WriteBack]++
		}
	}

	victim.Tag = cacheline.Tag(addr >> c.tagOffset)
	victim.State = cacheline.Invalid
	return idx
}

// findLine returns the index of the line in addr's set whose tag
// matches, or ok=false. Matching is by tag alone, independent of the
// line's validity: a just-evicted line with a stale tag equal to
// addr's tag still "finds" a hit here, the same as the reference
// cache's findLine.
func (c *Cache) findLine(addr uint32) (idx uint32, ok bool) {
	tag := cacheline.Tag(addr >> c.tagOffset)
	start := ((addr >> c.lineOffset) % c.numSets) * c.associativity
	for i := uint32(0); i < c.associativity; i++ {
		if c.lines[start+i].Tag == tag {
			return start + i, true
		}
	}
	return 0, false
}
