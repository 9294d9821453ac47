// Package coherence implements the per-protocol finite state machines
// that decide how a single cache line reacts to processor requests and
// snooped bus messages. Each protocol is a tagged-sum variant with an
// exhaustive switch over cacheline.State, per the DESIGN NOTES in
// spec.md §9 — there is no global virtual-dispatch table.
package coherence

import (
	"github.com/sarchlab/cohesim/internal/cacheline"
)

// BusMsg identifies a message carried on the snoopy bus, or (for
// ProcRead/ProcWrite) a processor request. The numeric values match the
// CSV statistic order of spec.md §6.
type BusMsg int

const (
	ProcRead BusMsg = iota
	ProcWrite
	BusRead
	BusReadX
	BusUpdate
	BusUpgrade
	BusWrite
)

func (m BusMsg) String() string {
	switch m {
	case ProcRead:
		return "PrRd"
	case ProcWrite:
		return "PrWr"
	case BusRead:
		return "BusRd"
	case BusReadX:
		return "BusRdX"
	case BusUpdate:
		return "BusUpdt"
	case BusUpgrade:
		return "BusUpgr"
	case BusWrite:
		return "BusWr"
	default:
		return "?"
	}
}

// BusIssuer is the capability a protocol holds back to its owning cache.
// It is deliberately narrow — issue a bus message, nothing else — so
// that protocol unit tests can substitute a mock without dragging in a
// whole Cache.
type BusIssuer interface {
	// IssueBusMsg broadcasts msg to every sibling cache and returns
	// whether any of them reported a valid copy of the block.
	IssueBusMsg(msg BusMsg) (copiesExist bool)
}

// Protocol is the common surface every coherence protocol exposes. See
// spec.md §4.1 for the exact transition table each implementation must
// satisfy.
type Protocol interface {
	// Name is the protocol's registry name.
	Name() string

	// OnPrRd reacts to a processor read. line is never nil.
	OnPrRd(issuer BusIssuer, line *cacheline.Line)
	// OnPrWr reacts to a processor write. line may be nil when
	// DoesWriteNoAllocate is true and there is no resident copy.
	OnPrWr(issuer BusIssuer, line *cacheline.Line)

	// OnBusRd, OnBusRdX, OnBusUpdt, OnBusUpgr, OnBusWr react to a
	// snooped bus message on a resident line. Each returns true iff the
	// line was flushed (its data driven onto the bus). Protocols that do
	// not implement a given message inherit a no-op, false-returning
	// default from BaseProtocol.
	OnBusRd(line *cacheline.Line) (flushed bool)
	OnBusRdX(line *cacheline.Line) (flushed bool)
	OnBusUpdt(line *cacheline.Line) (flushed bool)
	OnBusUpgr(line *cacheline.Line) (flushed bool)
	OnBusWr(line *cacheline.Line) (flushed bool)

	// DoesDirtySharing reports whether dirty data may be shared without
	// a writeback (O/Sm).
	DoesDirtySharing() bool
	// DoesWriteNoAllocate reports whether write misses bypass the cache
	// (write-through, no-allocate protocols).
	DoesWriteNoAllocate() bool
	// IsWriteBackNeeded reports whether a line in state must be written
	// back to main memory on eviction or displacement.
	IsWriteBackNeeded(state cacheline.State) bool
}

// BaseProtocol supplies the "no-op, return false" default for any bus
// message a protocol does not implement, per spec.md §4.1's contract.
// Concrete protocols embed it and override only the messages they react
// to.
type BaseProtocol struct{}

func (BaseProtocol) OnBusRd(*cacheline.Line) bool   { return false }
func (BaseProtocol) OnBusRdX(*cacheline.Line) bool  { return false }
func (BaseProtocol) OnBusUpdt(*cacheline.Line) bool { return false }
func (BaseProtocol) OnBusUpgr(*cacheline.Line) bool { return false }
func (BaseProtocol) OnBusWr(*cacheline.Line) bool   { return false }
func (BaseProtocol) DoesDirtySharing() bool         { return false }
func (BaseProtocol) DoesWriteNoAllocate() bool      { return false }
