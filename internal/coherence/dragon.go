package coherence

import (
	"github.com/sarchlab/cohesim/internal/cacheline"
	"github.com/sarchlab/cohesim/internal/diagnostics"
)

// Dragon is an update-based protocol: sharers are kept coherent by
// broadcasting writes (BusUpdate) rather than invalidating them, so a
// block never has to be re-fetched just because another cache wrote to
// it.
type Dragon struct {
	BaseProtocol
}

// NewDragon returns a new Dragon protocol instance.
func NewDragon() *Dragon {
	return &Dragon{}
}

func (p *Dragon) Name() string { return "Dragon" }

func (p *Dragon) OnPrRd(issuer BusIssuer, line *cacheline.Line) {
	switch line.State {
	case cacheline.Exclusive, cacheline.SharedClean, cacheline.SharedModified, cacheline.Modified:
		// Hit; no state change.
	case cacheline.Unallocated:
		if issuer.IssueBusMsg(BusRead) {
			line.State = cacheline.SharedClean
		} else {
			line.State = cacheline.Exclusive
		}
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "PrRd", line.State)
	}
}

func (p *Dragon) OnPrWr(issuer BusIssuer, line *cacheline.Line) {
	switch line.State {
	case cacheline.Exclusive:
		line.State = cacheline.Modified
	case cacheline.SharedClean, cacheline.SharedModified:
		if issuer.IssueBusMsg(BusUpdate) {
			line.State = cacheline.SharedModified
		} else {
			line.State = cacheline.Modified
		}
	case cacheline.Modified:
		// Hit; no state change.
	case cacheline.Unallocated:
		// Short-circuit: BusUpdate is only issued once BusRead reports
		// that another cache actually holds the block.
		if issuer.IssueBusMsg(BusRead) && issuer.IssueBusMsg(BusUpdate) {
			line.State = cacheline.SharedModified
		} else {
			line.State = cacheline.Modified
		}
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "PrWr", line.State)
	}
}

func (p *Dragon) OnBusRd(line *cacheline.Line) bool {
	switch line.State {
	case cacheline.Exclusive:
		line.State = cacheline.SharedClean
		return false
	case cacheline.SharedClean:
		return false
	case cacheline.Modified:
		line.State = cacheline.SharedModified
		return true
	case cacheline.SharedModified:
		return true
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "BusRd", line.State)
		return false
	}
}

func (p *Dragon) OnBusUpdt(line *cacheline.Line) bool {
	switch line.State {
	case cacheline.SharedModified:
		line.State = cacheline.SharedClean
		return false
	case cacheline.SharedClean:
		return false
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "BusUpdt", line.State)
		return false
	}
}

func (p *Dragon) DoesDirtySharing() bool { return true }

func (p *Dragon) IsWriteBackNeeded(state cacheline.State) bool {
	return state == cacheline.SharedModified || state == cacheline.Modified
}
