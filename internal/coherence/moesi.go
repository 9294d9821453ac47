package coherence

import (
	"github.com/sarchlab/cohesim/internal/cacheline"
	"github.com/sarchlab/cohesim/internal/diagnostics"
)

// MOESI extends MESI with an Owned state so a dirty line can be shared
// without an immediate writeback: the owner keeps the only up-to-date
// copy and supplies it to snoops without touching main memory.
type MOESI struct {
	BaseProtocol
}

// NewMOESI returns a new MOESI protocol instance.
func NewMOESI() *MOESI {
	return &MOESI{}
}

func (p *MOESI) Name() string { return "MOESI" }

func (p *MOESI) OnPrRd(issuer BusIssuer, line *cacheline.Line) {
	switch line.State {
	case cacheline.Modified, cacheline.Owned, cacheline.Exclusive, cacheline.Shared:
		// Hit; no state change.
	case cacheline.Invalid:
		if issuer.IssueBusMsg(BusRead) {
			line.State = cacheline.Shared
		} else {
			line.State = cacheline.Exclusive
		}
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "PrRd", line.State)
	}
}

func (p *MOESI) OnPrWr(issuer BusIssuer, line *cacheline.Line) {
	switch line.State {
	case cacheline.Invalid:
		issuer.IssueBusMsg(BusReadX)
		line.State = cacheline.Modified
	case cacheline.Owned, cacheline.Shared:
		issuer.IssueBusMsg(BusUpgrade)
		line.State = cacheline.Modified
	case cacheline.Exclusive:
		line.State = cacheline.Modified
	case cacheline.Modified:
		// Hit; no state change.
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "PrWr", line.State)
	}
}

func (p *MOESI) OnBusRd(line *cacheline.Line) bool {
	switch line.State {
	case cacheline.Modified:
		line.State = cacheline.Owned
		return true
	case cacheline.Owned:
		return true
	case cacheline.Exclusive:
		line.State = cacheline.Shared
		return true
	case cacheline.Shared, cacheline.Invalid:
		return false
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "BusRd", line.State)
		return false
	}
}

func (p *MOESI) OnBusRdX(line *cacheline.Line) bool {
	switch line.State {
	case cacheline.Modified, cacheline.Owned, cacheline.Exclusive:
		line.State = cacheline.Invalid
		return true
	case cacheline.Shared:
		line.State = cacheline.Invalid
		return false
	case cacheline.Invalid:
		return false
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "BusRdX", line.State)
		return false
	}
}

func (p *MOESI) OnBusUpgr(line *cacheline.Line) bool {
	switch line.State {
	case cacheline.Owned, cacheline.Shared:
		line.State = cacheline.Invalid
		return false
	case cacheline.Invalid:
		return false
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "BusUpgr", line.State)
		return false
	}
}

func (p *MOESI) DoesDirtySharing() bool { return true }

func (p *MOESI) IsWriteBackNeeded(state cacheline.State) bool {
	return state == cacheline.Modified || state == cacheline.Owned
}
