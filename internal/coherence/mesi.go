package coherence

import (
	"github.com/sarchlab/cohesim/internal/cacheline"
	"github.com/sarchlab/cohesim/internal/diagnostics"
)

// MESI adds a clean-exclusive state to MSI so a single reader does not
// need to announce a BusUpgrade when it later writes.
type MESI struct {
	BaseProtocol
}

// NewMESI returns a new MESI protocol instance.
func NewMESI() *MESI {
	return &MESI{}
}

func (p *MESI) Name() string { return "MESI" }

func (p *MESI) OnPrRd(issuer BusIssuer, line *cacheline.Line) {
	switch line.State {
	case cacheline.Modified, cacheline.Exclusive, cacheline.Shared:
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

func (p *MESI) OnPrWr(issuer BusIssuer, line *cacheline.Line) {
	switch line.State {
	case cacheline.Invalid:
		issuer.IssueBusMsg(BusReadX)
		line.State = cacheline.Modified
	case cacheline.Shared:
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

func (p *MESI) OnBusRd(line *cacheline.Line) bool {
	switch line.State {
	case cacheline.Modified, cacheline.Exclusive:
		line.State = cacheline.Shared
		return true
	case cacheline.Shared:
		return true
	case cacheline.Invalid:
		return false
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "BusRd", line.State)
		return false
	}
}

func (p *MESI) OnBusRdX(line *cacheline.Line) bool {
	switch line.State {
	case cacheline.Modified, cacheline.Exclusive, cacheline.Shared:
		line.State = cacheline.Invalid
		return true
	case cacheline.Invalid:
		return false
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "BusRdX", line.State)
		return false
	}
}

func (p *MESI) OnBusUpgr(line *cacheline.Line) bool {
	switch line.State {
	case cacheline.Shared:
		line.State = cacheline.Invalid
		return false
	case cacheline.Invalid:
		return false
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "BusUpgr", line.State)
		return false
	}
}

func (p *MESI) IsWriteBackNeeded(state cacheline.State) bool {
	return state == cacheline.Modified
}
