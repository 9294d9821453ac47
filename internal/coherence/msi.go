package coherence

import (
	"github.com/sarchlab/cohesim/internal/cacheline"
	"github.com/sarchlab/cohesim/internal/diagnostics"
)

// MSI is the three-state Modified/Shared/Invalid coherence protocol.
type MSI struct {
	BaseProtocol
}

// NewMSI returns a new MSI protocol instance.
func NewMSI() *MSI {
	return &MSI{}
}

func (p *MSI) Name() string { return "MSI" }

func (p *MSI) OnPrRd(issuer BusIssuer, line *cacheline.Line) {
	switch line.State {
	case cacheline.Modified, cacheline.Shared:
		// Hit; no state change.
	case cacheline.Invalid:
		issuer.IssueBusMsg(BusRead)
		line.State = cacheline.Shared
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "PrRd", line.State)
	}
}

func (p *MSI) OnPrWr(issuer BusIssuer, line *cacheline.Line) {
	switch line.State {
	case cacheline.Invalid:
		issuer.IssueBusMsg(BusReadX)
		line.State = cacheline.Modified
	case cacheline.Shared:
		issuer.IssueBusMsg(BusReadX)
		line.State = cacheline.Modified
	case cacheline.Modified:
		// Hit; no state change.
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "PrWr", line.State)
	}
}

func (p *MSI) OnBusRd(line *cacheline.Line) bool {
	switch line.State {
	case cacheline.Modified:
		line.State = cacheline.Shared
		return true
	case cacheline.Shared, cacheline.Invalid:
		return false
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "BusRd", line.State)
		return false
	}
}

func (p *MSI) OnBusRdX(line *cacheline.Line) bool {
	switch line.State {
	case cacheline.Modified:
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

func (p *MSI) IsWriteBackNeeded(state cacheline.State) bool {
	return state == cacheline.Modified
}

// MSIUpgrade is MSI's variant that issues BusUpgrade (rather than
// BusReadX) on a write hit to a Shared line, since the writer already
// has a valid copy of the data and only needs sibling invalidation.
type MSIUpgrade struct {
	BaseProtocol
}

// NewMSIUpgrade returns a new MSI-with-upgrade protocol instance.
func NewMSIUpgrade() *MSIUpgrade {
	return &MSIUpgrade{}
}

func (p *MSIUpgrade) Name() string { return "MSIUpgr" }

func (p *MSIUpgrade) OnPrRd(issuer BusIssuer, line *cacheline.Line) {
	switch line.State {
	case cacheline.Modified, cacheline.Shared:
		// Hit; no state change.
	case cacheline.Invalid:
		issuer.IssueBusMsg(BusRead)
		line.State = cacheline.Shared
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "PrRd", line.State)
	}
}

func (p *MSIUpgrade) OnPrWr(issuer BusIssuer, line *cacheline.Line) {
	switch line.State {
	case cacheline.Invalid:
		issuer.IssueBusMsg(BusReadX)
		line.State = cacheline.Modified
	case cacheline.Shared:
		// The shared-signal result of BusUpgrade is intentionally not
		// consulted: the transition to Modified is unconditional.
		issuer.IssueBusMsg(BusUpgrade)
		line.State = cacheline.Modified
	case cacheline.Modified:
		// Hit; no state change.
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "PrWr", line.State)
	}
}

func (p *MSIUpgrade) OnBusRd(line *cacheline.Line) bool {
	switch line.State {
	case cacheline.Modified:
		line.State = cacheline.Shared
		return true
	case cacheline.Shared, cacheline.Invalid:
		return false
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "BusRd", line.State)
		return false
	}
}

func (p *MSIUpgrade) OnBusRdX(line *cacheline.Line) bool {
	switch line.State {
	case cacheline.Modified:
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

func (p *MSIUpgrade) OnBusUpgr(line *cacheline.Line) bool {
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

func (p *MSIUpgrade) IsWriteBackNeeded(state cacheline.State) bool {
	return state == cacheline.Modified
}
