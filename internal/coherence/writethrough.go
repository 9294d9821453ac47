package coherence

import (
	"github.com/sarchlab/cohesim/internal/cacheline"
	"github.com/sarchlab/cohesim/internal/diagnostics"
)

// WriteThrough models a write-no-allocate, write-through cache: a write
// always goes straight to memory over BusWrite, and a line is only ever
// populated by a read.
type WriteThrough struct {
	BaseProtocol
}

// NewWriteThrough returns a new write-through protocol instance.
func NewWriteThrough() *WriteThrough {
	return &WriteThrough{}
}

func (p *WriteThrough) Name() string { return "WriteThrough" }

func (p *WriteThrough) OnPrRd(issuer BusIssuer, line *cacheline.Line) {
	switch line.State {
	case cacheline.Valid:
		// Hit; no state change.
	case cacheline.Invalid:
		issuer.IssueBusMsg(BusRead)
		line.State = cacheline.Valid
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "PrRd", line.State)
	}
}

func (p *WriteThrough) OnPrWr(issuer BusIssuer, line *cacheline.Line) {
	if line == nil {
		issuer.IssueBusMsg(BusWrite)
		return
	}

	switch line.State {
	case cacheline.Valid, cacheline.Invalid:
		issuer.IssueBusMsg(BusWrite)
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "PrWr", line.State)
	}
}

func (p *WriteThrough) OnBusRd(line *cacheline.Line) bool {
	switch line.State {
	case cacheline.Valid, cacheline.Invalid:
		return false
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "BusRd", line.State)
		return false
	}
}

func (p *WriteThrough) OnBusWr(line *cacheline.Line) bool {
	switch line.State {
	case cacheline.Valid:
		line.State = cacheline.Invalid
		return false
	case cacheline.Invalid:
		return false
	default:
		diagnostics.ReportProtocolError(1, p.Name(), "BusWr", line.State)
		return false
	}
}

func (p *WriteThrough) DoesWriteNoAllocate() bool { return true }

func (p *WriteThrough) IsWriteBackNeeded(cacheline.State) bool { return false }
