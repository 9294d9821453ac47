package coherence_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cohesim/internal/cacheline"
	"github.com/sarchlab/cohesim/internal/coherence"
)

var _ = Describe("MSI", func() {
	var (
		p      *coherence.MSI
		issuer *recordingIssuer
	)

	BeforeEach(func() {
		p = coherence.NewMSI()
		issuer = newRecordingIssuer()
	})

	It("goes to Shared on a read miss and issues BusRead", func() {
		line := &cacheline.Line{State: cacheline.Invalid}
		p.OnPrRd(issuer, line)
		Expect(line.State).To(Equal(cacheline.Shared))
		Expect(issuer.issued).To(Equal([]coherence.BusMsg{coherence.BusRead}))
	})

	It("stays in Shared or Modified on a read hit", func() {
		for _, s := range []cacheline.State{cacheline.Shared, cacheline.Modified} {
			line := &cacheline.Line{State: s}
			p.OnPrRd(issuer, line)
			Expect(line.State).To(Equal(s))
		}
		Expect(issuer.issued).To(BeEmpty())
	})

	It("goes to Modified on a write miss and issues BusReadX", func() {
		line := &cacheline.Line{State: cacheline.Invalid}
		p.OnPrWr(issuer, line)
		Expect(line.State).To(Equal(cacheline.Modified))
		Expect(issuer.issued).To(Equal([]coherence.BusMsg{coherence.BusReadX}))
	})

	It("upgrades Shared to Modified via BusReadX on a write hit", func() {
		line := &cacheline.Line{State: cacheline.Shared}
		p.OnPrWr(issuer, line)
		Expect(line.State).To(Equal(cacheline.Modified))
		Expect(issuer.issued).To(Equal([]coherence.BusMsg{coherence.BusReadX}))
	})

	It("flushes and downgrades to Shared on a snooped BusRd while Modified", func() {
		line := &cacheline.Line{State: cacheline.Modified}
		Expect(p.OnBusRd(line)).To(BeTrue())
		Expect(line.State).To(Equal(cacheline.Shared))
	})

	It("does not flush on a snooped BusRd while Shared or Invalid", func() {
		for _, s := range []cacheline.State{cacheline.Shared, cacheline.Invalid} {
			line := &cacheline.Line{State: s}
			Expect(p.OnBusRd(line)).To(BeFalse())
			Expect(line.State).To(Equal(s))
		}
	})

	It("invalidates and flushes on a snooped BusRdX while Modified", func() {
		line := &cacheline.Line{State: cacheline.Modified}
		Expect(p.OnBusRdX(line)).To(BeTrue())
		Expect(line.State).To(Equal(cacheline.Invalid))
	})

	It("invalidates without flushing on a snooped BusRdX while Shared", func() {
		line := &cacheline.Line{State: cacheline.Shared}
		Expect(p.OnBusRdX(line)).To(BeFalse())
		Expect(line.State).To(Equal(cacheline.Invalid))
	})

	It("needs a writeback only from Modified", func() {
		Expect(p.IsWriteBackNeeded(cacheline.Modified)).To(BeTrue())
		Expect(p.IsWriteBackNeeded(cacheline.Shared)).To(BeFalse())
		Expect(p.IsWriteBackNeeded(cacheline.Invalid)).To(BeFalse())
	})
})

var _ = Describe("MSIUpgrade", func() {
	var (
		p      *coherence.MSIUpgrade
		issuer *recordingIssuer
	)

	BeforeEach(func() {
		p = coherence.NewMSIUpgrade()
		issuer = newRecordingIssuer()
	})

	It("issues BusUpgrade (not BusReadX) on a write hit to Shared", func() {
		line := &cacheline.Line{State: cacheline.Shared}
		p.OnPrWr(issuer, line)
		Expect(line.State).To(Equal(cacheline.Modified))
		Expect(issuer.issued).To(Equal([]coherence.BusMsg{coherence.BusUpgrade}))
	})

	It("transitions to Modified regardless of BusUpgrade's shared signal", func() {
		issuer.defaultReply = true
		line := &cacheline.Line{State: cacheline.Shared}
		p.OnPrWr(issuer, line)
		Expect(line.State).To(Equal(cacheline.Modified))
	})
})
