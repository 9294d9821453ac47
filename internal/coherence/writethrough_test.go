package coherence_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cohesim/internal/cacheline"
	"github.com/sarchlab/cohesim/internal/coherence"
)

var _ = Describe("WriteThrough", func() {
	var (
		p      *coherence.WriteThrough
		issuer *recordingIssuer
	)

	BeforeEach(func() {
		p = coherence.NewWriteThrough()
		issuer = newRecordingIssuer()
	})

	It("is write-no-allocate and never needs a writeback", func() {
		Expect(p.DoesWriteNoAllocate()).To(BeTrue())
		Expect(p.IsWriteBackNeeded(cacheline.Valid)).To(BeFalse())
		Expect(p.IsWriteBackNeeded(cacheline.Invalid)).To(BeFalse())
	})

	It("issues BusRead and goes Valid on a read miss", func() {
		line := &cacheline.Line{State: cacheline.Invalid}
		p.OnPrRd(issuer, line)
		Expect(line.State).To(Equal(cacheline.Valid))
		Expect(issuer.issued).To(Equal([]coherence.BusMsg{coherence.BusRead}))
	})

	It("stays Valid on a read hit without bus traffic", func() {
		line := &cacheline.Line{State: cacheline.Valid}
		p.OnPrRd(issuer, line)
		Expect(line.State).To(Equal(cacheline.Valid))
		Expect(issuer.issued).To(BeEmpty())
	})

	It("issues BusWrite on a write regardless of hit or miss, never allocating", func() {
		for _, s := range []cacheline.State{cacheline.Valid, cacheline.Invalid} {
			issuer = newRecordingIssuer()
			line := &cacheline.Line{State: s}
			p.OnPrWr(issuer, line)
			Expect(line.State).To(Equal(s))
			Expect(issuer.issued).To(Equal([]coherence.BusMsg{coherence.BusWrite}))
		}
	})

	It("issues BusWrite on a write to a line-less access (no cache line allocated at all)", func() {
		p.OnPrWr(issuer, nil)
		Expect(issuer.issued).To(Equal([]coherence.BusMsg{coherence.BusWrite}))
	})

	It("never flushes or invalidates on a snooped BusRd", func() {
		for _, s := range []cacheline.State{cacheline.Valid, cacheline.Invalid} {
			line := &cacheline.Line{State: s}
			Expect(p.OnBusRd(line)).To(BeFalse())
			Expect(line.State).To(Equal(s))
		}
	})

	It("invalidates Valid without a flush on a snooped BusWr", func() {
		line := &cacheline.Line{State: cacheline.Valid}
		Expect(p.OnBusWr(line)).To(BeFalse())
		Expect(line.State).To(Equal(cacheline.Invalid))
	})

	It("leaves Invalid unchanged on a snooped BusWr", func() {
		line := &cacheline.Line{State: cacheline.Invalid}
		Expect(p.OnBusWr(line)).To(BeFalse())
		Expect(line.State).To(Equal(cacheline.Invalid))
	})
})
