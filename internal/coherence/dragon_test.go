package coherence_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cohesim/internal/cacheline"
	"github.com/sarchlab/cohesim/internal/coherence"
)

var _ = Describe("Dragon", func() {
	var (
		p      *coherence.Dragon
		issuer *recordingIssuer
	)

	BeforeEach(func() {
		p = coherence.NewDragon()
		issuer = newRecordingIssuer()
	})

	It("does dirty sharing", func() {
		Expect(p.DoesDirtySharing()).To(BeTrue())
	})

	It("goes Exclusive on first read when no copies exist", func() {
		issuer.defaultReply = false
		line := &cacheline.Line{State: cacheline.Unallocated}
		p.OnPrRd(issuer, line)
		Expect(line.State).To(Equal(cacheline.Exclusive))
	})

	It("goes SharedClean on first read when copies exist", func() {
		issuer.defaultReply = true
		line := &cacheline.Line{State: cacheline.Unallocated}
		p.OnPrRd(issuer, line)
		Expect(line.State).To(Equal(cacheline.SharedClean))
	})

	It("moves E straight to M on a write hit with no bus traffic", func() {
		line := &cacheline.Line{State: cacheline.Exclusive}
		p.OnPrWr(issuer, line)
		Expect(line.State).To(Equal(cacheline.Modified))
		Expect(issuer.issued).To(BeEmpty())
	})

	It("updates siblings and stays SharedModified on a write hit while shared", func() {
		issuer.copiesExist = []bool{true}
		line := &cacheline.Line{State: cacheline.SharedClean}
		p.OnPrWr(issuer, line)
		Expect(line.State).To(Equal(cacheline.SharedModified))
		Expect(issuer.issued).To(Equal([]coherence.BusMsg{coherence.BusUpdate}))
	})

	It("goes straight to Modified on a write hit when no sibling observed the update", func() {
		issuer.copiesExist = []bool{false}
		line := &cacheline.Line{State: cacheline.SharedModified}
		p.OnPrWr(issuer, line)
		Expect(line.State).To(Equal(cacheline.Modified))
	})

	It("does not invalidate on a write miss to an unallocated line with no sharers", func() {
		issuer.copiesExist = []bool{false}
		line := &cacheline.Line{State: cacheline.Unallocated}
		p.OnPrWr(issuer, line)
		Expect(line.State).To(Equal(cacheline.Modified))
		Expect(issuer.issued).To(Equal([]coherence.BusMsg{coherence.BusRead}))
	})

	It("writes BusRead then BusUpdate on a write miss when sharers exist", func() {
		issuer.copiesExist = []bool{true, true}
		line := &cacheline.Line{State: cacheline.Unallocated}
		p.OnPrWr(issuer, line)
		Expect(line.State).To(Equal(cacheline.SharedModified))
		Expect(issuer.issued).To(Equal([]coherence.BusMsg{coherence.BusRead, coherence.BusUpdate}))
	})

	It("scenario 3: an update protocol never counts an Invalidation", func() {
		// E -> Sc via a sibling's BusRd, never invalidated.
		line := &cacheline.Line{State: cacheline.Exclusive}
		Expect(p.OnBusRd(line)).To(BeFalse())
		Expect(line.State).To(Equal(cacheline.SharedClean))

		// A subsequent write to the same block updates (not invalidates) it.
		Expect(p.OnBusUpdt(line)).To(BeFalse())
		Expect(line.State).To(Equal(cacheline.SharedClean))
	})

	It("flushes M down to Sm on a snooped BusRd", func() {
		line := &cacheline.Line{State: cacheline.Modified}
		Expect(p.OnBusRd(line)).To(BeTrue())
		Expect(line.State).To(Equal(cacheline.SharedModified))
	})

	It("stays Sm flushed on a repeated snooped BusRd", func() {
		line := &cacheline.Line{State: cacheline.SharedModified}
		Expect(p.OnBusRd(line)).To(BeTrue())
		Expect(line.State).To(Equal(cacheline.SharedModified))
	})

	It("drops Sm to Sc on a snooped BusUpdt", func() {
		line := &cacheline.Line{State: cacheline.SharedModified}
		Expect(p.OnBusUpdt(line)).To(BeFalse())
		Expect(line.State).To(Equal(cacheline.SharedClean))
	})

	It("needs a writeback from Sm or M", func() {
		Expect(p.IsWriteBackNeeded(cacheline.SharedModified)).To(BeTrue())
		Expect(p.IsWriteBackNeeded(cacheline.Modified)).To(BeTrue())
		Expect(p.IsWriteBackNeeded(cacheline.SharedClean)).To(BeFalse())
	})
})
