package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cohesim/internal/cache"
	"github.com/sarchlab/cohesim/internal/cacheline"
	"github.com/sarchlab/cohesim/internal/coherence"
	"github.com/sarchlab/cohesim/internal/replacement"
)

func directMappedConfig(protocol coherence.Factory) cache.Config {
	return cache.Config{
		CacheSize:       4,
		LineSize:        4,
		Associativity:   1,
		ProtocolFactory: protocol,
	}
}

var _ = Describe("Cache", func() {
	Describe("scenario 1: MSI two-CPU read/write sequence", func() {
		It("matches the literal trace's expected counters and final states", func() {
			bus := newTestBus()
			c0 := bus.add(0, directMappedConfig(func() coherence.Protocol { return coherence.NewMSI() }))
			c1 := bus.add(1, directMappedConfig(func() coherence.Protocol { return coherence.NewMSI() }))

			c0.ReceivePrRd(0x0)
			c1.ReceivePrRd(0x0)
			c0.ReceivePrWr(0x0)
			c1.ReceivePrRd(0x0)

			s0, s1 := c0.Stats(), c1.Stats()

			Expect(s0[coherence.ProcRead]).To(BeEquivalentTo(1))
			Expect(s1[coherence.ProcRead]).To(BeEquivalentTo(2))
			Expect(s0[coherence.ProcWrite]).To(BeEquivalentTo(1))

			Expect(s0[coherence.BusRead] + s1[coherence.BusRead]).To(BeEquivalentTo(3))
			Expect(s0[coherence.BusReadX] + s1[coherence.BusReadX]).To(BeEquivalentTo(1))

			Expect(s1[cache.Invalidation]).To(BeEquivalentTo(1))
			Expect(s0[cache.Intervention]).To(BeEquivalentTo(1))
			Expect(s0[cache.LineFlush]).To(BeEquivalentTo(1))
			Expect(s0[cache.WriteBack]).To(BeEquivalentTo(1))

			Expect(c0.GetLineState(0, 0)).To(Equal(cacheline.Shared))
			Expect(c1.GetLineState(0, 0)).To(Equal(cacheline.Shared))
		})
	})

	Describe("scenario 2: MESI single writer stays in E then M without an upgrade", func() {
		It("never issues BusUpgrade and ends Modified", func() {
			bus := newTestBus()
			c0 := bus.add(0, directMappedConfig(func() coherence.Protocol { return coherence.NewMESI() }))

			c0.ReceivePrRd(0x0)
			c0.ReceivePrWr(0x0)

			s0 := c0.Stats()
			Expect(s0[coherence.BusRead]).To(BeEquivalentTo(1))
			Expect(s0[coherence.BusReadX]).To(BeEquivalentTo(0))
			Expect(s0[coherence.BusUpgrade]).To(BeEquivalentTo(0))
			Expect(s0[cache.ReadMiss]).To(BeEquivalentTo(1))
			Expect(s0[cache.WriteMiss]).To(BeEquivalentTo(0))
			Expect(c0.GetLineState(0, 0)).To(Equal(cacheline.Modified))
		})
	})

	Describe("scenario 3: Dragon updates instead of invalidating", func() {
		It("never counts an Invalidation and hits on the final shared read", func() {
			bus := newTestBus()
			c0 := bus.add(0, directMappedConfig(func() coherence.Protocol { return coherence.NewDragon() }))
			c1 := bus.add(1, directMappedConfig(func() coherence.Protocol { return coherence.NewDragon() }))

			c0.ReceivePrRd(0x0)
			c1.ReceivePrRd(0x0)
			c0.ReceivePrWr(0x0)
			c1.ReceivePrRd(0x0)

			s0, s1 := c0.Stats(), c1.Stats()
			Expect(s0[cache.Invalidation]).To(BeEquivalentTo(0))
			Expect(s1[cache.Invalidation]).To(BeEquivalentTo(0))
			Expect(s0[coherence.BusUpdate] + s1[coherence.BusUpdate]).To(BeNumerically(">=", 1))
			Expect(s1[cache.ReadMiss]).To(BeEquivalentTo(1))
		})
	})

	Describe("scenario 4: WriteThrough is write-no-allocate", func() {
		It("never allocates on the write and ends Valid after the read", func() {
			bus := newTestBus()
			c0 := bus.add(0, directMappedConfig(func() coherence.Protocol { return coherence.NewWriteThrough() }))

			c0.ReceivePrWr(0x0)
			c0.ReceivePrRd(0x0)

			s0 := c0.Stats()
			Expect(s0[cache.WriteMemory]).To(BeEquivalentTo(1))
			Expect(c0.GetLineState(0, 0)).To(Equal(cacheline.Valid))
		})
	})

	Describe("scenario 5: LRU eviction within a cache's 4-way set", func() {
		It("evicts the way holding B after touching A,B,C,D,A", func() {
			bus := newTestBus()
			cfg := cache.Config{
				CacheSize:       16,
				LineSize:        4,
				Associativity:   4,
				ProtocolFactory: func() coherence.Protocol { return coherence.NewMSI() },
				ReplacerFactory: replacement.NewLRU,
			}
			c0 := bus.add(0, cfg)

			// All four tags map to the same set (line_size*4 == cache_size),
			// each address 4 bytes apart so their tags differ.
			c0.ReceivePrRd(0x00) // A
			c0.ReceivePrRd(0x04) // B
			c0.ReceivePrRd(0x08) // C
			c0.ReceivePrRd(0x0C) // D
			c0.ReceivePrRd(0x00) // A again

			before := c0.Stats()[cache.Eviction]

			c0.ReceivePrRd(0x10) // E, should evict B's way

			Expect(c0.Stats()[cache.Eviction]).To(Equal(before + 1))

			missesBefore := c0.Stats()[cache.ReadMiss]
			c0.ReceivePrRd(0x00) // A should still be resident: a hit.
			Expect(c0.Stats()[cache.ReadMiss]).To(Equal(missesBefore))

			c0.ReceivePrRd(0x04) // B was evicted: a miss.
			Expect(c0.Stats()[cache.ReadMiss]).To(Equal(missesBefore + 1))
		})
	})

	Describe("miss accounting", func() {
		It("never counts more misses than accesses", func() {
			bus := newTestBus()
			c0 := bus.add(0, directMappedConfig(func() coherence.Protocol { return coherence.NewMSI() }))

			c0.ReceivePrRd(0x0)
			c0.ReceivePrWr(0x0)
			c0.ReceivePrRd(0x4)

			s := c0.Stats()
			accesses := s[coherence.ProcRead] + s[coherence.ProcWrite]
			misses := s[cache.ReadMiss] + s[cache.WriteMiss]
			Expect(misses).To(BeNumerically("<=", accesses))
		})
	})

	Describe("single-cache isolation", func() {
		It("never lets a trace touching only cpu 0 produce traffic on cpu 1's counters", func() {
			bus := newTestBus()
			c0 := bus.add(0, directMappedConfig(func() coherence.Protocol { return coherence.NewMESI() }))
			c1 := bus.add(1, directMappedConfig(func() coherence.Protocol { return coherence.NewMESI() }))

			c0.ReceivePrRd(0x0)
			c0.ReceivePrWr(0x0)
			c0.ReceivePrRd(0x4)

			Expect(c1.Stats()[coherence.ProcRead]).To(BeEquivalentTo(0))
			Expect(c1.Stats()[coherence.ProcWrite]).To(BeEquivalentTo(0))
		})
	})
})
