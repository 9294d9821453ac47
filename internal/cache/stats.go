package cache

import "github.com/sarchlab/cohesim/internal/coherence"

// Statistic identifies one of the eleven counters that continue past
// coherence.BusMsg's seven values, matching the enum continuation in
// the original's statistic_e.
type Statistic int

const (
	ReadMiss Statistic = Statistic(int(coherence.BusWrite)+1) + iota
	WriteMiss
	LineFlush
	LineFetch
	CacheToCache
	WriteBack
	WriteMemory
	Eviction
	Exclusion
	Intervention
	Invalidation

	numStatistics
)

// Stats is the full, fixed-size counter array for one cache, indexed
// by either a coherence.BusMsg (for the first seven slots) or a
// Statistic. The array layout matches the CSV column order of
// spec.md §6.
type Stats [numStatistics]uint64

// Accessed reports whether this cache observed at least one processor
// access; a cache that never saw traffic does not get a CSV row.
func (s Stats) Accessed() bool {
	return s[coherence.ProcRead]+s[coherence.ProcWrite] > 0
}

// MissRate is (read misses + write misses) / (reads + writes), the
// spec's miss_rate column. It is only meaningful when Accessed is true.
func (s Stats) MissRate() float64 {
	accesses := s[coherence.ProcRead] + s[coherence.ProcWrite]
	if accesses == 0 {
		return 0
	}
	misses := s[ReadMiss] + s[WriteMiss]
	return float64(misses) / float64(accesses)
}
