// Package report writes the per-core statistics CSV emitted by every
// run mode, in the exact column order spec.md §6 requires.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sync"

	"github.com/sarchlab/cohesim/internal/cache"
	"github.com/sarchlab/cohesim/internal/coherence"
)

// Header is the CSV header row, in column order.
var Header = []string{
	"config", "core", "miss_rate",
	"processor_reads", "processor_writes",
	"bus_reads", "bus_readxs", "bus_updates", "bus_upgrades", "bus_writes",
	"read_misses", "write_misses",
	"line_flushes", "line_fetches", "c2c_transfers", "write_backs", "memory_writes",
	"evictions",
	"exclusions", "interventions", "invalidations",
}

// Writer emits statistics rows to an underlying io.Writer as CSV,
// buffering nothing itself beyond what encoding/csv buffers, and safe
// for concurrent WriteRow calls from multiple batch workers.
type Writer struct {
	mu sync.Mutex
	w  *csv.Writer
}

// New wraps dst in a Writer and immediately writes the header row.
func New(dst io.Writer) (*Writer, error) {
	w := &Writer{w: csv.NewWriter(dst)}
	if err := w.w.Write(Header); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	w.w.Flush()
	return w, w.w.Error()
}

// WriteRow emits one configID/coreID/stats row and flushes it so rows
// from concurrent workers interleave as complete lines, never as
// partial writes.
func (w *Writer) WriteRow(configID uint32, coreID int, stats cache.Stats) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	row := []string{
		fmt.Sprintf("%d", configID),
		fmt.Sprintf("%d", coreID),
		fmt.Sprintf("%.6f", stats.MissRate()),
		fmt.Sprintf("%d", stats[coherence.ProcRead]),
		fmt.Sprintf("%d", stats[coherence.ProcWrite]),
		fmt.Sprintf("%d", stats[coherence.BusRead]),
		fmt.Sprintf("%d", stats[coherence.BusReadX]),
		fmt.Sprintf("%d", stats[coherence.BusUpdate]),
		fmt.Sprintf("%d", stats[coherence.BusUpgrade]),
		fmt.Sprintf("%d", stats[coherence.BusWrite]),
		fmt.Sprintf("%d", stats[cache.ReadMiss]),
		fmt.Sprintf("%d", stats[cache.WriteMiss]),
		fmt.Sprintf("%d", stats[cache.LineFlush]),
		fmt.Sprintf("%d", stats[cache.LineFetch]),
		fmt.Sprintf("%d", stats[cache.CacheToCache]),
		fmt.Sprintf("%d", stats[cache.WriteBack]),
		fmt.Sprintf("%d", stats[cache.WriteMemory]),
		fmt.Sprintf("%d", stats[cache.Eviction]),
		fmt.Sprintf("%d", stats[cache.Exclusion]),
		fmt.Sprintf("%d", stats[cache.Intervention]),
		fmt.Sprintf("%d", stats[cache.Invalidation]),
	}

	if err := w.w.Write(row); err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}
	w.w.Flush()
	return w.w.Error()
}
