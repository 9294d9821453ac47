package diagnostics

import (
	"fmt"
	"log"
)

// TimestampDiscrepancy reports that, after a processor access, the
// valid copies of one block disagreed on their write timestamp: at
// least one cache below the observed maximum never saw the most
// recent write. It is non-fatal; the simulation continues regardless
// of whether a sink is registered.
type TimestampDiscrepancy struct {
	Write         bool
	Addr          uint32
	Step          uint64
	MaxTimestamp  uint64
	StaleCacheIDs []int
}

func (d *TimestampDiscrepancy) Error() string {
	verb := "reading from"
	if d.Write {
		verb = "writing to"
	}
	return fmt.Sprintf(
		"cache lines out of date after %s address %#x at step %d: %v",
		verb, d.Addr, d.Step, d.StaleCacheIDs,
	)
}

// DiscrepancySink persists timestamp discrepancies beyond the default
// stderr log, e.g. to the optional SQLite-backed debug store.
type DiscrepancySink interface {
	Record(d *TimestampDiscrepancy) error
}

var sink DiscrepancySink

// SetDiscrepancySink installs an additional sink for every reported
// discrepancy. Passing nil restores the stderr-only default.
func SetDiscrepancySink(s DiscrepancySink) {
	sink = s
}

// ReportTimestampDiscrepancy logs a discrepancy to stderr and, if one
// is installed, forwards it to the discrepancy sink. staleCacheIDs
// must already be sorted ascending; every id in it held a timestamp
// strictly less than maxTimestamp.
func ReportTimestampDiscrepancy(write bool, addr uint32, step, maxTimestamp uint64, staleCacheIDs []int) {
	if len(staleCacheIDs) == 0 {
		return
	}

	d := &TimestampDiscrepancy{
		Write:         write,
		Addr:          addr,
		Step:          step,
		MaxTimestamp:  maxTimestamp,
		StaleCacheIDs: staleCacheIDs,
	}

	log.Println(d)

	if sink != nil {
		if err := sink.Record(d); err != nil {
			log.Printf("discrepancy sink: %v", err)
		}
	}
}
