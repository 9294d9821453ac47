package cache

import "github.com/sarchlab/cohesim/internal/cacheline"

// Timestamp returns the write timestamp stamped on addr's line, and
// whether addr currently has a valid copy resident at all. It backs
// the optional debug-build timestamp-verification feature
// (internal/diagnostics); a cache that never enables it never calls
// this.
func (c *Cache) Timestamp(addr uint32) (uint64, bool) {
	idx, ok := c.findLine(addr)
	if !ok || c.lines[idx].State == cacheline.Invalid {
		return 0, false
	}
	return c.lines[idx].Timestamp, true
}

// StampTimestamp records ts as the write timestamp of addr's line, if
// it is currently resident and valid. It is a no-op otherwise.
func (c *Cache) StampTimestamp(addr uint32, ts uint64) {
	idx, ok := c.findLine(addr)
	if !ok || c.lines[idx].State == cacheline.Invalid {
		return
	}
	c.lines[idx].Timestamp = ts
}
