// Package batch runs every configuration in a batch file against one
// shared trace stream concurrently: a single reader goroutine fills a
// double-buffered chunk while K worker goroutines, one per
// configuration and each owning an independent memory system, drain
// the other buffer. This mirrors run_modes.cc's runBatchMetrics, where
// a std::barrier synchronizes the buffer swap between the reader
// thread and every worker thread.
package batch

import (
	"context"
	"fmt"
	"io"

	"github.com/sarchlab/cohesim/internal/bus"
	"github.com/sarchlab/cohesim/internal/cache"
	"github.com/sarchlab/cohesim/internal/config"
	"github.com/sarchlab/cohesim/internal/report"
	"github.com/sarchlab/cohesim/internal/trace"
)

// chunkRecords is the number of trace records buffered per read,
// matching run_modes.cc's N_TRACE_BUF.
const chunkRecords = 1_000_000

// shared is the double-buffered chunk state every reader and worker
// goroutine reads and writes across barrier phases. Only the barrier's
// completion action (run while every party is blocked) ever mutates
// cur, curLen, or next; everyone else only reads cur/curLen after
// their own wait() call returns, which the barrier's internal locking
// already orders after that mutation.
type shared struct {
	cur, next []byte
	curLen    int
	pending   int
}

func (s *shared) swap() {
	s.cur, s.next = s.next, s.cur
	s.curLen = s.pending
}

// Run executes every config in configs against the trace stream r
// concurrently, writing each core's final statistics through w. limit,
// if nonzero, caps how many trace records are replayed per config.
// debugTimestamps turns on each worker's write-timestamp verification,
// the same optional debug-build check internal/bus implements.
//
// ctx cancellation stops the run early, without waiting for the trace
// to be exhausted; cores that had already produced statistics before
// cancellation still have them written.
func Run(ctx context.Context, configs []*config.Config, r io.Reader, w *report.Writer, limit uint64, debugTimestamps bool) error {
	if len(configs) == 0 {
		return nil
	}

	chunkBytes := chunkRecords * trace.RecordSize
	s := &shared{cur: make([]byte, chunkBytes), next: make([]byte, chunkBytes)}

	n, err := readChunk(r, s.cur)
	if err != nil {
		return fmt.Errorf("reading initial trace chunk: %w", err)
	}
	s.curLen = n

	b := newBarrier(len(configs)+1, s.swap)

	if ctx != nil {
		go func() {
			<-ctx.Done()
			b.abort()
		}()
	}

	errs := make(chan error, len(configs)+1)
	for _, cfg := range configs {
		go func(cfg *config.Config) {
			errs <- runWorker(cfg, s, b, limit, debugTimestamps, w)
		}(cfg)
	}
	go func() {
		errs <- runReader(r, s, b, chunkBytes, limit)
	}()

	var firstErr error
	for i := 0; i < len(configs)+1; i++ {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// readChunk fills buf as far as the stream allows, treating a clean or
// truncated end-of-stream as success: it reports however many bytes it
// actually got, matching std::ifstream::read's gcount semantics.
func readChunk(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, nil
	}
	return n, err
}

// runReader feeds the next chunk and arrives at b once per chunk so
// the worker side can swap in what it just read. It stops, without
// arriving for a final empty chunk, once the stream is exhausted or
// every config's line limit has been reached — the same point every
// worker independently stops at, since they all walk the identical
// shared trace.
func runReader(r io.Reader, s *shared, b *barrier, chunkBytes int, limit uint64) error {
	lineCount := uint64(s.curLen) / trace.RecordSize
	for s.curLen != 0 && !(limit != 0 && lineCount >= limit) {
		n, err := readChunk(r, s.next[:chunkBytes])
		if err != nil {
			return fmt.Errorf("reading trace chunk: %w", err)
		}
		s.pending = n
		if !b.wait() {
			return nil
		}
		lineCount += uint64(s.curLen) / trace.RecordSize
	}
	return nil
}

// runWorker replays the shared trace stream against one config's
// independent memory system until the stream, the line limit, or an
// abort is reached, then writes its final per-core statistics
// through w.
func runWorker(cfg *config.Config, s *shared, b *barrier, limit uint64, debugTimestamps bool, w *report.Writer) error {
	ms := bus.New(cfg.BusConfig())
	if debugTimestamps {
		ms.EnableTimestampVerification()
	}

	var lineCount uint64
process:
	for s.curLen != 0 {
		for _, rec := range trace.DecodeBuffer(s.cur[:s.curLen]) {
			if rec.Write {
				ms.IssuePrWr(rec.CPU, rec.Address)
			} else {
				ms.IssuePrRd(rec.CPU, rec.Address)
			}
			lineCount++
			if limit != 0 && lineCount == limit {
				break process
			}
		}
		if !b.wait() {
			break process
		}
	}

	var writeErr error
	ms.PrintStats(func(cpuID int, stats cache.Stats) {
		if writeErr == nil {
			writeErr = w.WriteRow(cfg.ID, cpuID, stats)
		}
	})
	return writeErr
}
