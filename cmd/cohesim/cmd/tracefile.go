package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sarchlab/cohesim/internal/config"
	"github.com/sarchlab/cohesim/internal/trace"
)

// openTraceFile opens path for reading and validates it holds a whole
// number of trace records, mirroring getTrace's file-size check. Every
// failure is a *config.ParseError at argIndex (the trace file's
// positional argument in the calling run mode), so Execute routes it
// through the same packed exit code an argument error takes instead of
// a bare exit(1), per spec.md §7's I/O error case.
func openTraceFile(path string, argIndex uint32) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, config.IOError(argIndex, fmt.Errorf("trace file read error: %w", err))
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, config.IOError(argIndex, fmt.Errorf("trace file read error: %w", err))
	}

	if err := trace.ValidateSize(info.Size()); err != nil {
		f.Close()
		return nil, config.IOError(argIndex, err)
	}

	return f, nil
}

// parseTraceLimit parses an optional trailing trace-limit argument, 0
// meaning "no limit".
func parseTraceLimit(s string) (uint64, error) {
	limit, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid format for trace limit (expect positive integer)")
	}
	return limit, nil
}
