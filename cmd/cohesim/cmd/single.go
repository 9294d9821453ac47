package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/cohesim/internal/bus"
	"github.com/sarchlab/cohesim/internal/cache"
	"github.com/sarchlab/cohesim/internal/config"
	"github.com/sarchlab/cohesim/internal/report"
	"github.com/sarchlab/cohesim/internal/trace"
)

// runSingle runs one configuration's six fields against args[6]'s
// trace on a single memory system, mirroring run_modes.cc's
// runSingleMetrics. args[7], if present, caps the number of trace
// records replayed.
func runSingle(cmd *cobra.Command, args []string) error {
	cfg, parseErr := config.Parse(args[:config.FieldCount], 1)
	if parseErr != nil {
		return parseErr
	}

	traceFile, err := openTraceFile(args[config.FieldCount], config.ArgSingleTraceFile)
	if err != nil {
		return err
	}
	defer traceFile.Close()

	var limit uint64
	if len(args) == config.FieldCount+2 {
		limit, err = parseTraceLimit(args[config.FieldCount+1])
		if err != nil {
			return err
		}
	}

	ms := bus.New(cfg.BusConfig())
	if debugTimestamps {
		ms.EnableTimestampVerification()
	}

	reader := trace.NewReader(traceFile)
	for lineCount := uint64(0); limit == 0 || lineCount < limit; lineCount++ {
		rec, err := reader.Next()
		if err != nil {
			break
		}
		if rec.Write {
			ms.IssuePrWr(rec.CPU, rec.Address)
		} else {
			ms.IssuePrRd(rec.CPU, rec.Address)
		}
	}

	w, err := report.New(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	var writeErr error
	ms.PrintStats(func(cpuID int, stats cache.Stats) {
		if writeErr == nil {
			writeErr = w.WriteRow(cfg.ID, cpuID, stats)
		}
	})
	return writeErr
}
