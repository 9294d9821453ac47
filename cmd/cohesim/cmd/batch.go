package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cohesim/internal/batch"
	"github.com/sarchlab/cohesim/internal/config"
	"github.com/sarchlab/cohesim/internal/report"
)

// runBatch runs every configuration in args[0]'s configs file against
// args[1]'s trace concurrently, mirroring run_modes.cc's
// runBatchMetrics. args[2], if present, caps the number of trace
// records replayed per configuration.
func runBatch(cmd *cobra.Command, args []string) error {
	lines, err := os.ReadFile(args[0])
	if err != nil {
		return config.IOError(config.ArgBatchConfigFile, err)
	}

	configs, parseErr := config.ReadConfigsFile(strings.Split(string(lines), "\n"))
	if parseErr != nil {
		return parseErr
	}

	traceFile, err := openTraceFile(args[1], config.ArgBatchTraceFile)
	if err != nil {
		return err
	}
	defer traceFile.Close()

	var limit uint64
	if len(args) == 3 {
		limit, err = parseTraceLimit(args[2])
		if err != nil {
			return err
		}
	}

	w, err := report.New(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	return batch.Run(cmd.Context(), configs, traceFile, w, limit, debugTimestamps)
}
