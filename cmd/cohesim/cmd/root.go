// Package cmd implements cohesim's command-line surface: argument-count
// dispatch across textbook, batch, and single-configuration run modes,
// mirroring the reference simulator's own switch(argc) in main.cc.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cohesim/internal/config"
	"github.com/sarchlab/cohesim/internal/diagnostics"
)

var (
	strict           bool
	debugTimestamps  bool
	debugTimestampDB string
)

var rootCmd = &cobra.Command{
	Use:   "cohesim",
	Short: "Simulate an L1 cache coherence hierarchy against a memory trace.",
	Long: `cohesim simulates the L1 cache coherence hierarchy of a shared-memory
multiprocessor against a recorded trace.

Usage:
  (1) cohesim <coherence|replacer>
  (2) cohesim <configuration> <trace_file> [trace_limit]
Description:
  (1) Run the simulator in textbook mode (an interactive walkthrough of
      one coherence protocol or replacement policy)
  (2) Run the simulator in metrics mode (see below)
Options:
  configuration: Either a single memory system configuration (see below) or
                   the path to a file containing multiple memory system configurations
  trace_file:    The path to the input trace file
  trace_limit:   (Optional) The maximum number of trace entries to read
Memory system configuration:
  Syntax:
    <cache_size[unit]> <line_size> <associativity> <coherence> <replacer> <directory>`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	_ = godotenv.Load()

	rootCmd.Flags().BoolVar(&strict, "strict", false, "panic on a protocol reaching an unreachable state, instead of logging and continuing")
	rootCmd.Flags().BoolVar(&debugTimestamps, "debug-timestamps", false, "enable write-timestamp cross-cache consistency verification")
	rootCmd.Flags().StringVar(&debugTimestampDB, "debug-timestamps-db", "", "path to a SQLite database recording every timestamp discrepancy found (only with --debug-timestamps)")
}

// Execute runs the root command, exiting the process with the
// argument-index/config-id packed exit code convention spec.md §7
// defines whenever a *config.ParseError escapes a run mode.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var parseErr *config.ParseError
	if pe, ok := err.(*config.ParseError); ok {
		parseErr = pe
	}
	if parseErr != nil {
		fmt.Fprintln(os.Stderr, parseErr.Error())
		os.Exit(parseErr.ExitCode())
	}

	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func runRoot(cmd *cobra.Command, args []string) error {
	diagnostics.SetStrict(strict)

	if debugTimestamps && debugTimestampDB != "" {
		sink, err := diagnostics.NewSQLiteDiscrepancySink(debugTimestampDB)
		if err != nil {
			return fmt.Errorf("opening debug-timestamps database: %w", err)
		}
		diagnostics.SetDiscrepancySink(sink)
		defer sink.Close()
	}

	switch len(args) {
	case 0:
		return cmd.Usage()
	case 1:
		return runTextbook(cmd, args)
	case 2, 3:
		return runBatch(cmd, args)
	case config.FieldCount+1, config.FieldCount+2:
		return runSingle(cmd, args)
	default:
		return fmt.Errorf("argument count mismatch")
	}
}
