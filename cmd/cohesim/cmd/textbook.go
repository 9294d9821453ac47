package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/cohesim/internal/textbook"
)

// runTextbook drives the interactive coherence/replacer walkthrough
// named by args[0] against stdin, mirroring run_modes.cc's
// runTextbookMode, including its SIGINT handling so the table's
// bottom border still prints on interrupt.
func runTextbook(cmd *cobra.Command, args []string) error {
	ctx, cancel := textbook.NotifyInterrupt(cmd.Context())
	defer cancel()

	return textbook.Run(ctx, args[0], cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
}
