package cmd

import (
	"github.com/huangsam/chartwire/core"
	"github.com/huangsam/chartwire/internal/contract"
	"github.com/spf13/cobra"
)

// clickCmd runs the chart click action.
var clickCmd = &cobra.Command{
	Use:   "click [record-id]",
	Short: "Run the configured click action against a record.",
	Long: `Simulate a click on the chart.

Actions:
  doNothing     - ignore the click (default)
  showPage      - ask the host to open the configured page for the record
  callProcedure - run the configured procedure with the record as its parameter

Examples:
  # Count a view on the demo chart
  chartwire click c1`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteClick(rootCtx, cfg, hostManager); err != nil {
			contract.LogFatal("Cannot run click action", err)
		}
	},
}
