package cmd

import (
	"github.com/huangsam/chartwire/core"
	"github.com/huangsam/chartwire/internal/contract"
	"github.com/spf13/cobra"
)

// renderCmd draws the configured chart once.
var renderCmd = &cobra.Command{
	Use:   "render [record-id]",
	Short: "Render the configured chart for a record as HTML.",
	Long: `Run one fetch cycle for the bound record and write the chart to <output-dir>/<target>.html.

Every static series is fetched concurrently. Dynamic series are listed first and
then fetched alongside them. The chart is drawn only after all series arrive.

When the configuration is invalid, the chart file shows the configuration message
instead and no data is fetched. When a retrieval fails, the chart is drawn empty
and the error is reported.

Examples:
  # Render the chart defined in .chartwire for record c1
  chartwire render c1

  # Render against a MySQL host into a custom directory
  CHARTWIRE_HOST_CONNECT="user:pass@tcp(localhost:3306)/app" chartwire render c1 --host-backend mysql --output-dir out`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRender(rootCtx, cfg, hostManager); err != nil {
			contract.LogFatal("Cannot render chart", err)
		}
	},
}
