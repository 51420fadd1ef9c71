package cmd

import (
	"github.com/huangsam/chartwire/core"
	"github.com/huangsam/chartwire/internal/contract"
	"github.com/spf13/cobra"
)

// dataCmd prints the dataset the chart would draw.
var dataCmd = &cobra.Command{
	Use:   "data [record-id]",
	Short: "Print the chart dataset for a record.",
	Long: `Run one fetch cycle and print the ordered series instead of drawing them.

Values that cannot be read as numbers are kept as gaps. They print as NaN in
text tables, as empty cells in CSV and as null in JSON and Parquet.

Examples:
  # Show the dataset as a table
  chartwire data c1

  # Export for analysis
  chartwire data c1 --output csv --output-file sales.csv
  chartwire data c1 --output parquet --output-file sales.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteData(rootCtx, cfg, hostManager); err != nil {
			contract.LogFatal("Cannot collect chart data", err)
		}
	},
}
