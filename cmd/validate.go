package cmd

import (
	"github.com/huangsam/chartwire/core"
	"github.com/huangsam/chartwire/internal/contract"
	"github.com/spf13/cobra"
)

// validateCmd checks the chart configuration.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the chart configuration without contacting the host.",
	Long: `Validate the chart definition and print the message a misconfigured chart shows.

Flag and unit errors are reported while loading the configuration. Series that
select the procedure data source without naming a procedure are reported here.

Examples:
  chartwire validate --config charts/sales.yaml`,
	Args:    cobra.NoArgs,
	PreRunE: configOnlySetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteValidate(rootCtx, cfg, nil); err != nil {
			contract.LogFatal("Invalid chart configuration", err)
		}
	},
}
