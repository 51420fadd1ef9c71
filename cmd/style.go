package cmd

import (
	"github.com/huangsam/chartwire/core"
	"github.com/huangsam/chartwire/internal/contract"
	"github.com/spf13/cobra"
)

// styleCmd parses an inline style string.
var styleCmd = &cobra.Command{
	Use:   "style [style-text]",
	Short: "Parse an inline CSS style string.",
	Long: `Show how a style string is read. Property names are converted to camelCase
and lines without a colon are skipped. Without an argument the chart style is used.

Examples:
  chartwire style "background-color: #fafafa; font-size: 12px"
  chartwire style --output json`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return configOnlySetup(cmd, nil)
	},
	Run: func(_ *cobra.Command, args []string) {
		text := ""
		if len(args) == 1 {
			text = args[0]
		}
		if err := core.ExecuteStyle(cfg, text); err != nil {
			contract.LogFatal("Cannot parse style", err)
		}
	},
}
