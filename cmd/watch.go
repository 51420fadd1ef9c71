package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/chartwire/core"
	"github.com/huangsam/chartwire/internal/contract"
	"github.com/spf13/cobra"
)

// watchCmd keeps the chart in sync with its record.
var watchCmd = &cobra.Command{
	Use:   "watch [record-id]",
	Short: "Render the chart and redraw it whenever the record changes.",
	Long: `Mount the chart on a record and subscribe to its change notifications.

Each notification starts a fresh fetch cycle. A cycle that is still running when the
next one starts is discarded, so the chart always shows the newest data.

Notifiers:
  poll  - watch the host_revisions table (default)
  redis - subscribe to chartwire:record:<id> channels
  none  - draw once and never refresh

Examples:
  # Watch record c1 and touch it from another shell
  chartwire watch c1
  chartwire host touch c1

  # Use Redis pub/sub for notifications
  chartwire watch c1 --notifier redis --redis-addr localhost:6379`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := core.ExecuteWatch(ctx, cfg, hostManager); err != nil {
			contract.LogFatal("Cannot watch chart", err)
		}
	},
}
