package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/internal/hostdb"
	"github.com/huangsam/chartwire/internal/outwriter"
	"github.com/huangsam/chartwire/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// hostConfigSetup loads minimal configuration needed for host operations.
// This is used by commands that need host access without a chart definition.
func hostConfigSetup() error {
	if err := readInput(nil); err != nil {
		return err
	}
	if err := contract.ProcessHostOnly(cfg, input); err != nil {
		return err
	}

	// Output and logging are all the host commands need from the rest of the config
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	cfg.OutputFile = input.OutputFile
	cfg.LogLevel = strings.ToLower(input.LogLevel)
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	initLogging()
	return nil
}

// hostSetupWrapper validates the host settings and opens the host.
func hostSetupWrapper(_ *cobra.Command, _ []string) error {
	if err := hostConfigSetup(); err != nil {
		return err
	}
	if err := hostdb.InitHost(hostdb.OptionsFromConfig(cfg)); err != nil {
		return fmt.Errorf("failed to initialize host: %w", err)
	}
	return nil
}

// hostMigrateSetupWrapper validates the host settings without creating any tables,
// allowing migrations to run on a fresh database.
func hostMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return hostConfigSetup()
}

// hostCmd focused on host data source management.
//
// Note: Host subcommands use minimal initialization (hostConfigSetup) instead of
// the full sharedSetup used by chart commands. This skips chart validation so the
// host can be prepared before any chart is configured.
var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Manage the host data source (schema, demo data, change signals)",
	Long: `Manage the host that charts read their records from.

Supported backends: SQLite (default), MySQL, PostgreSQL, or a read-only YAML file

Subcommands:
  migrate - Apply or roll back the host schema migrations
  status  - Show host statistics and connection info
  seed    - Install the demo sales data and procedures
  touch   - Signal that a record changed so watchers redraw
  clear   - Remove the host tables

Examples:
  # Prepare a local demo host
  chartwire host migrate
  chartwire host seed

  # Check host status
  chartwire host status`,
}

// hostMigrateCmd runs the host schema migrations.
var hostMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the host schema to a target version",
	Long: `Apply host schema migrations with golang-migrate.

Versions:
  -1 - migrate to the latest version (default)
   0 - roll back every migration
   n - migrate up or down to version n

Examples:
  chartwire host migrate
  chartwire host migrate --target-version 1`,
	PreRunE: hostMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := hostdb.MigrateHost(cfg.HostBackend, cfg.HostConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to migrate host", err)
		}
	},
}

// hostStatusCmd shows host status.
var hostStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display host statistics and connection details",
	Long: `Show detailed information about the host data source.

Displays:
- Backend type and connection status
- Schema version and registered procedures
- Tracked records and the last revision timestamp
- Notifier backend and active watches

Examples:
  chartwire host status
  chartwire host status --output json`,
	PreRunE: hostSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		defer hostdb.CloseHost()
		status, err := hostManager.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get host status", err)
		}
		if err := outwriter.NewOutWriter().WriteStatus(status, cfg, hostdb.PrintHostStatus); err != nil {
			contract.LogFatal("Failed to print host status", err)
		}
	},
}

// hostSeedCmd installs the demo data.
var hostSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install the demo sales tables and procedures",
	Long: `Create the demo sales_chart, sales_series and sales_point tables, fill them
for chart c1 and register the Sales.* procedures. Running it again resets the demo rows.

Examples:
  chartwire host seed
  chartwire render c1 --config examples/.chartwire.yaml`,
	PreRunE: hostSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		defer hostdb.CloseHost()
		if err := hostdb.Manager.Seed(rootCtx); err != nil {
			contract.LogFatal("Failed to seed host", err)
		}
		fmt.Printf("Seeded demo chart %s.\n", hostdb.DemoChartID)
	},
}

// hostTouchCmd signals a record change.
var hostTouchCmd = &cobra.Command{
	Use:   "touch <record-id>",
	Short: "Mark a record as changed so watching charts redraw",
	Long: `Bump the revision of a record. Poll notifiers pick it up on their next tick;
the redis notifier also receives a publish on chartwire:record:<id>.

Examples:
  chartwire host touch c1
  chartwire host touch c1 --notifier redis`,
	Args:    cobra.ExactArgs(1),
	PreRunE: hostSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		defer hostdb.CloseHost()
		revision, err := hostdb.Manager.Touch(rootCtx, args[0])
		if err != nil {
			contract.LogFatal("Failed to touch record", err)
		}
		fmt.Printf("Touched record %s (revision %d).\n", args[0], revision)
	},
}

// hostClearCmd drops the host tables.
var hostClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the host tables",
	Long: `Delete the host bookkeeping tables from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the host_procedures and host_revisions tables
For file hosts: Refuses, the YAML file is never modified

Examples:
  # Clear MySQL host tables (set connection string via env variable)
  CHARTWIRE_HOST_BACKEND=mysql CHARTWIRE_HOST_CONNECT="..." chartwire host clear`,
	PreRunE: hostMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := hostdb.ClearHost(cfg.HostBackend, cfg.HostConnect); err != nil {
			contract.LogFatal("Failed to clear host", err)
		}
		fmt.Println("Host cleared successfully.")
	},
}
