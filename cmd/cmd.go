// Package cmd defines the command-line interface for chartwire.
package cmd

import (
	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(dataCmd)
	rootCmd.AddCommand(clickCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(styleCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the host subcommands to the parent host command
	hostCmd.AddCommand(hostMigrateCmd)
	hostCmd.AddCommand(hostStatusCmd)
	hostCmd.AddCommand(hostSeedCmd)
	hostCmd.AddCommand(hostTouchCmd)
	hostCmd.AddCommand(hostClearCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("record", "", "Record id the chart is bound to")
	rootCmd.PersistentFlags().String("target", contract.DefaultTarget, "Chart container name, used as the HTML file name")
	rootCmd.PersistentFlags().String("host-backend", string(schema.SQLiteBackend), "Host backend: sqlite or mysql or postgresql or file")
	rootCmd.PersistentFlags().String("host-connect", "", "Host connection string or YAML file path (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("notifier", string(schema.PollNotifier), "Change notifier: poll or redis or none")
	rootCmd.PersistentFlags().String("poll-interval", contract.DefaultPollInterval.String(), "Revision polling interval for the poll notifier")
	rootCmd.PersistentFlags().String("query-timeout", contract.DefaultQueryTimeout.String(), "Timeout of a single host query")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent host queries")
	rootCmd.PersistentFlags().String("redis-addr", contract.DefaultRedisAddr, "Redis address for the redis notifier")
	rootCmd.PersistentFlags().String("redis-password", "", "Redis password (prefer CHARTWIRE_REDIS_PASSWORD)")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis database number")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("output-dir", contract.DefaultOutputDir, "Directory for rendered HTML charts")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: trace or debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format: console or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of hostMigrateCmd to Viper
	hostMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(hostMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding host migrate flags", err)
	}
}
