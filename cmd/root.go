package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/internal/hostdb"
	"github.com/huangsam/chartwire/internal/logging"
	"github.com/huangsam/chartwire/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// hostManager is the global host manager instance.
var hostManager contract.HostManager = hostdb.Manager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "chartwire",
	Short:              "Bind charts to host records and keep them in sync.",
	Long:               `Chartwire fetches series data for a record, shapes it into bar, line or pie charts and redraws them whenever the record changes.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".chartwire") // Name of config file (without extension)
		viper.SetConfigType("yaml")       // We'll use YAML format
		viper.AddConfigPath(".")          // Look in the current directory
		viper.AddConfigPath("$HOME")      // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("CHARTWIRE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("output-dir", contract.DefaultOutputDir)
	viper.SetDefault("target", contract.DefaultTarget)
	viper.SetDefault("host-backend", schema.SQLiteBackend)
	viper.SetDefault("host-connect", "")
	viper.SetDefault("notifier", schema.PollNotifier)
	viper.SetDefault("poll-interval", contract.DefaultPollInterval.String())
	viper.SetDefault("query-timeout", contract.DefaultQueryTimeout.String())
	viper.SetDefault("redis-addr", contract.DefaultRedisAddr)
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", "warn")
	viper.SetDefault("log-format", "console")
}

// readInput reads the config file and unmarshals every resolved value into input.
func readInput(args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	if len(args) == 1 {
		input.RecordArg = args[0]
	}
	return nil
}

// initLogging configures bolt from the validated log settings.
func initLogging() {
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

// sharedSetup unmarshals config, runs validation and opens the host.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	if err := readInput(args); err != nil {
		return err
	}

	// Run all validation and complex parsing.
	// This function populates the global 'cfg' from 'input'.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	initLogging()

	// Initialize the host data source with validated config
	if err := hostdb.InitHost(hostdb.OptionsFromConfig(cfg)); err != nil {
		return fmt.Errorf("failed to initialize host: %w", err)
	}
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// configOnlySetup validates the configuration without opening the host.
func configOnlySetup(_ *cobra.Command, args []string) error {
	if err := readInput(args); err != nil {
		return err
	}
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	initLogging()
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetHostManager sets the global host manager.
func SetHostManager(mgr contract.HostManager) {
	hostManager = mgr
}
