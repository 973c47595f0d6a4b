package cmd

import (
	"fmt"
	"os"

	"github.com/barff/cccs/internal/config"
	"github.com/barff/cccs/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	dirFlag  string
	logLevel string
	verbose  bool
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cccs",
	Short: "Switch between Claude Code settings profiles",
	Long: `cccs manages named Claude Code settings profiles.

Profiles live next to the active settings.json as {name}.settings.json.
cccs shows which profile the active configuration matches, switches
profiles atomically, and can watch for changes in the background.

Run without a subcommand to start watching when monitor.autoStart is
enabled, or to print the current status otherwise.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Shutdown()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Monitor.AutoStart {
			return runWatch(cmd, args)
		}
		return runStatus(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/cccs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "Claude Code configuration directory (default: auto-detect)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if dirFlag != "" {
		cfg.Claude.Dir = dirFlag
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	} else if verbose {
		cfg.Logging.Level = "debug"
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	return nil
}

// PrintVerbose prints a message if verbose mode is enabled
func PrintVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format+"\n", args...)
	}
}

// PrintError prints an error message to stderr
func PrintError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
