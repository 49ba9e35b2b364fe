package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fentz26/taskgov/internal/config"
	"github.com/fentz26/taskgov/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "taskgov",
	Short: "taskgov - task board governance reports",
	Long: `taskgov reads an exported task board snapshot, checks it against the
work-in-progress, blocked-item and priority rules, and publishes a static
HTML report.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var (
	configDir string
	verbose   bool

	cfg    *config.Config
	logger *zap.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory containing .taskgov/config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(reportCmd, checkCmd, fetchCmd, factsCmd, summaryCmd, historyCmd, serveCmd, statusCmd, watchCmd, browseCmd, versionCmd)
}

// skipSetup lists commands that run without configuration.
var skipSetup = map[string]bool{
	"version":    true,
	"help":       true,
	"completion": true,
}

// setup loads configuration and builds the logger before any subcommand.
func setup(cmd *cobra.Command, args []string) error {
	if skipSetup[cmd.Name()] {
		return nil
	}

	loaded, err := config.LoadConfig(configDir)
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err = logging.New(level, cfg.Log.Development)
	if err != nil {
		return err
	}
	return nil
}

// exitCode maps an error returned by a command to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrViolations):
		return 2
	default:
		return 1
	}
}

func main() {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, ErrViolations) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}
