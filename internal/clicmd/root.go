// Package clicmd provides the hivemindd-cli command-line interface: an
// operator's companion to the hivemindd server for offline snapshot
// management and status inspection. Grounded on internal/cli/root.go's
// cobra root command shape (global flags, lazy client init, version
// subcommand bypass), with the RAG-specific subcommands replaced by
// HiveMindDB's own.
package clicmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hivemindlabs/hivemindd/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

var (
	verbose bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "hivemindd-cli",
	Short:   "Operator CLI for the hivemindd memory service",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		cfg = config.Load()
		return nil
	},
}

// Execute runs the CLI, returning any error from the selected subcommand.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(statusCmd)
}

func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// loggerFromConfig builds the dual-sink logger the same way the server
// entrypoint does, so `hivemindd-cli serve` behaves identically to `hivemindd`.
func loggerFromConfig() (*slog.Logger, func() error) {
	return config.SetupLogger(cfg.LogFile, cfg.LogLevel)
}
