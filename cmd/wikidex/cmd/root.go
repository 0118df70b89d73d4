// Package cmd provides the CLI commands for wikidex.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/knowhub/wikidex/internal/logging"
)

const cliVersion = "1.0.0"

// Debug logging flag state, shared by the pre/post run hooks.
var (
	debugMode      bool
	configPath     string
	loggingCleanup func()
)

// NewRootCmd creates the root command for the wikidex CLI.
func NewRootCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "wikidex",
		Short: "Versioned knowledge base with hybrid search",
		Long: `Wikidex indexes a directory of markdown pages into immutable,
content-addressed versions and serves hybrid search (pattern,
semantic and keyword) over them.

Running 'wikidex' with no arguments starts the MCP server on stdio,
indexing the knowledge base on first use.`,
		Version: cliVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}
			return runServe(cmd.Context(), cmd, dir, false)
		},
	}

	cmd.SetVersionTemplate("wikidex version {{.Version}}\n")

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Knowledge base directory")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.wikidex/logs/")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newVersionsCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// startLogging enables file logging when --debug is set. MCP mode requires
// stdout to carry nothing but JSON-RPC, so logs never go to the terminal.
func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}
	cleanup, err := logging.SetupDefault(true)
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.Info("debug_logging_enabled", slog.String("log_file", logging.DefaultLogPath()))
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
