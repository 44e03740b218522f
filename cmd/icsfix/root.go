// Package main provides the entry point for the icsfix CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for icsfix.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "icsfix",
		Short: "Fix timezone issues in ICS calendar files",
		Long: `icsfix fixes timezone issues in .ics calendar files (such as those
exported by Outlook or Office365) by injecting missing VTIMEZONE
definitions, so Google Calendar and other apps display event times
correctly.

Run "icsfix serve" to start the HTTP relay, or "icsfix fix" to process
calendar URLs directly from the command line.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewFixCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
