package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/icsfix/icsfix/internal/config"
	"github.com/icsfix/icsfix/internal/database"
	"github.com/icsfix/icsfix/internal/model"
	"github.com/icsfix/icsfix/internal/report"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the request audit store",
		Long: `Stats reads the request audit store written by "icsfix serve" and
prints per-outcome counts plus the most recent requests.

The audit store holds outcomes only: hostnames, sizes, and durations.
It never contains calendar content or full source URLs.

Examples:
  # Summarize the default audit store
  icsfix stats

  # Emit JSON for further processing
  icsfix stats --json

  # Markdown with the 50 newest requests
  icsfix stats --markdown -n 50`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}

	cmd.Flags().String("db-dir", "",
		"Directory of the audit store (default: XDG data directory)")
	cmd.Flags().IntP("limit", "n", 20,
		"Number of recent requests to include")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOut && markdownOut {
		return fmt.Errorf("--json and --markdown are mutually exclusive")
	}

	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Never create a store here: stats over an empty relay should say
	// so rather than leave an empty database behind.
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open audit store (has the relay run yet?): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	counts, err := db.CountByOutcome(ctx)
	if err != nil {
		return fmt.Errorf("failed to aggregate outcomes: %w", err)
	}
	recent, err := db.RecentRequests(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read recent requests: %w", err)
	}

	summary := model.NewAuditSummary(counts, recent)

	var writer report.Writer
	switch {
	case jsonOut:
		writer = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint())
	case markdownOut:
		writer = report.NewMarkdownWriter(cmd.OutOrStdout())
	default:
		writer = report.NewSimpleWriter(cmd.OutOrStdout())
	}

	_, err = writer.Write(summary)
	return err
}
