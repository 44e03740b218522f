package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/icsfix/icsfix/internal/config"
	applog "github.com/icsfix/icsfix/internal/log"
	"github.com/icsfix/icsfix/internal/model"
	"github.com/icsfix/icsfix/internal/pipeline"
	"github.com/icsfix/icsfix/internal/relay"
	"github.com/icsfix/icsfix/internal/tzdata"
)

// NewFixCmd creates the fix command.
func NewFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix <ics-url> [ics-url...]",
		Short: "Fix calendar URLs from the command line",
		Long: `Fix fetches one or more HTTPS calendar URLs, injects the missing
VTIMEZONE definitions, and writes out the fixed documents.

A single URL is written to stdout unless --output-dir is given.
Multiple URLs always require --output-dir; each document is written
to a file named after the URL path.

Examples:
  # Fix one calendar and print it
  icsfix fix https://example.com/calendar.ics > fixed.ics

  # Fix several calendars into a directory, four at a time
  icsfix fix -o fixed/ -b 4 https://a.example/cal.ics https://b.example/cal.ics`,
		Args: cobra.MinimumNArgs(1),
		RunE: runFixCmd,
	}

	cmd.Flags().StringP("output-dir", "o", "",
		"Directory to write fixed calendars to (created if needed)")
	cmd.Flags().IntP("concurrency", "b", 4,
		"Number of URLs processed concurrently")
	cmd.Flags().StringP("timezone-file", "z", "",
		"Path to the VTIMEZONE definitions file (default: search the usual locations)")
	cmd.Flags().Int64P("max-size", "s", config.DefaultMaxDocumentSize,
		"Maximum calendar document size in bytes")

	return cmd
}

// runFixCmd executes the fix command.
func runFixCmd(cmd *cobra.Command, args []string) error {
	outputDir, err := cmd.Flags().GetString("output-dir")
	if err != nil {
		return err
	}
	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}
	timezoneFile, err := cmd.Flags().GetString("timezone-file")
	if err != nil {
		return err
	}
	maxSize, err := cmd.Flags().GetInt64("max-size")
	if err != nil {
		return err
	}

	if len(args) > 1 && outputDir == "" {
		return fmt.Errorf("multiple URLs require --output-dir")
	}

	logger := applog.NewSecureLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	block, err := tzdata.Load(tzdata.FindDataFile(timezoneFile))
	if err != nil {
		return fmt.Errorf("failed to load timezone data: %w", err)
	}

	processor := pipeline.NewProcessor(block,
		pipeline.WithProcessorLogger(logger),
		pipeline.WithFetcher(relay.NewFetcher(relay.WithMaxDocumentSize(maxSize))),
	)

	bp := pipeline.NewBatchProcessor(processor,
		pipeline.WithConcurrency(concurrency),
		pipeline.WithBatchLogger(logger),
	)

	start := time.Now()
	reports, err := bp.ProcessBatch(cmd.Context(), args)
	if err != nil {
		return err
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	failed := 0
	for i, report := range reports {
		if !report.Succeeded() {
			failed++
			fmt.Fprintf(os.Stderr, "Error: %s: %s\n", applog.RedactURL(report.SourceURL), applog.RedactText(report.ErrorMessage))
			continue
		}
		if outputDir == "" {
			fmt.Fprint(cmd.OutOrStdout(), report.ModifiedDocument)
			continue
		}

		outPath := filepath.Join(outputDir, outputFileName(report, i))
		if err := os.WriteFile(outPath, []byte(report.ModifiedDocument), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes fetched)\n", outPath, report.BytesFetched)
	}

	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "Fixed %d/%d calendars in %s\n",
			len(reports)-failed, len(reports), time.Since(start).Round(time.Millisecond))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d calendars failed", failed, len(reports))
	}
	return nil
}

// outputFileName derives a file name for a fixed calendar from its
// source URL, falling back to a positional name when the URL gives
// nothing usable.
func outputFileName(report *model.RelayReport, index int) string {
	u, err := url.Parse(report.SourceURL)
	if err == nil {
		base := path.Base(u.Path)
		if strings.HasSuffix(base, ".ics") && base != ".ics" {
			return base
		}
	}
	return fmt.Sprintf("calendar_%d.ics", index+1)
}
