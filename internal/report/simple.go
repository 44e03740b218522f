package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/icsfix/icsfix/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showRecent controls whether the recent-requests section is shown.
	showRecent bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowRecent configures the writer to include recent requests.
func WithShowRecent(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showRecent = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showRecent: true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.AuditSummary) (int, error) {
	var sb strings.Builder

	sb.WriteString("Relay Request Summary\n")
	sb.WriteString("=====================\n")
	fmt.Fprintf(&sb, "Generated:      %s\n", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Total requests: %d\n", summary.TotalRequests)
	fmt.Fprintf(&sb, "Success rate:   %.1f%%\n\n", summary.SuccessRate()*100)

	w.writeOutcomes(&sb, summary)

	if w.showRecent && len(summary.Recent) > 0 {
		w.writeRecent(&sb, summary)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeOutcomes writes the per-outcome counts, largest first.
func (w *SimpleWriter) writeOutcomes(sb *strings.Builder, summary *model.AuditSummary) {
	sb.WriteString("Outcomes\n")
	sb.WriteString("--------\n")

	names := make([]string, 0, len(summary.Outcomes))
	for name := range summary.Outcomes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if summary.Outcomes[names[i]] != summary.Outcomes[names[j]] {
			return summary.Outcomes[names[i]] > summary.Outcomes[names[j]]
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		fmt.Fprintf(sb, "  %-22s %d\n", name, summary.Outcomes[name])
	}
	sb.WriteString("\n")
}

// writeRecent writes the newest audit records.
func (w *SimpleWriter) writeRecent(sb *strings.Builder, summary *model.AuditSummary) {
	fmt.Fprintf(sb, "Recent Requests (%d)\n", len(summary.Recent))
	sb.WriteString("-------------------\n")

	for _, r := range summary.Recent {
		fmt.Fprintf(sb, "  %s  %-22s %-30s %6d bytes  %dms\n",
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Outcome,
			r.Host,
			r.BytesFetched,
			r.DurationMS,
		)
		if r.ErrorMessage != "" {
			fmt.Fprintf(sb, "      %s\n", r.ErrorMessage)
		}
	}
}
