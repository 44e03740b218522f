package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/icsfix/icsfix/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.AuditSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeOutcomes(md, summary)
	w.writeRecent(md, summary)

	return len(md.String()), md.Build()
}

// writeHeader writes the summary header.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.AuditSummary) {
	md.H1("Relay Request Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Total Requests", strconv.FormatInt(summary.TotalRequests, 10)},
			{"Success Rate", strconv.FormatFloat(summary.SuccessRate()*100, 'f', 1, 64) + "%"},
		},
	})
	md.PlainText("")
}

// writeOutcomes writes the per-outcome table and distribution chart.
func (w *MarkdownWriter) writeOutcomes(md *markdown.Markdown, summary *model.AuditSummary) {
	md.H2("Outcomes")
	md.PlainText("")

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

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, strconv.FormatInt(summary.Outcomes[name], 10)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if summary.TotalRequests > 0 {
		w.writePieChart(md, names, summary)
	}
}

// writePieChart writes a mermaid pie chart for the outcome distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, names []string, summary *model.AuditSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Request Outcome Distribution"),
		piechart.WithShowData(true),
	)

	for _, name := range names {
		if n := summary.Outcomes[name]; n > 0 {
			chart.LabelAndIntValue(name, uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeRecent writes the newest audit records as a table.
func (w *MarkdownWriter) writeRecent(md *markdown.Markdown, summary *model.AuditSummary) {
	if len(summary.Recent) == 0 {
		return
	}

	md.H2("Recent Requests")
	md.PlainText("")

	rows := make([][]string, 0, len(summary.Recent))
	for _, r := range summary.Recent {
		rows = append(rows, []string{
			r.Timestamp.Format("2006-01-02 15:04:05"),
			"`" + r.Host + "`",
			r.Outcome,
			strconv.FormatInt(r.BytesFetched, 10),
			strconv.FormatInt(r.DurationMS, 10) + "ms",
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Time", "Host", "Outcome", "Bytes", "Duration"},
		Rows:   rows,
	})
	md.PlainText("")
}
