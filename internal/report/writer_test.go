package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/icsfix/icsfix/internal/model"
)

// testSummary builds a small summary with mixed outcomes.
func testSummary(t *testing.T) *model.AuditSummary {
	t.Helper()

	summary := model.NewAuditSummary(
		map[string]int64{
			"success":      8,
			"too_large":    1,
			"fetch_failed": 1,
		},
		[]model.AuditRecord{
			{
				ID:           10,
				Timestamp:    time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC),
				Host:         "calendar.example.com",
				Outcome:      "success",
				BytesFetched: 4096,
				DurationMS:   120,
			},
			{
				ID:           9,
				Timestamp:    time.Date(2026, 8, 28, 10, 29, 0, 0, time.UTC),
				Host:         "broken.example.com",
				Outcome:      "fetch_failed",
				ErrorMessage: "failed to fetch the remote file",
			},
		},
	)
	return summary
}

// TestNewAuditSummary tests total and rate derivation.
func TestNewAuditSummary(t *testing.T) {
	t.Parallel()

	summary := testSummary(t)
	if summary.TotalRequests != 10 {
		t.Errorf("expected 10 total requests, got %d", summary.TotalRequests)
	}
	if got := summary.SuccessRate(); got != 0.8 {
		t.Errorf("expected success rate 0.8, got %v", got)
	}

	empty := model.NewAuditSummary(nil, nil)
	if got := empty.SuccessRate(); got != 0 {
		t.Errorf("expected zero success rate for an empty store, got %v", got)
	}
}

// TestSimpleWriter tests the human-readable output.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes all sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		n, err := w.Write(testSummary(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"Relay Request Summary",
			"Total requests: 10",
			"Success rate:   80.0%",
			"success",
			"too_large",
			"Recent Requests (2)",
			"calendar.example.com",
			"failed to fetch the remote file",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("recent section can be hidden", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowRecent(false))

		if _, err := w.Write(testSummary(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "Recent Requests") {
			t.Error("expected recent section to be hidden")
		}
	})

	t.Run("outcomes are sorted by count descending", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowRecent(false))

		if _, err := w.Write(testSummary(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if strings.Index(out, "success") > strings.Index(out, "too_large") {
			t.Error("expected the largest outcome first")
		}
	})
}

// TestJSONWriter tests the machine-readable output.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output round-trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(testSummary(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.AuditSummary
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.TotalRequests != 10 {
			t.Errorf("expected 10 total requests, got %d", decoded.TotalRequests)
		}
		if len(decoded.Recent) != 2 {
			t.Errorf("expected 2 recent records, got %d", len(decoded.Recent))
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(testSummary(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})
}

// TestMarkdownWriter tests the Markdown output.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	if _, err := w.Write(testSummary(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Relay Request Summary",
		"## Outcomes",
		"| Outcome |",
		"pie",
		"## Recent Requests",
		"`calendar.example.com`",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected markdown to contain %q", want)
		}
	}
}

// TestMultiWriter tests fan-out to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

	if _, err := mw.Write(testSummary(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("expected both writers to receive output")
	}
}
