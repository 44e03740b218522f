package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/icsfix/icsfix/internal/database"
	"github.com/icsfix/icsfix/internal/model"
)

// seedAuditStore creates a populated audit store in a temp directory.
func seedAuditStore(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to create audit store: %v", err)
	}
	defer db.Close()

	records := []*model.AuditRecord{
		{Host: "calendar.example.com", Outcome: "success", BytesFetched: 2048, DurationMS: 80},
		{Host: "calendar.example.com", Outcome: "success", BytesFetched: 2048, DurationMS: 75},
		{Host: "broken.example.com", Outcome: "fetch_failed", ErrorMessage: "failed to fetch the remote file"},
	}
	for _, r := range records {
		if _, err := db.SaveRequest(context.Background(), r); err != nil {
			t.Fatalf("failed to seed audit store: %v", err)
		}
	}
	return dir
}

// TestRunStatsCmd tests the stats command against a seeded store.
func TestRunStatsCmd(t *testing.T) {
	t.Parallel()

	t.Run("text summary", func(t *testing.T) {
		t.Parallel()

		dir := seedAuditStore(t)

		var buf bytes.Buffer
		cmd := NewStatsCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--db-dir", dir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"Total requests: 3", "success", "fetch_failed", "calendar.example.com"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("json summary", func(t *testing.T) {
		t.Parallel()

		dir := seedAuditStore(t)

		var buf bytes.Buffer
		cmd := NewStatsCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--db-dir", dir, "--json"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var summary model.AuditSummary
		if err := json.Unmarshal(buf.Bytes(), &summary); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if summary.TotalRequests != 3 {
			t.Errorf("expected 3 total requests, got %d", summary.TotalRequests)
		}
	})

	t.Run("limit bounds the recent section", func(t *testing.T) {
		t.Parallel()

		dir := seedAuditStore(t)

		var buf bytes.Buffer
		cmd := NewStatsCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--db-dir", dir, "--json", "-n", "1"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var summary model.AuditSummary
		if err := json.Unmarshal(buf.Bytes(), &summary); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(summary.Recent) != 1 {
			t.Errorf("expected 1 recent record, got %d", len(summary.Recent))
		}
	})

	t.Run("missing store is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewStatsCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--db-dir", t.TempDir()})

		if err := cmd.Execute(); err == nil {
			t.Fatal("expected an error for a missing audit store")
		}
	})

	t.Run("json and markdown are mutually exclusive", func(t *testing.T) {
		t.Parallel()

		cmd := NewStatsCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--json", "--markdown"})

		if err := cmd.Execute(); err == nil {
			t.Fatal("expected an error for conflicting output flags")
		}
	})
}
