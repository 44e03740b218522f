package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/icsfix/icsfix/internal/relay"
)

// TestOutcomeString verifies the stable names used for metric labels
// and audit rows.
func TestOutcomeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeSuccess, "success"},
		{OutcomeMalformedURL, "malformed_url"},
		{OutcomeInsecureScheme, "insecure_scheme"},
		{OutcomeFetchFailed, "fetch_failed"},
		{OutcomeNotCalendar, "not_a_calendar"},
		{OutcomeTooLarge, "too_large"},
		{OutcomeMissingEventMarker, "missing_event_marker"},
		{OutcomeTimezoneUnavailable, "timezone_unavailable"},
		{OutcomeUnknown, "unknown"},
		{Outcome(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := tt.outcome.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestOutcomeForError verifies the mapping from the relay's closed
// error set, including wrapped causes.
func TestOutcomeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"nil is success", nil, OutcomeSuccess},
		{"malformed url", relay.ErrMalformedURL, OutcomeMalformedURL},
		{"insecure scheme", relay.ErrInsecureScheme, OutcomeInsecureScheme},
		{"fetch failed", relay.ErrFetchFailed, OutcomeFetchFailed},
		{"not a calendar", relay.ErrNotCalendarFile, OutcomeNotCalendar},
		{"too large", relay.ErrTooLarge, OutcomeTooLarge},
		{"missing event marker", relay.ErrMissingEventMarker, OutcomeMissingEventMarker},
		{"timezone unavailable", relay.ErrTimezoneDataUnavailable, OutcomeTimezoneUnavailable},
		{"wrapped cause still maps", fmt.Errorf("%w: connection reset", relay.ErrFetchFailed), OutcomeFetchFailed},
		{"foreign error is unknown", errors.New("surprise"), OutcomeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := OutcomeForError(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestRelayReport tests the per-request accumulator.
func TestRelayReport(t *testing.T) {
	t.Parallel()

	t.Run("new report starts clean", func(t *testing.T) {
		t.Parallel()
		r := NewRelayReport("https://example.com/cal.ics")
		if r.SourceURL != "https://example.com/cal.ics" {
			t.Errorf("unexpected source URL %q", r.SourceURL)
		}
		if !r.Succeeded() {
			// A fresh report has no error and outcome success.
			t.Error("expected fresh report to count as succeeded")
		}
	})

	t.Run("SetError derives outcome and message", func(t *testing.T) {
		t.Parallel()
		r := NewRelayReport("https://example.com/cal.ics")
		r.SetError(fmt.Errorf("%w: status 503", relay.ErrFetchFailed))

		if r.Succeeded() {
			t.Error("expected report to be failed")
		}
		if r.Outcome != OutcomeFetchFailed {
			t.Errorf("expected OutcomeFetchFailed, got %v", r.Outcome)
		}
		if r.ErrorMessage == "" {
			t.Error("expected error message to be recorded")
		}
	})
}
