package model

import (
	"errors"

	"github.com/icsfix/icsfix/internal/relay"
)

// Outcome classifies how a relay request ended. There is exactly one
// outcome per request: success, or the relay error that terminated the
// pipeline.
//
// Design decision: We use iota-based constants with a String() method
// rather than reusing the sentinel errors directly because outcomes are
// also label values for metrics and column values for the audit store,
// which need stable short names, not error message text.
type Outcome int

const (
	// OutcomeSuccess means the document was fetched, injected, and returned.
	OutcomeSuccess Outcome = iota

	// OutcomeMalformedURL means the caller's string did not parse as an
	// absolute URL.
	OutcomeMalformedURL

	// OutcomeInsecureScheme means the URL used a scheme other than https.
	OutcomeInsecureScheme

	// OutcomeFetchFailed means a transport-level failure during sniffing
	// or fetching: DNS, timeout, reset, or a non-success status.
	OutcomeFetchFailed

	// OutcomeNotCalendar means the sniffed bytes lacked BEGIN:VCALENDAR.
	OutcomeNotCalendar

	// OutcomeTooLarge means the document exceeded the size ceiling.
	OutcomeTooLarge

	// OutcomeMissingEventMarker means the fetched document had no
	// BEGIN:VEVENT to anchor the injection.
	OutcomeMissingEventMarker

	// OutcomeTimezoneUnavailable means the operator-provided timezone
	// definitions were missing or empty. A deployment fault.
	OutcomeTimezoneUnavailable

	// OutcomeUnknown means the request failed with an error outside the
	// relay's closed set. Should not happen; kept so metrics never lie.
	OutcomeUnknown
)

// String returns the stable short name used as a metric label and audit
// store value.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeMalformedURL:
		return "malformed_url"
	case OutcomeInsecureScheme:
		return "insecure_scheme"
	case OutcomeFetchFailed:
		return "fetch_failed"
	case OutcomeNotCalendar:
		return "not_a_calendar"
	case OutcomeTooLarge:
		return "too_large"
	case OutcomeMissingEventMarker:
		return "missing_event_marker"
	case OutcomeTimezoneUnavailable:
		return "timezone_unavailable"
	default:
		return "unknown"
	}
}

// OutcomeForError maps a relay pipeline error to its Outcome. A nil
// error maps to OutcomeSuccess.
func OutcomeForError(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, relay.ErrMalformedURL):
		return OutcomeMalformedURL
	case errors.Is(err, relay.ErrInsecureScheme):
		return OutcomeInsecureScheme
	case errors.Is(err, relay.ErrNotCalendarFile):
		return OutcomeNotCalendar
	case errors.Is(err, relay.ErrTooLarge):
		return OutcomeTooLarge
	case errors.Is(err, relay.ErrMissingEventMarker):
		return OutcomeMissingEventMarker
	case errors.Is(err, relay.ErrTimezoneDataUnavailable):
		return OutcomeTimezoneUnavailable
	case errors.Is(err, relay.ErrFetchFailed):
		return OutcomeFetchFailed
	default:
		return OutcomeUnknown
	}
}
