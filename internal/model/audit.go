package model

import "time"

// AuditRecord is one row of the optional request audit store.
//
// It deliberately carries no document content and no full URL: the
// relay never persists fetched calendar data, and subscription URLs
// routinely embed access tokens. Only the host survives, for spotting
// abusive or broken upstreams.
type AuditRecord struct {
	// ID is the database row ID, zero before the record is saved.
	ID int64 `json:"id"`

	// Timestamp is when the request finished.
	Timestamp time.Time `json:"timestamp"`

	// Host is the hostname of the source URL. Path and query are dropped.
	Host string `json:"host"`

	// Outcome is the stable outcome name, see Outcome.String.
	Outcome string `json:"outcome"`

	// ErrorMessage is the pipeline error text, empty on success.
	ErrorMessage string `json:"error_message,omitempty"`

	// BytesFetched is the raw size of the downloaded document.
	BytesFetched int64 `json:"bytes_fetched"`

	// DurationMS is the pipeline execution time in milliseconds.
	DurationMS int64 `json:"duration_ms"`
}
