package model

import "time"

// RelayReport accumulates the state of a single relay request as it
// moves through the pipeline stages. Each request owns exactly one
// report; nothing in it is shared or reused across requests.
type RelayReport struct {
	// SourceURL is the caller-supplied URL, as received.
	SourceURL string

	// Document is the fetched, decoded calendar text. Empty until the
	// fetch stage completes; discarded with the report when the request
	// ends.
	Document string

	// ModifiedDocument is the final text with the timezone block spliced
	// in. Empty unless the request succeeded.
	ModifiedDocument string

	// BytesFetched is the raw byte count of the full download. Zero for
	// requests that failed before or during the fetch.
	BytesFetched int64

	// Outcome classifies how the request ended.
	Outcome Outcome

	// Err is the pipeline error that terminated the request, nil on
	// success.
	Err error

	// ErrorMessage is Err's text, kept separately so the report stays
	// meaningful after serialization.
	ErrorMessage string

	// PerformedStages lists the stage names executed, in order, including
	// the one that failed.
	PerformedStages []string

	// StartedAt is when the pipeline began executing.
	StartedAt time.Time

	// Duration is the total pipeline execution time.
	Duration time.Duration
}

// NewRelayReport creates a report for one request.
func NewRelayReport(sourceURL string) *RelayReport {
	return &RelayReport{
		SourceURL: sourceURL,
		StartedAt: time.Now(),
	}
}

// SetError records the terminating error and derives the outcome.
func (r *RelayReport) SetError(err error) {
	r.Err = err
	r.ErrorMessage = err.Error()
	r.Outcome = OutcomeForError(err)
}

// Succeeded reports whether the pipeline completed all stages.
func (r *RelayReport) Succeeded() bool {
	return r.Err == nil && r.Outcome == OutcomeSuccess
}
