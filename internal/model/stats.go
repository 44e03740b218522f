package model

import "time"

// AuditSummary aggregates the audit store for reporting: total request
// counts per outcome plus the most recent individual records.
type AuditSummary struct {
	// GeneratedAt is when the summary was computed.
	GeneratedAt time.Time `json:"generated_at"`

	// TotalRequests is the number of stored requests across all outcomes.
	TotalRequests int64 `json:"total_requests"`

	// Outcomes maps outcome names to request counts.
	Outcomes map[string]int64 `json:"outcomes"`

	// Recent holds the newest audit records, newest first.
	Recent []AuditRecord `json:"recent"`
}

// NewAuditSummary builds a summary from outcome counts and recent records.
func NewAuditSummary(outcomes map[string]int64, recent []AuditRecord) *AuditSummary {
	var total int64
	for _, n := range outcomes {
		total += n
	}
	return &AuditSummary{
		GeneratedAt:   time.Now(),
		TotalRequests: total,
		Outcomes:      outcomes,
		Recent:        recent,
	}
}

// SuccessRate returns the fraction of successful requests, zero when
// the store is empty.
func (s *AuditSummary) SuccessRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.Outcomes[OutcomeSuccess.String()]) / float64(s.TotalRequests)
}
