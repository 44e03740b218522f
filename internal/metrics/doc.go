// Package metrics provides Prometheus instrumentation for the relay.
//
// It tracks request counts by outcome, fetched document sizes,
// pipeline latency, and in-flight requests, and exposes them in the
// Prometheus text format via Metrics.Handler.
package metrics
