package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/icsfix/icsfix/internal/model"
)

// namespace prefixes every metric name.
const namespace = "icsfix"

// Metrics holds the Prometheus instruments for the relay.
//
// Design decision: each Metrics instance carries its own registry
// instead of registering with the global default. This keeps tests
// free of duplicate-registration panics and lets the server expose
// exactly the collectors it owns.
type Metrics struct {
	registry *prometheus.Registry

	// requestsTotal counts processed URLs by outcome name.
	requestsTotal *prometheus.CounterVec

	// documentBytes tracks the size distribution of fetched calendars.
	documentBytes prometheus.Histogram

	// requestDuration tracks end-to-end pipeline latency.
	requestDuration prometheus.Histogram

	// inFlight tracks requests currently in the pipeline.
	inFlight prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered on a
// fresh registry, including the standard Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total processed calendar URLs by outcome.",
		},
		[]string{"outcome"},
	)

	// Calendar feeds cluster well under the 800KB cap, so the buckets
	// stay in the KB range.
	m.documentBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_bytes",
			Help:      "Size of fetched calendar documents in bytes.",
			Buckets:   []float64{1024, 4096, 16384, 65536, 262144, 524288, 819200},
		},
	)

	m.requestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "End-to-end processing time per calendar URL.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	m.inFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "Calendar URLs currently being processed.",
		},
	)

	m.registry.MustRegister(
		m.requestsTotal,
		m.documentBytes,
		m.requestDuration,
		m.inFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Observe records the instruments for one finished pipeline run.
func (m *Metrics) Observe(report *model.RelayReport) {
	m.requestsTotal.WithLabelValues(report.Outcome.String()).Inc()
	m.requestDuration.Observe(report.Duration.Seconds())
	if report.BytesFetched > 0 {
		m.documentBytes.Observe(float64(report.BytesFetched))
	}
}

// RequestStarted increments the in-flight gauge. Pair with RequestDone.
func (m *Metrics) RequestStarted() {
	m.inFlight.Inc()
}

// RequestDone decrements the in-flight gauge.
func (m *Metrics) RequestDone() {
	m.inFlight.Dec()
}

// Handler returns the HTTP handler serving the Prometheus exposition
// format for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
