package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/icsfix/icsfix/internal/model"
	"github.com/icsfix/icsfix/internal/relay"
	"github.com/icsfix/icsfix/internal/tzdata"
)

// Processor runs the standard four-step relay pipeline for one URL at a
// time. It is safe for concurrent use: the sniffer and fetcher hold
// only an http.Client each, and the timezone block is immutable.
type Processor struct {
	sniffer *relay.Sniffer
	fetcher *relay.Fetcher
	block   *tzdata.Block
	logger  *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithProcessorLogger sets a custom logger. Defaults to slog.Default().
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithSniffer replaces the default Sniffer. Used by the serve and fix
// commands to apply configured timeouts, and by tests to inject a
// client that trusts a local TLS server.
func WithSniffer(sniffer *relay.Sniffer) ProcessorOption {
	return func(p *Processor) {
		p.sniffer = sniffer
	}
}

// WithFetcher replaces the default Fetcher.
func WithFetcher(fetcher *relay.Fetcher) ProcessorOption {
	return func(p *Processor) {
		p.fetcher = fetcher
	}
}

// NewProcessor creates a Processor around the loaded timezone block.
//
// The block is passed in explicitly rather than loaded lazily behind a
// hidden global: initialization order and thread-safety are then plain
// from the call site, and a missing data file fails at startup instead
// of on the first unlucky request.
func NewProcessor(block *tzdata.Block, opts ...ProcessorOption) *Processor {
	p := &Processor{block: block}
	for _, opt := range opts {
		opt(p)
	}
	if p.sniffer == nil {
		p.sniffer = relay.NewSniffer()
	}
	if p.fetcher == nil {
		p.fetcher = relay.NewFetcher()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Process runs the full pipeline for rawURL and returns the completed
// report. The report is always returned, success or failure; failure
// details are on the report and in the returned error.
func (p *Processor) Process(ctx context.Context, rawURL string) (*model.RelayReport, error) {
	report := model.NewRelayReport(rawURL)

	pl := New(WithLogger(p.logger))
	pl.AddSteps(
		NewAdmissionStep(),
		NewSniffStep(p.sniffer),
		NewFetchStep(p.fetcher),
		NewInjectStep(p.block),
	)

	err := pl.Execute(ctx, report)
	report.Duration = time.Since(report.StartedAt)

	if err != nil {
		p.logger.Info("relay request failed",
			"url", rawURL,
			"outcome", report.Outcome.String(),
			"duration", report.Duration,
			"error", err,
		)
		return report, err
	}

	p.logger.Info("relay request succeeded",
		"url", rawURL,
		"bytes", report.BytesFetched,
		"duration", report.Duration,
	)
	return report, nil
}
