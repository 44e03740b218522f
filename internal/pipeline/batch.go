package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/icsfix/icsfix/internal/model"
)

// BatchProcessor fixes multiple calendar URLs concurrently. It backs
// the one-shot CLI mode, where a user hands over a list of feeds and
// wants every result, not just the first failure.
type BatchProcessor struct {
	processor *Processor

	// concurrency caps simultaneous pipeline runs. Each run holds up to
	// the full size ceiling in memory, so this also bounds peak memory.
	concurrency int

	logger *slog.Logger

	results []*model.RelayReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch-level messages.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent pipeline runs.
// Default is 4; non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor over a shared Processor.
// The Processor is safe for concurrent use, so one instance serves the
// whole batch.
func NewBatchProcessor(processor *Processor, opts ...BatchOption) *BatchProcessor {
	b := &BatchProcessor{
		processor:   processor,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// ProcessBatch runs the pipeline for every URL, at most `concurrency`
// at a time, and returns one report per URL in input order.
//
// Individual failures are recorded in their reports and do not abort
// the rest of the batch. The error return is non-nil only when the
// batch itself was cancelled via ctx.
func (b *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*model.RelayReport, error) {
	b.logger.Info("starting batch",
		"total", len(urls),
		"concurrency", b.concurrency,
	)
	start := time.Now()

	b.results = make([]*model.RelayReport, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, rawURL := range urls {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			// Failure details live on the report; only cancellation
			// propagates to the group.
			report, _ := b.processor.Process(ctx, rawURL)

			b.mu.Lock()
			b.results[i] = report
			b.mu.Unlock()
			return nil
		})
	}

	err := g.Wait()

	b.logger.Info("batch complete",
		"total", len(urls),
		"elapsed", time.Since(start),
	)
	return b.results, err
}
