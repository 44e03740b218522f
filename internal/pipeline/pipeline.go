package pipeline

import (
	"context"
	"log/slog"

	"github.com/icsfix/icsfix/internal/model"
)

// Step is one stage of the relay pipeline. Steps are executed in
// sequence, each receiving the report accumulated by earlier steps.
type Step interface {
	// Do executes the step, reading and extending the report. A non-nil
	// error terminates the pipeline for this request.
	Do(ctx context.Context, report *model.RelayReport) error

	// Name returns the step's name for logging and the stage trail.
	Name() string
}

// Pipeline executes an ordered list of steps for a single request.
//
// Unlike a batch scanner there is no continue-on-error mode: every
// stage's output is the next stage's input, so the first failure is
// always terminal.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline; add stages with AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps in execution order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Execute runs the steps in order, short-circuiting on the first error.
// The failing step's error is recorded on the report and returned.
//
// Context cancellation is checked between steps; the network steps also
// honor it internally through their HTTP requests.
func (p *Pipeline) Execute(ctx context.Context, report *model.RelayReport) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"url", report.SourceURL,
				"reason", ctx.Err(),
			)
			report.SetError(ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"url", report.SourceURL,
		)

		report.PerformedStages = append(report.PerformedStages, step.Name())

		if err := step.Do(ctx, report); err != nil {
			p.logger.Info("step failed",
				"step", step.Name(),
				"url", report.SourceURL,
				"error", err,
			)
			report.SetError(err)
			return err
		}
	}

	return nil
}
