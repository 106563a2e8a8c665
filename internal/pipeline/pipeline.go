package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Step is one stage of a run.
type Step interface {
	// Do executes the step. Problems that leave the run usable are
	// recorded in run and nil is returned.
	Do(ctx context.Context, run *Run) error

	// Name returns the step's name for logging.
	Name() string
}

// finalStep is implemented by steps that still run once the pipeline has
// stopped, so that whatever the run collected is kept.
type finalStep interface {
	Step
	final()
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several steps.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against run. Cancellation is checked between
// steps. The pipeline stops at the first failing step or at cancellation;
// after that only final steps (export, history) run, on a context that is
// no longer cancelled. The stop reason is returned and kept in run.Error.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	var stopErr error
	for _, step := range p.steps {
		logger := p.logger.With("step", step.Name(), "username", run.Username)

		if stopErr == nil {
			if err := ctx.Err(); err != nil {
				logger.Warn("pipeline cancelled", "reason", err)
				if run.Error == nil {
					run.Error = err
				}
				stopErr = err
			}
		}

		stepCtx := ctx
		if stopErr != nil {
			if _, ok := step.(finalStep); !ok {
				continue
			}
			stepCtx = context.WithoutCancel(ctx)
		}

		if err := p.runStep(stepCtx, logger, step, run); err != nil {
			if stopErr == nil {
				stopErr = err
			}
			continue
		}
		run.PerformedSteps = append(run.PerformedSteps, step.Name())
	}
	return stopErr
}

func (p *Pipeline) runStep(ctx context.Context, logger *slog.Logger, step Step, run *Run) error {
	logger.Debug("executing step")
	start := time.Now()

	err := step.Do(ctx, run)
	if err != nil {
		logger.Error("step failed", "error", err)
		if run.Error == nil {
			run.Error = err
		}
		return err
	}

	logger.Debug("step completed", "elapsed", time.Since(start))
	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
