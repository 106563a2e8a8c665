package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/blackbird/internal/model"
)

// BatchProcessor searches several usernames, one pipeline per username,
// sharing a site list loaded once.
type BatchProcessor struct {
	pipelineFactory func(username string) *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the batch logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets how many usernames are searched at the same time.
// The default is 1: every search already probes its sites concurrently and
// sequential runs keep the console output of one username together.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor. pipelineFactory is called once
// per username so no step state leaks between runs.
func NewBatchProcessor(pipelineFactory func(username string) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     1,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs the pipeline for every username against sites and
// returns the runs in username order. A failed run is kept with its Error
// set and does not stop the others; the returned error is only the
// context's.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, usernames []string, sites *model.SiteList) ([]*Run, error) {
	bp.logger.Info("starting batch",
		"usernames", len(usernames),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	runs := make([]*Run, len(usernames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, username := range usernames {
		run := NewRun(username)
		run.Sites = sites
		runs[i] = run

		g.Go(func() error {
			select {
			case <-gctx.Done():
				run.Error = gctx.Err()
				return gctx.Err()
			default:
			}

			if err := bp.pipelineFactory(username).Execute(gctx, run); err != nil {
				bp.logger.Warn("run failed",
					"username", username,
					"error", err,
				)
			}
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // tasks only fail when ctx is done

	bp.logger.Info("batch complete",
		"usernames", len(usernames),
		"elapsed", time.Since(startTime),
	)
	return runs, ctx.Err()
}
