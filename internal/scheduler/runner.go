// Package scheduler triggers maintenance runs on the controller at a fixed interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"maintplane/internal/logger"
	"maintplane/pkg/api"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Trigger starts one maintenance run.
type Trigger interface {
	Generate(ctx context.Context) (*api.RunReportResponse, error)
}

// RunnerConfig holds configuration for the scheduler loop.
type RunnerConfig struct {
	Interval     time.Duration // Time between successful runs (default: 1h)
	RetryBackoff time.Duration // First retry delay after a failed run (default: 5s)
	MaxBackoff   time.Duration // Maximum retry delay (default: 15m)
}

// Runner is the periodic trigger loop.
type Runner struct {
	trigger Trigger
	config  RunnerConfig
	logger  *slog.Logger
	done    chan struct{}
}

// NewRunner creates a new scheduler loop.
func NewRunner(t Trigger, config RunnerConfig, log *slog.Logger) *Runner {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = 5 * time.Second
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = 15 * time.Minute
	}
	if config.RetryBackoff > config.MaxBackoff {
		config.RetryBackoff = config.MaxBackoff
	}
	if log == nil {
		log = logger.Discard()
	}

	return &Runner{
		trigger: t,
		config:  config,
		logger:  log,
		done:    make(chan struct{}),
	}
}

// Run triggers a run immediately and then once per interval. A failed run is
// retried with exponential backoff capped at MaxBackoff and never longer than
// the interval. It blocks until the context is cancelled; an in-flight trigger
// is allowed to finish first.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)
	r.logger.Info("scheduler starting", "interval", r.config.Interval, "max_backoff", r.config.MaxBackoff)

	backoff := r.config.RetryBackoff
	next := time.Duration(0)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("scheduler stopped")
			return ctx.Err()

		case <-time.After(next):
			if err := r.runOnce(ctx); err != nil {
				next = backoff
				if next > r.config.Interval {
					next = r.config.Interval
				}
				backoff *= 2
				if backoff > r.config.MaxBackoff {
					backoff = r.config.MaxBackoff
				}
				r.logger.Warn("maintenance run failed", "error", err, "retry_in", next)
				continue
			}

			// Success - reset backoff
			backoff = r.config.RetryBackoff
			next = r.config.Interval
		}
	}
}

// Done returns a channel that is closed when the runner has fully stopped.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) runOnce(ctx context.Context) error {
	// The trigger is not cut short by shutdown; the controller finishes the run either way.
	triggerCtx := logger.WithRequestID(context.WithoutCancel(ctx), uuid.NewString())

	tracer := otel.Tracer("maintplane/scheduler")
	triggerCtx, span := tracer.Start(triggerCtx, "scheduler.trigger", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	report, err := r.trigger.Generate(triggerCtx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(
		attribute.String("run.id", report.RunID),
		attribute.Int("run.workflows_created", report.WorkflowsCreated),
		attribute.Int("run.failed", report.Failed),
	)
	logger.FromContext(triggerCtx, r.logger).Info("maintenance run completed",
		"run_id", report.RunID,
		"as_of", report.AsOf,
		"workflows_created", report.WorkflowsCreated,
		"direct_schedules_created", report.DirectSchedulesCreated,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return nil
}
