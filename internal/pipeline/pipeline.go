// Package pipeline runs an ordered list of workflow steps where only some
// steps are allowed to abort the workflow.
package pipeline

import (
	"context"
	"fmt"
	"time"

	obsmetrics "github.com/smallbiznis/rentaldesk/internal/observability/metrics"
	"github.com/smallbiznis/rentaldesk/internal/observability/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type Policy int

const (
	// Fatal steps stop the run and their error is returned to the caller.
	Fatal Policy = iota
	// BestEffort steps are logged and counted on failure; later steps still run.
	BestEffort
)

func (p Policy) String() string {
	if p == BestEffort {
		return "best_effort"
	}
	return "fatal"
}

type Step struct {
	Name   string
	Policy Policy
	// Skip, when set and returning true, leaves the step out of this run.
	Skip func() bool
	Run  func(ctx context.Context) error
}

// Result reports what happened to each step of a run.
type Result struct {
	Completed []string
	Failed    map[string]error
	Skipped   []string
}

func (r Result) Succeeded(step string) bool {
	for _, name := range r.Completed {
		if name == step {
			return true
		}
	}
	return false
}

type Runner struct {
	workflow string
	log      *zap.Logger
	metrics  *obsmetrics.Metrics
}

func NewRunner(workflow string, log *zap.Logger, metrics *obsmetrics.Metrics) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		workflow: workflow,
		log:      log.With(zap.String("workflow", workflow)),
		metrics:  metrics,
	}
}

// Run executes steps in order. The first Fatal failure ends the run.
func (r *Runner) Run(ctx context.Context, steps ...Step) (Result, error) {
	ctx, span := tracing.Tracer("pipeline").Start(ctx, r.workflow)
	defer span.End()

	res := Result{Failed: map[string]error{}}
	for _, step := range steps {
		if step.Skip != nil && step.Skip() {
			res.Skipped = append(res.Skipped, step.Name)
			r.metrics.ObservePipelineStep(r.workflow, step.Name, obsmetrics.OutcomeSkipped)
			continue
		}

		err := r.runStep(ctx, step)
		if err == nil {
			res.Completed = append(res.Completed, step.Name)
			r.metrics.ObservePipelineStep(r.workflow, step.Name, obsmetrics.OutcomeSuccess)
			continue
		}

		res.Failed[step.Name] = err
		r.metrics.ObservePipelineStep(r.workflow, step.Name, obsmetrics.OutcomeFailure)
		if step.Policy == Fatal {
			span.RecordError(tracing.SafeError(err))
			span.SetStatus(codes.Error, step.Name)
			return res, err
		}
		r.log.Warn("pipeline step failed",
			zap.String("step", step.Name),
			zap.String("policy", step.Policy.String()),
			zap.Error(err),
		)
	}
	return res, nil
}

func (r *Runner) runStep(ctx context.Context, step Step) (err error) {
	ctx, span := tracing.Tracer("pipeline").Start(ctx, r.workflow+"."+step.Name)
	span.SetAttributes(attribute.String("pipeline.policy", step.Policy.String()))
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("step %s panicked: %v", step.Name, rec)
		}
		if err != nil {
			span.SetStatus(codes.Error, "step failed")
		}
		span.End()
		r.log.Debug("pipeline step finished",
			zap.String("step", step.Name),
			zap.Duration("duration", time.Since(start)),
			zap.Bool("ok", err == nil),
		)
	}()
	return step.Run(ctx)
}
