// Package deploy runs the clean, generate, remove, copy and reload sequence that
// makes a freshly generated site live.
package deploy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/KaramelBytes/blogctl/internal/generator"
	"github.com/KaramelBytes/blogctl/internal/reload"
	"github.com/google/uuid"
)

// Step names, in execution order.
const (
	StepClean    = "clean"
	StepGenerate = "generate"
	StepRemove   = "remove"
	StepCopy     = "copy"
	StepReload   = "reload"
)

// Publisher replaces the published directory.
type Publisher interface {
	Remove(ctx context.Context) error
	Copy(ctx context.Context) error
}

// Step is one unit of the sequence.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Sequencer executes the deploy steps strictly in order. By default every step runs
// even when an earlier one failed; there is no retry and no rollback, so a failed
// generate still leaves the published directory removed.
type Sequencer struct {
	Generator generator.Generator
	Publisher Publisher
	Reloader  reload.Reloader
	// FailFast stops at the first failed step and skips the rest.
	FailFast bool
	// DryRun records every step as skipped without running it.
	DryRun bool
	Logger *slog.Logger

	now func() time.Time
}

// Steps returns the sequence in execution order.
func (s *Sequencer) Steps() []Step {
	return []Step{
		{Name: StepClean, Run: s.Generator.Clean},
		{Name: StepGenerate, Run: s.Generator.Generate},
		{Name: StepRemove, Run: s.Publisher.Remove},
		{Name: StepCopy, Run: s.Publisher.Copy},
		{Name: StepReload, Run: s.Reloader.Reload},
	}
}

// Run executes the sequence and returns its report. The error joins every step
// failure as *StepError values.
func (s *Sequencer) Run(ctx context.Context) (*Report, error) {
	now := s.now
	if now == nil {
		now = time.Now
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Report{
		RunID:     uuid.NewString(),
		StartedAt: now(),
		FailFast:  s.FailFast,
		DryRun:    s.DryRun,
	}
	logger = logger.With("run_id", r.RunID)
	logger.Info("deploy started", "fail_fast", s.FailFast, "dry_run", s.DryRun)

	var errs []error
	for _, step := range s.Steps() {
		res := StepResult{Name: step.Name}
		switch {
		case s.DryRun:
			res.Status = StatusSkipped
			logger.Info("step skipped (dry run)", "step", step.Name)
		case s.FailFast && len(errs) > 0:
			res.Status = StatusSkipped
			logger.Warn("step skipped after failure", "step", step.Name)
		case ctx.Err() != nil:
			res.Status = StatusSkipped
			logger.Warn("step skipped, deploy cancelled", "step", step.Name)
		default:
			start := now()
			err := step.Run(ctx)
			res.Duration = now().Sub(start)
			if err != nil {
				res.Status = StatusFailed
				res.Error = err.Error()
				errs = append(errs, &StepError{Step: step.Name, Err: err})
				logger.Error("step failed", "step", step.Name, "duration", res.Duration, "error", err)
			} else {
				res.Status = StatusOK
				logger.Info("step done", "step", step.Name, "duration", res.Duration)
			}
		}
		r.Steps = append(r.Steps, res)
	}
	if err := ctx.Err(); err != nil && len(errs) == 0 {
		errs = append(errs, err)
	}
	r.FinishedAt = now()
	if len(errs) > 0 {
		logger.Error("deploy finished with failures", "failed", len(errs), "duration", r.Duration())
		return r, errors.Join(errs...)
	}
	logger.Info("deploy finished", "duration", r.Duration())
	return r, nil
}
