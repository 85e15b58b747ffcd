package deploy

import (
	"fmt"
	"time"
)

// Status of one executed step.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StepResult records the outcome of one step.
type StepResult struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Report is the persisted record of one deploy run.
type Report struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	FailFast   bool         `json:"fail_fast"`
	DryRun     bool         `json:"dry_run"`
	Steps      []StepResult `json:"steps"`
}

// Failed returns the steps that did not succeed.
func (r *Report) Failed() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Status == StatusFailed {
			out = append(out, s)
		}
	}
	return out
}

// OK reports whether every executed step succeeded.
func (r *Report) OK() bool { return len(r.Failed()) == 0 }

// Duration is the wall time of the whole run.
func (r *Report) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// StepError ties a step failure to its step name.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }
