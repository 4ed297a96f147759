package teardown

import (
	"context"
	"time"
)

// Reporter receives progress output from the runner.
type Reporter interface {
	Step(current, total int, label string)
	Successf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Runner executes stages strictly in order. Each stage blocks until it
// completes or fails; nothing runs concurrently, because simultaneous
// teardown across control planes is exactly what produces hung deletions.
type Runner struct {
	rep Reporter
}

// NewRunner creates a runner reporting through rep.
func NewRunner(rep Reporter) *Runner {
	return &Runner{rep: rep}
}

// Run executes the stages in sequence. A critical stage failure aborts
// and returns a StageError; best-effort failures are reported as warnings
// and the run continues.
func (r *Runner) Run(ctx context.Context, stages []Stage) error {
	total := len(stages)
	for i, stage := range stages {
		r.rep.Step(i+1, total, stage.Label)

		start := time.Now()
		if err := stage.Run(ctx); err != nil {
			if stage.Critical {
				r.rep.Errorf("%s: %v", stage.Label, err)
				return &StageError{Label: stage.Label, Err: err}
			}
			r.rep.Warnf("%s: %v (continuing)", stage.Label, err)
			continue
		}

		r.rep.Successf("%s (%v)", stage.Label, time.Since(start).Round(time.Millisecond))
	}
	return nil
}
