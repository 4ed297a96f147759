// Package teardown executes the ordered, criticality-tagged destroy
// sequence for one environment.
//
// Stage order is a correctness requirement, not an optimization:
// Kubernetes objects and the AWS resources backing them live in different
// control planes, and dependent cleanup (load balancer removal, volume
// detachment) happens asynchronously in controllers that must run before
// the infrastructure hosting them is destroyed. Tearing down out of order
// deadlocks on finalizers or leaks controller-created resources.
package teardown

import (
	"context"
	"fmt"
)

// Stage is one ordered unit of teardown work.
type Stage struct {
	// Label is the human-readable stage name shown in progress output.
	Label string

	// Critical marks stages whose failure aborts the run. Best-effort
	// stages log a warning and let the run continue; their targets may
	// legitimately already be gone on re-runs.
	Critical bool

	// Run performs the stage's work.
	Run func(ctx context.Context) error
}

// StageError is a critical stage failure. Partial teardown state is left
// as-is for inspection or re-run.
type StageError struct {
	Label string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %q failed: %v", e.Label, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
