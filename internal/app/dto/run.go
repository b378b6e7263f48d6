// Package dto carries the data shapes exchanged between the run controller
// and the executor.
package dto

import (
	"time"
)

// FailurePolicy governs how a node failure affects the rest of the run.
type FailurePolicy string

const (
	// FailFast cancels all in-flight siblings on the first failure and stops
	// dispatching new nodes.
	FailFast FailurePolicy = "fail_fast"
	// BestEffort records failures, keeps independent branches running, and
	// leaves downstream dependents of a failed node blocked.
	BestEffort FailurePolicy = "best_effort"
)

// RunOptions configures a single run.
type RunOptions struct {
	// MaxConcurrency bounds how many step functions run at once; zero means
	// unbounded.
	MaxConcurrency int `json:"max_concurrency" validate:"min=0"`
	// FailurePolicy defaults to FailFast when empty.
	FailurePolicy FailurePolicy `json:"failure_policy" validate:"omitempty,oneof=fail_fast best_effort"`
	// Timeout cancels the run like an externally-triggered fail-fast when it
	// fires; zero means no timeout.
	Timeout time.Duration `json:"timeout" validate:"min=0"`
	// EmitEvents enables the node-completion event side channel.
	EmitEvents bool `json:"emit_events"`
}

// RunRequest asks the executor to drive one run of a registered graph.
type RunRequest struct {
	GraphID string                 `json:"graph_id" validate:"required"`
	RunID   string                 `json:"run_id"`
	Input   map[string]interface{} `json:"input"`
	Options RunOptions             `json:"options"`
}

// Normalize applies defaults in place.
func (r *RunRequest) Normalize() {
	if r.Options.FailurePolicy == "" {
		r.Options.FailurePolicy = FailFast
	}
}

// RunStatus is the terminal classification of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed means the run was aborted under fail-fast (or by
	// timeout) before all nodes resolved.
	RunStatusFailed RunStatus = "failed"
	// RunStatusPartial means a best-effort run finished with some branches
	// failed or blocked.
	RunStatusPartial RunStatus = "partial"
)

// FailureKind classifies a node failure.
type FailureKind string

const (
	// FailureKindStep wraps an error returned by the step function itself.
	FailureKindStep FailureKind = "step"
	// FailureKindContract marks an update writing keys outside the node's
	// declared write set.
	FailureKindContract FailureKind = "contract"
	// FailureKindTimeout marks the run-level timeout firing.
	FailureKindTimeout FailureKind = "timeout"
	// FailureKindCanceled marks cancellation propagated from the caller.
	FailureKindCanceled FailureKind = "canceled"
)

// NodeFailure describes one node that did not complete.
type NodeFailure struct {
	NodeID string      `json:"node_id"`
	Kind   FailureKind `json:"kind"`
	Err    string      `json:"error"`
}

// StepStatus is the terminal classification of one node dispatch.
type StepStatus string

const (
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	// StepStatusCanceled marks a step whose result arrived after the run was
	// canceled; its update was discarded, not committed.
	StepStatusCanceled StepStatus = "canceled"
)

// StepResult records one node dispatch. Completed steps appear in the
// run result in commit order.
type StepResult struct {
	NodeID    string                 `json:"node_id"`
	Status    StepStatus             `json:"status"`
	Update    map[string]interface{} `json:"update,omitempty"`
	Error     string                 `json:"error,omitempty"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
	Duration  time.Duration          `json:"duration"`
}

// RunResult is the terminal outcome handed to the caller: the state as
// committed so far plus any node failures. The engine does not retain it.
type RunResult struct {
	RunID     string                 `json:"run_id"`
	GraphID   string                 `json:"graph_id"`
	Status    RunStatus              `json:"status"`
	State     map[string]interface{} `json:"state"`
	Steps     []StepResult           `json:"steps"`
	Failures  []NodeFailure          `json:"failures,omitempty"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
	Duration  time.Duration          `json:"duration"`
}

// Failed reports whether any node failure was recorded.
func (r *RunResult) Failed() bool { return len(r.Failures) > 0 }

// CommitOrder returns the node IDs of committed steps in commit order.
func (r *RunResult) CommitOrder() []string {
	order := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		if s.Status == StepStatusCompleted {
			order = append(order, s.NodeID)
		}
	}
	return order
}
