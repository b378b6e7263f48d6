package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/flowgraph/stategraph/internal/app/dto"
	"github.com/flowgraph/stategraph/internal/core/graph"
	"github.com/flowgraph/stategraph/internal/core/state"
	"github.com/flowgraph/stategraph/internal/infrastructure/metrics"
	"github.com/flowgraph/stategraph/pkg/validation"
)

// Executor walks a graph from an initial state to a RunResult: it computes
// per-node unresolved-dependency counts, dispatches every ready node onto the
// worker pool, commits successful updates through the state store, and
// decides termination.
//
// The executor goroutine is the single writer for all scheduling bookkeeping;
// step functions only ever touch their dispatch-time snapshot and the result
// channel.
type Executor struct {
	repo   GraphRepository
	events EventPublisher
}

// NewExecutor creates an executor. events may be nil when no side channel is
// attached.
func NewExecutor(repo GraphRepository, events EventPublisher) *Executor {
	return &Executor{repo: repo, events: events}
}

// Execute resolves the graph named in the request and runs it.
func (e *Executor) Execute(ctx context.Context, req *dto.RunRequest) (*dto.RunResult, error) {
	if req == nil || req.GraphID == "" {
		return nil, dto.ErrMissingGraphID
	}
	g, err := e.repo.Get(ctx, req.GraphID)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, g, req)
}

// Run drives a single run of g.
func (e *Executor) Run(ctx context.Context, g *graph.Graph, req *dto.RunRequest) (*dto.RunResult, error) {
	if g == nil {
		return nil, graph.ErrGraphNotFound
	}
	req.Normalize()
	if req.GraphID == "" {
		req.GraphID = g.Name()
	}
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid run request: %w", err)
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if req.Options.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.Options.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	r := &run{
		graph:  g,
		req:    req,
		store:  g.NewStore(req.Input),
		events: e.events,
		ctx:    runCtx,
		cancel: cancel,
		result: &dto.RunResult{
			RunID:     runID,
			GraphID:   req.GraphID,
			Status:    dto.RunStatusRunning,
			StartTime: time.Now(),
		},
		indegree:  g.InDegrees(),
		remaining: g.Len(),
		results:   make(chan stepOutcome, g.Len()),
		disp:      newDispatcher(req.Options.MaxConcurrency),
	}
	metrics.IncRuns()

	return r.drive()
}

// stepOutcome is one step function's completion, observed by the executor
// goroutine.
type stepOutcome struct {
	nodeID string
	update map[string]interface{}
	err    error
	start  time.Time
	end    time.Time
}

// run holds the scheduling bookkeeping for one run. All fields are owned by
// the goroutine executing drive; dispatched steps communicate only through
// the results channel.
type run struct {
	graph  *graph.Graph
	req    *dto.RunRequest
	store  *state.Store
	events EventPublisher
	ctx    context.Context
	cancel context.CancelFunc
	result *dto.RunResult

	indegree  map[string]int
	remaining int
	inflight  int
	canceled  bool
	results   chan stepOutcome
	disp      dispatcher
}

func (r *run) drive() (*dto.RunResult, error) {
	defer r.disp.stop()

	r.emit(dto.EventRunStart, "", r.store.Snapshot(), nil)
	for _, id := range r.graph.Entries() {
		r.dispatch(id)
	}

	done := r.ctx.Done()
	for r.inflight > 0 {
		select {
		case <-done:
			done = nil
			r.handleContextDone()
		case out := <-r.results:
			r.inflight--
			metrics.IncNodeExecs(1)
			r.handle(out)
		}
	}
	return r.finalize()
}

// dispatch takes a snapshot, marks the node in flight, and hands its step
// function to the pool.
func (r *run) dispatch(id string) {
	node := r.graph.Node(id)
	snapshot := r.store.Snapshot()
	r.emit(dto.EventNodeStart, id, nil, nil)
	r.inflight++
	r.disp.dispatch(func() {
		out := stepOutcome{nodeID: id, start: time.Now()}
		out.update, out.err = invokeStep(r.ctx, node, snapshot)
		out.end = time.Now()
		r.results <- out
	})
}

// invokeStep calls the step function, converting a panic into a step error so
// one misbehaving adapter cannot take down the run.
func invokeStep(ctx context.Context, node *graph.Node, snapshot map[string]interface{}) (update map[string]interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("step panic: %v", rec)
		}
	}()
	return node.Step(ctx, snapshot)
}

// handleContextDone records the run-level cancellation (timeout or caller
// cancel) and stops further dispatching. In-flight steps drain through the
// results channel; their late updates are discarded.
func (r *run) handleContextDone() {
	if r.canceled {
		return
	}
	r.canceled = true
	kind := dto.FailureKindCanceled
	if errors.Is(r.ctx.Err(), context.DeadlineExceeded) {
		kind = dto.FailureKindTimeout
	}
	r.result.Failures = append(r.result.Failures, dto.NodeFailure{
		Kind: kind,
		Err:  r.ctx.Err().Error(),
	})
}

// handle processes one completion under the active failure policy.
func (r *run) handle(out stepOutcome) {
	if r.canceled {
		// Cancellation was signaled before this result was observed; the
		// update is not committed.
		r.result.Steps = append(r.result.Steps, dto.StepResult{
			NodeID:    out.nodeID,
			Status:    dto.StepStatusCanceled,
			StartTime: out.start,
			EndTime:   out.end,
			Duration:  out.end.Sub(out.start),
		})
		return
	}

	if out.err == nil {
		if keys := undeclaredKeys(r.graph.Node(out.nodeID), out.update); len(keys) > 0 {
			out.err = &ContractViolationError{NodeID: out.nodeID, Keys: keys}
		}
	}
	if out.err != nil {
		r.fail(out)
		return
	}
	r.commit(out)
}

// fail records a node failure and, under fail-fast, signals cooperative
// cancellation to every in-flight sibling.
func (r *run) fail(out stepOutcome) {
	failure := dto.NodeFailure{
		NodeID: out.nodeID,
		Kind:   classifyFailure(out.err),
		Err:    out.err.Error(),
	}
	r.result.Failures = append(r.result.Failures, failure)
	r.result.Steps = append(r.result.Steps, dto.StepResult{
		NodeID:    out.nodeID,
		Status:    dto.StepStatusFailed,
		Error:     out.err.Error(),
		StartTime: out.start,
		EndTime:   out.end,
		Duration:  out.end.Sub(out.start),
	})
	metrics.IncNodeFailures()
	r.emit(dto.EventNodeEnd, out.nodeID, nil, &failure)

	if r.req.Options.FailurePolicy == dto.FailFast {
		r.canceled = true
		r.cancel()
	}
	// Under best-effort the failed node's dependents stay blocked: their
	// dependency counts never reach zero.
}

// commit applies the update, records the step, and readies any dependents
// whose dependency count reached zero.
func (r *run) commit(out stepOutcome) {
	snapshot := r.store.Commit(out.update)
	metrics.IncCommits()
	r.remaining--
	r.result.Steps = append(r.result.Steps, dto.StepResult{
		NodeID:    out.nodeID,
		Status:    dto.StepStatusCompleted,
		Update:    out.update,
		StartTime: out.start,
		EndTime:   out.end,
		Duration:  out.end.Sub(out.start),
	})
	r.emit(dto.EventCommit, out.nodeID, snapshot, nil)
	r.emit(dto.EventNodeEnd, out.nodeID, nil, nil)

	for _, succ := range r.graph.Successors(out.nodeID) {
		r.indegree[succ]--
		if r.indegree[succ] == 0 {
			r.dispatch(succ)
		}
	}
}

// finalize snapshots the terminal state and classifies the run.
func (r *run) finalize() (*dto.RunResult, error) {
	res := r.result
	res.EndTime = time.Now()
	res.Duration = res.EndTime.Sub(res.StartTime)
	res.State = r.store.Snapshot()

	switch {
	case r.remaining == 0 && !res.Failed():
		res.Status = dto.RunStatusCompleted
	case res.Failed() && r.req.Options.FailurePolicy == dto.BestEffort && !r.canceled:
		res.Status = dto.RunStatusPartial
	case res.Failed():
		res.Status = dto.RunStatusFailed
		metrics.IncRunsFailed()
	default:
		// Unresolved nodes, nothing running, no failure to explain it. The
		// graph passed validation, so this is an engine invariant violation.
		res.Status = dto.RunStatusFailed
		metrics.IncRunsFailed()
		return res, fmt.Errorf("%w: %d unresolved", ErrDeadlock, r.remaining)
	}

	r.emit(dto.EventRunEnd, "", res.State, nil)
	return res, nil
}

// emit publishes a run lifecycle event when the side channel is attached.
func (r *run) emit(t dto.EventType, nodeID string, snapshot map[string]interface{}, failure *dto.NodeFailure) {
	if r.events == nil || !r.req.Options.EmitEvents {
		return
	}
	r.events.Publish(dto.Event{
		ID:        uuid.NewString(),
		RunID:     r.result.RunID,
		GraphID:   r.result.GraphID,
		Type:      t,
		NodeID:    nodeID,
		Snapshot:  snapshot,
		Failure:   failure,
		Timestamp: time.Now(),
	})
}

// undeclaredKeys returns update keys outside the node's declared write set,
// sorted for stable error messages.
func undeclaredKeys(node *graph.Node, update map[string]interface{}) []string {
	var keys []string
	for key := range update {
		if !node.WritesKey(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// classifyFailure maps a step error to its failure kind.
func classifyFailure(err error) dto.FailureKind {
	var cv *ContractViolationError
	switch {
	case errors.As(err, &cv):
		return dto.FailureKindContract
	case errors.Is(err, context.DeadlineExceeded):
		return dto.FailureKindTimeout
	case errors.Is(err, context.Canceled):
		return dto.FailureKindCanceled
	default:
		return dto.FailureKindStep
	}
}
