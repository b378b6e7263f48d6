package stategraph

import (
	"context"

	graphrepo "github.com/flowgraph/stategraph/internal/adapters/repository/graph"
	"github.com/flowgraph/stategraph/internal/app/dto"
	"github.com/flowgraph/stategraph/internal/app/services"
	"github.com/flowgraph/stategraph/internal/app/usecases"
	coregraph "github.com/flowgraph/stategraph/internal/core/graph"
	"github.com/flowgraph/stategraph/internal/core/state"
)

// Re-export core graph and run types for convenience.
type (
	Graph       = coregraph.Graph
	Node        = coregraph.Node
	Edge        = coregraph.Edge
	Builder     = coregraph.Builder
	StepFunc    = coregraph.StepFunc
	ReducerKind = state.ReducerKind

	RunRequest  = dto.RunRequest
	RunOptions  = dto.RunOptions
	RunResult   = dto.RunResult
	NodeFailure = dto.NodeFailure
	Event       = dto.Event
	EventType   = dto.EventType
)

// Reducer kinds.
const (
	ReducerOverwrite = state.ReducerOverwrite
	ReducerAppend    = state.ReducerAppend
	ReducerMerge     = state.ReducerMerge
	ReducerMax       = state.ReducerMax
	ReducerMin       = state.ReducerMin
)

// Failure policies.
const (
	FailFast   = dto.FailFast
	BestEffort = dto.BestEffort
)

// Event types.
const (
	EventRunStart  = dto.EventRunStart
	EventNodeStart = dto.EventNodeStart
	EventNodeEnd   = dto.EventNodeEnd
	EventCommit    = dto.EventCommit
	EventRunEnd    = dto.EventRunEnd
)

// NewBuilder creates a graph builder.
func NewBuilder(name string) *Builder { return coregraph.NewBuilder(name) }

// Runtime is the run controller: it holds the graph registry, the event
// stream, and the executor, and surfaces final state or failure to the
// caller. The zero-dependency default is suitable for local usage and tests.
type Runtime struct {
	repo     usecases.GraphRepository
	executor usecases.RunExecutor
	stream   *services.Stream
}

// New constructs a runtime with in-memory components.
func New() *Runtime {
	repo := graphrepo.NewInMemoryRepository()
	stream := services.NewStream(0)
	stream.Start()
	return &Runtime{
		repo:     repo,
		executor: usecases.NewExecutor(repo, stream),
		stream:   stream,
	}
}

// RegisterGraph stores a built graph for reuse across runs.
func (rt *Runtime) RegisterGraph(ctx context.Context, g *Graph) error {
	return rt.repo.Save(ctx, g)
}

// Graphs lists the registered graph names.
func (rt *Runtime) Graphs(ctx context.Context) ([]string, error) {
	return rt.repo.List(ctx)
}

// Execute runs a previously registered graph.
func (rt *Runtime) Execute(ctx context.Context, req *RunRequest) (*RunResult, error) {
	return rt.executor.Execute(ctx, req)
}

// Run registers g (replacing any previous definition under its name) and
// drives one run with the given initial state and options.
func (rt *Runtime) Run(ctx context.Context, g *Graph, input map[string]interface{}, opts RunOptions) (*RunResult, error) {
	if err := rt.repo.Save(ctx, g); err != nil {
		return nil, err
	}
	req := &RunRequest{
		GraphID: g.Name(),
		Input:   input,
		Options: opts,
	}
	return rt.executor.Run(ctx, g, req)
}

// AddEventHandler attaches a consumer to the run-event side channel.
// Handlers receive read-only snapshots; they cannot mutate run state. Events
// are only emitted for runs with Options.EmitEvents set.
func (rt *Runtime) AddEventHandler(h services.Handler) {
	rt.stream.AddHandler(h)
}

// OnEvent attaches a function handler to the event side channel.
func (rt *Runtime) OnEvent(fn func(ev Event) error) {
	rt.stream.AddHandler(services.HandlerFunc(fn))
}

// Close stops the event stream.
func (rt *Runtime) Close() {
	rt.stream.Stop()
}
