package usecases

import (
	"context"

	"github.com/flowgraph/stategraph/internal/app/dto"
	"github.com/flowgraph/stategraph/internal/core/graph"
)

// GraphRepository stores built graph definitions for reuse across runs.
type GraphRepository interface {
	Save(ctx context.Context, g *graph.Graph) error
	Get(ctx context.Context, name string) (*graph.Graph, error)
	List(ctx context.Context) ([]string, error)
}

// RunExecutor drives runs of validated graphs.
type RunExecutor interface {
	// Execute resolves the graph named in the request from the repository
	// and runs it.
	Execute(ctx context.Context, req *dto.RunRequest) (*dto.RunResult, error)

	// Run drives a single run of g with the given request.
	Run(ctx context.Context, g *graph.Graph, req *dto.RunRequest) (*dto.RunResult, error)
}

// EventPublisher receives run lifecycle events. Publish must not block; slow
// consumers see dropped events, never a stalled run.
type EventPublisher interface {
	Publish(ev dto.Event)
}
