// Package graphrepo provides an in-memory registry of built graph
// definitions, keyed by graph name and reused across runs.
package graphrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/flowgraph/stategraph/internal/core/graph"
)

// InMemoryRepository is a thread-safe map-backed graph registry. Graphs are
// immutable once built, so storing pointers is safe.
type InMemoryRepository struct {
	mu     sync.RWMutex
	graphs map[string]*graph.Graph
}

// NewInMemoryRepository creates an empty registry.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		graphs: make(map[string]*graph.Graph),
	}
}

// Save registers a graph under its name, replacing any previous definition.
func (r *InMemoryRepository) Save(_ context.Context, g *graph.Graph) error {
	if g == nil {
		return graph.ErrGraphNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.graphs[g.Name()] = g
	return nil
}

// Get returns the graph registered under name.
func (r *InMemoryRepository) Get(_ context.Context, name string) (*graph.Graph, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.graphs[name]
	if !ok {
		return nil, graph.ErrGraphNotFound
	}
	return g, nil
}

// List returns the registered graph names, sorted.
func (r *InMemoryRepository) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.graphs))
	for name := range r.graphs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
