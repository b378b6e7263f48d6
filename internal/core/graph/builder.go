package graph

import (
	"fmt"
	"sort"

	"github.com/flowgraph/stategraph/internal/core/state"
)

// Builder assembles a graph definition. Methods are chainable; structural
// errors are collected and surfaced by Build so callers check a single
// result.
type Builder struct {
	name     string
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	reducers map[string]state.ReducerKind
	errs     []error
}

// NewBuilder creates a builder for a named graph.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:     name,
		nodes:    make(map[string]*Node),
		reducers: make(map[string]state.ReducerKind),
	}
}

// AddNode registers a node with its step function and declared write keys.
func (b *Builder) AddNode(id string, step StepFunc, writes ...string) *Builder {
	node := &Node{ID: id, Name: id, Step: step, Writes: append([]string(nil), writes...)}
	if err := node.Validate(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("node %q: %w", id, err))
		return b
	}
	if _, exists := b.nodes[id]; exists {
		b.errs = append(b.errs, fmt.Errorf("node %q: %w", id, ErrDuplicateNode))
		return b
	}
	b.nodes[id] = node
	b.order = append(b.order, id)
	return b
}

// WithReads annotates a previously added node with the state keys it reads.
// The read set documents data flow; it does not gate scheduling.
func (b *Builder) WithReads(id string, reads ...string) *Builder {
	node, exists := b.nodes[id]
	if !exists {
		b.errs = append(b.errs, fmt.Errorf("reads for %q: %w", id, ErrUnknownNode))
		return b
	}
	node.Reads = append(node.Reads, reads...)
	return b
}

// AddEdge declares that to may run only after from's update has been
// committed.
func (b *Builder) AddEdge(from, to string) *Builder {
	edge := Edge{Source: from, Target: to}
	if err := edge.Validate(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("edge %s->%s: %w", from, to, err))
		return b
	}
	for _, e := range b.edges {
		if e.Source == from && e.Target == to {
			b.errs = append(b.errs, fmt.Errorf("edge %s->%s: %w", from, to, ErrDuplicateEdge))
			return b
		}
	}
	b.edges = append(b.edges, edge)
	return b
}

// SetReducer registers the merge policy for a state key. Keys left
// unregistered default to Overwrite and must have at most one writer.
func (b *Builder) SetReducer(key string, kind state.ReducerKind) *Builder {
	b.reducers[key] = kind
	return b
}

// Build validates the definition and returns the immutable graph. Validation
// covers node and edge integrity, reducer registration, cycle detection, and
// the concurrent-write rule: a key writable by two unordered nodes must use a
// commutative reducer.
func (b *Builder) Build() (*Graph, error) {
	if b.name == "" {
		return nil, ErrInvalidGraphName
	}
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if len(b.nodes) == 0 {
		return nil, ErrEmptyGraph
	}
	for _, e := range b.edges {
		if _, ok := b.nodes[e.Source]; !ok {
			return nil, fmt.Errorf("edge %s->%s: %w", e.Source, e.Target, ErrUnknownNode)
		}
		if _, ok := b.nodes[e.Target]; !ok {
			return nil, fmt.Errorf("edge %s->%s: %w", e.Source, e.Target, ErrUnknownNode)
		}
	}

	reducers, err := b.buildReducers()
	if err != nil {
		return nil, err
	}

	g := &Graph{
		name:     b.name,
		nodes:    b.nodes,
		order:    append([]string(nil), b.order...),
		edges:    append([]Edge(nil), b.edges...),
		kinds:    b.reducerKinds(),
		reducers: reducers,
		succ:     make(map[string][]string, len(b.nodes)),
		pred:     make(map[string][]string, len(b.nodes)),
		indegree: make(map[string]int, len(b.nodes)),
	}
	for id := range b.nodes {
		g.indegree[id] = 0
	}
	for _, e := range b.edges {
		g.succ[e.Source] = append(g.succ[e.Source], e.Target)
		g.pred[e.Target] = append(g.pred[e.Target], e.Source)
		g.indegree[e.Target]++
	}
	for _, id := range g.order {
		if g.indegree[id] == 0 {
			g.entries = append(g.entries, id)
		}
	}

	if cycle := findCycle(g.order, g.succ); cycle != nil {
		return nil, &CycleError{Nodes: cycle}
	}
	if err := b.checkWriteConflicts(g); err != nil {
		return nil, err
	}
	return g, nil
}

// buildReducers instantiates one reducer per registered key.
func (b *Builder) buildReducers() (map[string]state.Reducer, error) {
	reducers := make(map[string]state.Reducer, len(b.reducers))
	for key, kind := range b.reducers {
		r, err := state.NewReducer(kind)
		if err != nil {
			return nil, &UnregisteredReducerError{Key: key, Kind: kind}
		}
		reducers[key] = r
	}
	return reducers, nil
}

func (b *Builder) reducerKinds() map[string]state.ReducerKind {
	kinds := make(map[string]state.ReducerKind, len(b.reducers))
	for k, v := range b.reducers {
		kinds[k] = v
	}
	return kinds
}

// checkWriteConflicts enforces the commit-safety invariant: two step
// functions may write the same key concurrently only under a commutative
// reducer. Unregistered keys default to Overwrite and are rejected outright
// when they have more than one writer.
func (b *Builder) checkWriteConflicts(g *Graph) error {
	writers := make(map[string][]string)
	for _, id := range g.order {
		for _, key := range b.nodes[id].Writes {
			writers[key] = append(writers[key], id)
		}
	}

	keys := make([]string, 0, len(writers))
	for key := range writers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var reach map[string]map[string]bool
	for _, key := range keys {
		ids := writers[key]
		if len(ids) < 2 {
			continue
		}
		reducer, registered := g.reducers[key]
		if !registered {
			return &ConcurrentWriteConflictError{Key: key, Nodes: ids}
		}
		if reducer.Commutative() {
			continue
		}
		if reach == nil {
			reach = reachability(g.order, g.succ)
		}
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				if !reach[ids[i]][ids[j]] && !reach[ids[j]][ids[i]] {
					return &ConcurrentWriteConflictError{Key: key, Nodes: []string{ids[i], ids[j]}}
				}
			}
		}
	}
	return nil
}

// findCycle detects a directed cycle using DFS with coloring and returns the
// offending node sequence, or nil for acyclic graphs.
func findCycle(order []string, succ map[string][]string) []string {
	const (
		white = 0 // unvisited
		gray  = 1 // visiting
		black = 2 // visited
	)
	color := make(map[string]int, len(order))
	var stack []string
	var cycle []string

	var dfs func(string) bool
	dfs = func(u string) bool {
		color[u] = gray
		stack = append(stack, u)
		for _, v := range succ[u] {
			if color[v] == gray {
				// Back-edge: the cycle is the stack suffix starting at v.
				for i, id := range stack {
					if id == v {
						cycle = append(append([]string(nil), stack[i:]...), v)
						return true
					}
				}
			}
			if color[v] == white && dfs(v) {
				return true
			}
		}
		color[u] = black
		stack = stack[:len(stack)-1]
		return false
	}

	for _, id := range order {
		if color[id] == white && dfs(id) {
			return cycle
		}
	}
	return nil
}

// reachability computes the transitive closure of the edge relation via one
// DFS per node.
func reachability(order []string, succ map[string][]string) map[string]map[string]bool {
	reach := make(map[string]map[string]bool, len(order))
	for _, src := range order {
		seen := make(map[string]bool)
		stack := append([]string(nil), succ[src]...)
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[u] {
				continue
			}
			seen[u] = true
			stack = append(stack, succ[u]...)
		}
		reach[src] = seen
	}
	return reach
}
