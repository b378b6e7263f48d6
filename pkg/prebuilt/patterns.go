package prebuilt

import (
	"github.com/flowgraph/stategraph/pkg/stategraph"
)

// Step pairs a node ID with its step function and declared write keys.
type Step struct {
	ID     string
	Fn     stategraph.StepFunc
	Writes []string
}

// Branch is one sequential track inside a fan-out graph. Steps run in order;
// independent branches run concurrently.
type Branch struct {
	Steps []Step
}

// Chain builds a path graph: each step runs after the previous one's update
// has been committed. All keys use the default Overwrite reducer.
func Chain(name string, steps ...Step) (*stategraph.Graph, error) {
	b := stategraph.NewBuilder(name)
	for i, s := range steps {
		b.AddNode(s.ID, s.Fn, s.Writes...)
		if i > 0 {
			b.AddEdge(steps[i-1].ID, s.ID)
		}
	}
	return b.Build()
}

// FanOut builds the fan-out/fan-in shape: source runs first, every branch
// runs concurrently, and sink runs once all branch tails have committed.
// appendKeys are registered with the Append reducer so branches can
// accumulate into shared keys without a deterministic winner.
func FanOut(name string, source Step, branches []Branch, sink Step, appendKeys ...string) (*stategraph.Graph, error) {
	b := stategraph.NewBuilder(name)
	b.AddNode(source.ID, source.Fn, source.Writes...)
	for _, branch := range branches {
		prev := source.ID
		for _, s := range branch.Steps {
			b.AddNode(s.ID, s.Fn, s.Writes...)
			b.AddEdge(prev, s.ID)
			prev = s.ID
		}
		b.AddEdge(prev, sink.ID)
	}
	b.AddNode(sink.ID, sink.Fn, sink.Writes...)
	for _, key := range appendKeys {
		b.SetReducer(key, stategraph.ReducerAppend)
	}
	return b.Build()
}
