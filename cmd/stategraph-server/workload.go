package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/flowgraph/stategraph/pkg/prebuilt"
	"github.com/flowgraph/stategraph/pkg/stategraph"
)

type workloadManager struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

var wm workloadManager

func (m *workloadManager) start(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		http.Error(w, "workload already running", http.StatusConflict)
		return
	}
	rate := 200 * time.Millisecond
	if v := r.URL.Query().Get("rate_ms"); v != "" {
		if ms, err := time.ParseDuration(v + "ms"); err == nil {
			rate = ms
		}
	}
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = "fanout"
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go runWorkloadLoop(ctx, pattern, rate)
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, "workload started: pattern=%s rate=%v\n", pattern, rate)
}

func (m *workloadManager) stop(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "workload stopped\n")
}

// runWorkloadLoop repeatedly executes a small graph to exercise the executor
// and populate the expvar metrics.
func runWorkloadLoop(ctx context.Context, pattern string, rate time.Duration) {
	rt := stategraph.New()
	defer rt.Close()

	g, err := buildWorkloadGraph(pattern)
	if err != nil {
		return
	}

	ticker := time.NewTicker(rate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = rt.Run(ctx, g, map[string]interface{}{"tick": time.Now().UnixNano()}, stategraph.RunOptions{
				MaxConcurrency: 4,
			})
		}
	}
}

func buildWorkloadGraph(pattern string) (*stategraph.Graph, error) {
	noop := func(key string) stategraph.StepFunc {
		return func(ctx context.Context, snapshot map[string]interface{}) (map[string]interface{}, error) {
			return map[string]interface{}{key: true}, nil
		}
	}
	if pattern == "chain" {
		return prebuilt.Chain("workload-chain",
			prebuilt.Step{ID: "a", Fn: noop("a"), Writes: []string{"a"}},
			prebuilt.Step{ID: "b", Fn: noop("b"), Writes: []string{"b"}},
			prebuilt.Step{ID: "c", Fn: noop("c"), Writes: []string{"c"}},
		)
	}
	mark := func(name string) stategraph.StepFunc {
		return func(ctx context.Context, snapshot map[string]interface{}) (map[string]interface{}, error) {
			return map[string]interface{}{"marks": []interface{}{name}}, nil
		}
	}
	return prebuilt.FanOut("workload-fanout",
		prebuilt.Step{ID: "seed", Fn: noop("seed"), Writes: []string{"seed"}},
		[]prebuilt.Branch{
			{Steps: []prebuilt.Step{{ID: "m1", Fn: mark("m1"), Writes: []string{"marks"}}}},
			{Steps: []prebuilt.Step{{ID: "m2", Fn: mark("m2"), Writes: []string{"marks"}}}},
			{Steps: []prebuilt.Step{{ID: "m3", Fn: mark("m3"), Writes: []string{"marks"}}}},
		},
		prebuilt.Step{ID: "gather", Fn: noop("gathered"), Writes: []string{"gathered"}},
		"marks",
	)
}
