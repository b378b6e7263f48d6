// Package main provides the stategraph CLI application
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/flowgraph/stategraph/pkg/prebuilt"
	"github.com/flowgraph/stategraph/pkg/stategraph"
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("stategraph %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
			return
		case "demo":
			pattern := "chain"
			if len(os.Args) > 2 {
				pattern = os.Args[2]
			}
			runDemo(pattern)
			return
		}
	}

	fmt.Println("stategraph - directed task-graph execution")
	fmt.Println("usage: stategraph [version | demo [chain|fanout]]")
}

func runDemo(pattern string) {
	rt := stategraph.New()
	defer rt.Close()

	var (
		g   *stategraph.Graph
		err error
	)
	switch pattern {
	case "chain":
		g, err = demoChain()
	case "fanout":
		g, err = demoFanOut()
	default:
		log.Fatalf("unknown demo pattern %q (want chain or fanout)", pattern)
	}
	if err != nil {
		log.Fatalf("build graph: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := rt.Run(ctx, g, map[string]interface{}{"input": "demo"}, stategraph.RunOptions{})
	if err != nil {
		log.Fatalf("run: %v", err)
	}

	fmt.Printf("run %s finished: %s in %s\n", res.RunID, res.Status, res.Duration)
	keys := make([]string, 0, len(res.State))
	for k := range res.State {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s = %v\n", k, res.State[k])
	}
}

func demoChain() (*stategraph.Graph, error) {
	setKey := func(key, value string) stategraph.StepFunc {
		return func(ctx context.Context, snapshot map[string]interface{}) (map[string]interface{}, error) {
			return map[string]interface{}{key: value}, nil
		}
	}
	return prebuilt.Chain("demo-chain",
		prebuilt.Step{ID: "first", Fn: setKey("first", "one"), Writes: []string{"first"}},
		prebuilt.Step{ID: "second", Fn: setKey("second", "two"), Writes: []string{"second"}},
		prebuilt.Step{ID: "third", Fn: setKey("third", "three"), Writes: []string{"third"}},
	)
}

func demoFanOut() (*stategraph.Graph, error) {
	track := func(name string) stategraph.StepFunc {
		return func(ctx context.Context, snapshot map[string]interface{}) (map[string]interface{}, error) {
			return map[string]interface{}{"tracks": []interface{}{name}}, nil
		}
	}
	source := prebuilt.Step{
		ID: "seed",
		Fn: func(ctx context.Context, snapshot map[string]interface{}) (map[string]interface{}, error) {
			return map[string]interface{}{"seed": "ready"}, nil
		},
		Writes: []string{"seed"},
	}
	sink := prebuilt.Step{
		ID: "gather",
		Fn: func(ctx context.Context, snapshot map[string]interface{}) (map[string]interface{}, error) {
			tracks, _ := snapshot["tracks"].([]interface{})
			return map[string]interface{}{"gathered": len(tracks)}, nil
		},
		Writes: []string{"gathered"},
	}
	branches := []prebuilt.Branch{
		{Steps: []prebuilt.Step{{ID: "track-a", Fn: track("a"), Writes: []string{"tracks"}}}},
		{Steps: []prebuilt.Step{{ID: "track-b", Fn: track("b"), Writes: []string{"tracks"}}}},
		{Steps: []prebuilt.Step{{ID: "track-c", Fn: track("c"), Writes: []string{"tracks"}}}},
	}
	return prebuilt.FanOut("demo-fanout", source, branches, sink, "tracks")
}
