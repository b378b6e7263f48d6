// Package main provides a minimal HTTP server exposing debug endpoints for
// the stategraph runtime.
package main

import (
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // register /debug/pprof
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local runs; missing file is fine.
	_ = godotenv.Load()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "stategraph server is running. See /healthz, /debug/vars, /debug/pprof/")
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "ok")
	})

	// Prometheus-compatible metrics endpoint (no external deps)
	mux.HandleFunc("/metrics", promMetricsHandler)

	// Workload endpoints to generate metrics load
	mux.HandleFunc("/workload/start", wm.start)
	mux.HandleFunc("/workload/stop", wm.stop)

	addr := ":8080"
	if v := os.Getenv("STATEGRAPH_ADDR"); v != "" {
		addr = v
	}
	log.Printf("Starting stategraph server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// promMetricsHandler renders known expvar metrics in Prometheus text format.
func promMetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	type meta struct {
		typ, help string
	}
	metas := map[string]meta{
		"stategraph_runs_total":            {typ: "counter", help: "Runs started"},
		"stategraph_runs_failed_total":     {typ: "counter", help: "Runs ending in failure"},
		"stategraph_node_executions_total": {typ: "counter", help: "Step function invocations observed"},
		"stategraph_node_failures_total":   {typ: "counter", help: "Node failures recorded"},
		"stategraph_commits_total":         {typ: "counter", help: "State commits applied"},
		"stategraph_events_dropped_total":  {typ: "counter", help: "Side-channel events dropped on full buffer"},
		"stategraph_pool_workers":          {typ: "gauge", help: "Worker pool size of the last bounded run"},
		"stategraph_tasks_queued_total":    {typ: "counter", help: "Tasks handed to the worker pool"},
	}

	varNames := make([]string, 0, 64)
	expvar.Do(func(kv expvar.KeyValue) {
		varNames = append(varNames, kv.Key)
	})
	sort.Strings(varNames)

	for _, name := range varNames {
		v := expvar.Get(name)
		m, known := metas[name]
		if !known {
			// Minimal rendering: publish as an untyped gauge if numeric
			if iv, ok := v.(*expvar.Int); ok {
				_, _ = fmt.Fprintf(w, "# TYPE %s gauge\n", name)
				_, _ = fmt.Fprintf(w, "%s %s\n", name, iv.String())
			}
			continue
		}
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, sanitizeHelp(m.help))
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, m.typ)
		_, _ = fmt.Fprintf(w, "%s %s\n", name, v.String())
	}
}

func sanitizeHelp(s string) string {
	// Replace newlines with spaces to satisfy Prometheus text format
	return strings.ReplaceAll(s, "\n", " ")
}
