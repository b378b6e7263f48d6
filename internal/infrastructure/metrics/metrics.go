package metrics

import (
	"expvar"
)

// Run / executor metrics.
var (
	runsTotal       = new(expvar.Int)
	runsFailedTotal = new(expvar.Int)
	nodeExecsTotal  = new(expvar.Int)
	nodeFailsTotal  = new(expvar.Int)
	commitsTotal    = new(expvar.Int)
	eventsDropped   = new(expvar.Int)
	poolWorkers     = new(expvar.Int)
	tasksQueued     = new(expvar.Int)
)

func init() {
	expvar.Publish("stategraph_runs_total", runsTotal)
	expvar.Publish("stategraph_runs_failed_total", runsFailedTotal)
	expvar.Publish("stategraph_node_executions_total", nodeExecsTotal)
	expvar.Publish("stategraph_node_failures_total", nodeFailsTotal)
	expvar.Publish("stategraph_commits_total", commitsTotal)
	expvar.Publish("stategraph_events_dropped_total", eventsDropped)
	expvar.Publish("stategraph_pool_workers", poolWorkers)
	expvar.Publish("stategraph_tasks_queued_total", tasksQueued)
}

// Executor helpers
func IncRuns()             { runsTotal.Add(1) }
func IncRunsFailed()       { runsFailedTotal.Add(1) }
func IncNodeExecs(n int64) { nodeExecsTotal.Add(n) }
func IncNodeFailures()     { nodeFailsTotal.Add(1) }
func IncCommits()          { commitsTotal.Add(1) }
func IncEventsDropped()    { eventsDropped.Add(1) }
func SetPoolWorkers(n int) { poolWorkers.Set(int64(n)) }
func AddTasksQueued(n int) { tasksQueued.Add(int64(n)) }
