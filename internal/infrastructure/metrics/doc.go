// Package metrics exposes expvar-published counters and gauges used by the
// stategraph runtime (executor, worker pool, and event stream). It
// intentionally avoids external dependencies and is consumed by the optional
// stategraph-server for /debug/vars and /metrics endpoints.
package metrics
