// Package stategraph provides a minimal public façade for defining and
// executing directed task graphs without importing internal packages. It
// re-exports the core graph and run types and exposes a Runtime with simple
// methods to register and run graphs.
package stategraph
