// Package prebuilt provides ready-made graph constructors for the two
// workflow shapes the engine is most often used for: sequential chains and
// parallel fan-out/fan-in. Each constructor returns a validated
// *stategraph.Graph that can be run with the default runtime or extended
// with a Builder.
package prebuilt
