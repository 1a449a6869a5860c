// Package pipeline drives ordered compositions of callables through the
// orchestration engine.
//
// A Pipeline is a list of stages; each stage is one callable or a parallel
// group of callables. The Runner threads each stage's output into the next
// stage as the upstream value, fans parallel groups out concurrently, and
// stamps every call with a logical clock to build a deterministic trace.
// Each run is identified by a run token (UUIDv7 in production, fixed
// tokens in tests) so traces from concurrent runs stay distinguishable.
package pipeline
