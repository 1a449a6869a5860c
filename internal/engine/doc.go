// Package engine implements the parameter orchestration engine: given a
// value flowing out of one pipeline stage and the next stage's declared
// signature, it decides how to map that value onto the stage's parameters,
// pulls anything still missing from the scoped context store, and invokes
// the call.
//
// Data flow for one call:
//
//	upstream -> Extract -> candidates -+
//	                                   +-> Match -> partial binding
//	signature (memoized analysis) -----+
//	partial binding -> Inject (local > private > public > defaults)
//	                -> fully bound arguments -> invocation
//
// Extraction and matching are best-effort and never fail (ambiguity defers
// rather than errors); the only hard failure is a required parameter no
// source could supply, surfaced as an OrchestrationError. The Orchestrator
// owns the sequencing, the degraded positional path for callables without
// an introspectable signature, and the optional adaptive strategy cache.
package engine
