// Package sig defines function signatures and the callable registration
// contract for pipeline-eligible functions.
//
// The source system relied on runtime reflection over dynamic function
// objects. Go reflection cannot recover parameter names, so this package
// trades implicit introspection for an explicit contract: every callable
// carries a declared Signature (built directly, via FromGoFunc with
// caller-supplied names, or compiled from a manifest). Analyze validates
// the declaration and the orchestrator degrades to positional invocation
// when no targetable signature exists.
package sig
