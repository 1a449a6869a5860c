// Package value defines the closed tagged-union value model that upstream
// pipeline results are expressed in.
//
// Eight cases cover everything the orchestration engine handles: Null,
// String, Int, Float, Bool, List, Map, and Record. Keeping the union
// sealed means shape dispatch happens in exactly one place (the extractor)
// instead of any-typed reflection leaking into the matcher.
//
// The package also owns the two derived identities the engine relies on:
// canonical JSON bytes (MarshalCanonical) for deterministic traces, and
// shape tags plus domain-separated strategy keys (ShapeTag, StrategyKey)
// for the adaptive strategy cache.
package value
