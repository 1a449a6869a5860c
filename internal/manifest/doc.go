// Package manifest loads declarative orchestration setups from YAML.
//
// A manifest names a pipeline, its stages (function references or
// parallel groups), scoped context values, optional per-function default
// refinements, and the initial input. Decoded manifests are unified
// against an embedded CUE schema before resolution, so structural errors
// surface with positions and stable codes rather than as nil-map panics
// later.
package manifest
