// Package store persists adaptive strategy records in SQLite, so learned
// (function, shape) -> strategy pairs survive process restarts.
//
// The Store implements engine.StrategyCache. Storage failures degrade to
// cache misses and logged warnings rather than orchestration errors - the
// cache is a hint, never a correctness dependency.
package store
