package engine

import (
	"sync"

	"github.com/aitomatic/orchestra/internal/value"
)

// StrategyCache records which matching strategy succeeded per
// (function identity, upstream shape) pair, so recurring shapes can skip
// straight to the recorded strategy's binding logic.
//
// Never the source of truth: a hit is an optimization hint, a miss means
// "analyze from scratch", and correctness must hold identically either
// way. Implementations must tolerate concurrent use and treat writes as
// idempotent.
type StrategyCache interface {
	// Lookup returns the recorded strategy for the pair, if any.
	Lookup(functionIdentity, shapeTag string) (Strategy, bool)

	// Record stores the strategy that succeeded for the pair.
	// Implementations must not fail the caller - persistence errors are
	// an implementation concern, not an orchestration concern.
	Record(functionIdentity, shapeTag string, s Strategy)
}

// MemoryStrategyCache is the in-process StrategyCache: a mutex-guarded
// map keyed by the domain-separated strategy key.
type MemoryStrategyCache struct {
	mu      sync.Mutex
	records map[string]Strategy
}

// NewMemoryStrategyCache creates an empty in-memory strategy cache.
func NewMemoryStrategyCache() *MemoryStrategyCache {
	return &MemoryStrategyCache{records: make(map[string]Strategy)}
}

// Lookup returns the recorded strategy for the pair, if any.
// Thread-safe: can be called concurrently.
func (c *MemoryStrategyCache) Lookup(functionIdentity, shapeTag string) (Strategy, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.records[value.StrategyKey(functionIdentity, shapeTag)]
	return s, ok
}

// Record stores the strategy for the pair. Idempotent: re-recording the
// same pair simply overwrites, and concurrent writers for the same pair
// always carry the same strategy.
// Thread-safe: can be called concurrently.
func (c *MemoryStrategyCache) Record(functionIdentity, shapeTag string, s Strategy) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records[value.StrategyKey(functionIdentity, shapeTag)] = s
}

// Len returns the number of recorded pairs.
// Used for testing and introspection.
func (c *MemoryStrategyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.records)
}
