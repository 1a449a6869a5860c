package sig

import (
	"errors"
	"fmt"
	"sync"
)

// AnalysisError indicates a callable's parameter list could not be
// introspected. The orchestrator recovers from it locally by degrading to
// positional invocation; it is never surfaced to callers as a failure.
type AnalysisError struct {
	// Function is the callable identity.
	Function string

	// Reason describes why analysis failed.
	Reason string
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	return fmt.Sprintf("signature analysis failed for %s: %s", e.Function, e.Reason)
}

// IsAnalysisError returns true if the error is a signature analysis
// failure. Uses errors.As to handle wrapped errors.
func IsAnalysisError(err error) bool {
	var ae *AnalysisError
	return errors.As(err, &ae)
}

// Analyze produces the structured signature of a callable.
//
// Returns *AnalysisError when the callable declares no signature the
// engine can target. A declared signature that fails validation is also
// an analysis failure - a malformed declaration is indistinguishable from
// no declaration as far as matching is concerned.
func Analyze(c *Callable) (*Signature, error) {
	if c.Sig == nil {
		return nil, &AnalysisError{
			Function: c.Identity(),
			Reason:   "callable declares no signature",
		}
	}
	if err := c.Sig.Validate(); err != nil {
		return nil, &AnalysisError{
			Function: c.Identity(),
			Reason:   err.Error(),
		}
	}
	return c.Sig, nil
}

// Cache memoizes Analyze results keyed by callable identity for the
// lifetime of the orchestration session. Callables are static for a
// running pipeline, so entries are never invalidated.
//
// Safe for concurrent population: parallel fan-out branches may analyze
// the same function at once. Analysis is idempotent, so the policy is
// compute-twice-keep-either - the first write wins and a concurrent
// duplicate result is discarded.
type Cache struct {
	mu   sync.RWMutex
	sigs map[string]*Signature
}

// NewCache creates an empty signature cache.
func NewCache() *Cache {
	return &Cache{sigs: make(map[string]*Signature)}
}

// Analyze returns the memoized signature for the callable, computing and
// storing it on first encounter. Analysis failures are not cached - a
// non-introspectable callable stays cheap to re-check and the fallback
// path does not depend on the cache.
func (c *Cache) Analyze(callable *Callable) (*Signature, error) {
	id := callable.Identity()

	c.mu.RLock()
	s, ok := c.sigs[id]
	c.mu.RUnlock()
	if ok {
		return s, nil
	}

	s, err := Analyze(callable)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.sigs[id]; ok {
		// Concurrent branch got here first; either result is identical
		return existing, nil
	}
	c.sigs[id] = s
	return s, nil
}

// Len returns the number of memoized signatures.
// Used for testing and introspection.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sigs)
}
