package builtin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aitomatic/orchestra/internal/sig"
)

// Registry holds registered callables keyed by identity.
//
// Thread-safety: safe for concurrent use. Registration normally happens
// once at startup, lookups happen on every manifest build.
type Registry struct {
	mu        sync.RWMutex
	callables map[string]*sig.Callable
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{callables: make(map[string]*sig.Callable)}
}

// Register adds a callable. Duplicate identities are rejected - two
// functions answering to one name would make manifest references
// ambiguous.
func (r *Registry) Register(c *sig.Callable) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := c.Identity()
	if _, exists := r.callables[id]; exists {
		return fmt.Errorf("function %s already registered", id)
	}
	r.callables[id] = c
	return nil
}

// MustRegister is Register but panics on duplicates. Use for static
// registration at startup, where a duplicate is a programming error.
func (r *Registry) MustRegister(c *sig.Callable) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Resolve returns the callable for an identity.
// Implements manifest.Resolver.
func (r *Registry) Resolve(identity string) (*sig.Callable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.callables[identity]
	return c, ok
}

// Identities returns all registered identities in sorted order.
func (r *Registry) Identities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.callables))
	for id := range r.callables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
