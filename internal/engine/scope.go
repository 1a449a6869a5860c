package engine

import (
	"fmt"

	"github.com/aitomatic/orchestra/internal/value"
)

// Scope identifies one layer of the scoped context store.
type Scope string

const (
	// ScopeLocal holds values visible only to the current pipeline run.
	// Highest lookup priority.
	ScopeLocal Scope = "local"

	// ScopePrivate holds values private to the defining module.
	ScopePrivate Scope = "private"

	// ScopePublic holds values shared across the whole session.
	// Lowest lookup priority.
	ScopePublic Scope = "public"
)

// scopePriority is the fixed lookup order. Shadowing across scopes is
// resolved by this order; it never changes at runtime.
var scopePriority = [...]Scope{ScopeLocal, ScopePrivate, ScopePublic}

// ValidateScope checks that a scope name is one of local, private, public.
func ValidateScope(s string) error {
	switch Scope(s) {
	case ScopeLocal, ScopePrivate, ScopePublic:
		return nil
	default:
		return fmt.Errorf("invalid scope %q: must be local, private, or public", s)
	}
}

// ContextStore is the lookup capability the engine requires from the
// host's scoped variable store. The engine only reads; mutation is owned
// by the code driving the pipeline.
type ContextStore interface {
	// Lookup returns the value bound to name in the highest-priority
	// scope that defines it, along with that scope.
	Lookup(name string) (value.Value, Scope, bool)
}

// Store is the concrete layered context store: three scopes with unique
// keys per scope and fixed-priority shadowing across scopes.
type Store struct {
	scopes map[Scope]map[string]value.Value
}

// NewStore creates an empty context store.
func NewStore() *Store {
	return &Store{scopes: map[Scope]map[string]value.Value{
		ScopeLocal:   {},
		ScopePrivate: {},
		ScopePublic:  {},
	}}
}

// Set binds name to v in the given scope, replacing any previous binding
// in that scope. Called by the pipeline host, never by the engine.
func (s *Store) Set(scope Scope, name string, v value.Value) *Store {
	s.scopes[scope][name] = v
	return s
}

// Lookup returns the first definition of name in priority order
// local > private > public.
func (s *Store) Lookup(name string) (value.Value, Scope, bool) {
	for _, scope := range scopePriority {
		if v, ok := s.scopes[scope][name]; ok {
			return v, scope, true
		}
	}
	return nil, "", false
}

// Len returns the total number of bindings across all scopes.
// Used for testing and introspection.
func (s *Store) Len() int {
	n := 0
	for _, m := range s.scopes {
		n += len(m)
	}
	return n
}
