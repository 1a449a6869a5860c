package engine

import (
	"github.com/aitomatic/orchestra/internal/sig"
	"github.com/aitomatic/orchestra/internal/value"
)

// InjectionSource records where an injected parameter's value came from,
// for traces and diagnostics.
type InjectionSource string

const (
	SourceMatch   InjectionSource = "match"
	SourceContext InjectionSource = "context"
	SourceDefault InjectionSource = "default"
)

// BoundArgs is the final argument set for invocation: every required
// parameter has an entry, validated before this value is constructed.
type BoundArgs struct {
	// Args maps every resolved parameter name to its value.
	Args map[string]value.Value

	// Sources records how each parameter was resolved.
	Sources map[string]InjectionSource

	// Scopes records the context scope used for context-injected
	// parameters.
	Scopes map[string]Scope
}

// Inject fills parameters left unbound by matching, in declaration order:
// scoped context lookup (local > private > public), then the declared
// default, else the parameter is unresolved. Unresolved required
// parameters fail with an UNRESOLVED_PARAMETER error naming every one of
// them - the single hard failure point of the whole pipeline.
//
// Purely reads from the context store; never writes.
func Inject(s *sig.Signature, partial *Binding, store ContextStore, function string) (*BoundArgs, error) {
	bound := &BoundArgs{
		Args:    make(map[string]value.Value, len(s.Params)),
		Sources: make(map[string]InjectionSource, len(s.Params)),
		Scopes:  make(map[string]Scope),
	}

	var unresolved []string
	for _, p := range s.Params {
		if v, ok := partial.Args[p.Name]; ok {
			bound.Args[p.Name] = v
			bound.Sources[p.Name] = SourceMatch
			continue
		}

		if store != nil {
			if v, scope, ok := store.Lookup(p.Name); ok {
				bound.Args[p.Name] = v
				bound.Sources[p.Name] = SourceContext
				bound.Scopes[p.Name] = scope
				continue
			}
		}

		if p.Default != nil {
			bound.Args[p.Name] = p.Default
			bound.Sources[p.Name] = SourceDefault
			continue
		}

		if p.Required {
			unresolved = append(unresolved, p.Name)
		}
	}

	if len(unresolved) > 0 {
		return nil, NewUnresolvedError(function, unresolved)
	}

	// Defensive re-check: every required parameter must have an entry
	for _, p := range s.Params {
		if p.Required {
			if _, ok := bound.Args[p.Name]; !ok {
				return nil, NewUnresolvedError(function, []string{p.Name})
			}
		}
	}

	return bound, nil
}
