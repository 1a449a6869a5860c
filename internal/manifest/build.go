package manifest

import (
	"fmt"

	"github.com/aitomatic/orchestra/internal/engine"
	"github.com/aitomatic/orchestra/internal/pipeline"
	"github.com/aitomatic/orchestra/internal/sig"
	"github.com/aitomatic/orchestra/internal/value"
)

// Resolver maps function identities to registered callables.
type Resolver interface {
	Resolve(identity string) (*sig.Callable, bool)
}

// BuildResult is the runtime form of a manifest, ready to run.
type BuildResult struct {
	Pipeline *pipeline.Pipeline
	Store    *engine.Store
	Input    value.Value
}

// Build resolves the manifest against registered callables: stage
// references become a Pipeline, context declarations become a scoped
// Store, function refinements install defaults, and the input is
// converted to a Value.
func (m *Manifest) Build(r Resolver) (*BuildResult, error) {
	if err := m.applyFunctions(r); err != nil {
		return nil, err
	}

	stages := make([]pipeline.Stage, len(m.Pipeline))
	for i, decl := range m.Pipeline {
		stage, err := m.buildStage(i, decl, r)
		if err != nil {
			return nil, err
		}
		stages[i] = stage
	}

	store, err := m.buildStore()
	if err != nil {
		return nil, err
	}

	input, err := value.FromGo(m.Input)
	if err != nil {
		return nil, &Error{Code: ErrCodeBadValue, Message: fmt.Sprintf("input: %v", err)}
	}

	return &BuildResult{
		Pipeline: pipeline.New(m.Name, stages...),
		Store:    store,
		Input:    input,
	}, nil
}

// applyFunctions installs declared defaults on registered callables.
func (m *Manifest) applyFunctions(r Resolver) error {
	for _, decl := range m.Functions {
		c, ok := r.Resolve(decl.Identity())
		if !ok {
			return &Error{Code: ErrCodeUnknownFunction,
				Message: fmt.Sprintf("function %s is not registered", decl.Identity())}
		}
		for _, p := range decl.Params {
			if c.Sig == nil {
				return &Error{Code: ErrCodeUnknownParam,
					Message: fmt.Sprintf("function %s has no declared signature", decl.Identity())}
			}
			param, ok := c.Sig.Param(p.Name)
			if !ok {
				return &Error{Code: ErrCodeUnknownParam,
					Message: fmt.Sprintf("function %s has no parameter %q", decl.Identity(), p.Name)}
			}
			if p.Type != "" && param.Type != value.TypeAny && string(param.Type) != p.Type {
				return &Error{Code: ErrCodeBadValue,
					Message: fmt.Sprintf("function %s parameter %q is %s, manifest declares %s",
						decl.Identity(), p.Name, param.Type, p.Type)}
			}
			if p.Default != nil {
				def, err := value.FromGo(p.Default)
				if err != nil {
					return &Error{Code: ErrCodeBadValue,
						Message: fmt.Sprintf("function %s parameter %q default: %v", decl.Identity(), p.Name, err)}
				}
				c.WithDefault(p.Name, def)
			}
		}
	}
	return nil
}

func (m *Manifest) buildStage(i int, decl StageDecl, r Resolver) (pipeline.Stage, error) {
	switch {
	case decl.Fn != "" && len(decl.Parallel) > 0:
		return pipeline.Stage{}, &Error{Code: ErrCodeBadStage,
			Message: fmt.Sprintf("stage %d sets both fn and parallel", i)}
	case decl.Fn != "":
		c, ok := r.Resolve(decl.Fn)
		if !ok {
			return pipeline.Stage{}, &Error{Code: ErrCodeUnknownFunction,
				Message: fmt.Sprintf("stage %d: function %s is not registered", i, decl.Fn)}
		}
		return pipeline.Seq(c), nil
	case len(decl.Parallel) > 0:
		targets := make([]*sig.Callable, len(decl.Parallel))
		for j, ref := range decl.Parallel {
			c, ok := r.Resolve(ref)
			if !ok {
				return pipeline.Stage{}, &Error{Code: ErrCodeUnknownFunction,
					Message: fmt.Sprintf("stage %d branch %d: function %s is not registered", i, j, ref)}
			}
			targets[j] = c
		}
		return pipeline.Par(targets...), nil
	default:
		return pipeline.Stage{}, &Error{Code: ErrCodeBadStage,
			Message: fmt.Sprintf("stage %d sets neither fn nor parallel", i)}
	}
}

func (m *Manifest) buildStore() (*engine.Store, error) {
	store := engine.NewStore()
	scopes := []struct {
		scope  engine.Scope
		values map[string]any
	}{
		{engine.ScopeLocal, m.Context.Local},
		{engine.ScopePrivate, m.Context.Private},
		{engine.ScopePublic, m.Context.Public},
	}
	for _, s := range scopes {
		for name, raw := range s.values {
			v, err := value.FromGo(raw)
			if err != nil {
				return nil, &Error{Code: ErrCodeBadValue,
					Message: fmt.Sprintf("context %s.%s: %v", s.scope, name, err)}
			}
			store.Set(s.scope, name, v)
		}
	}
	return store, nil
}
