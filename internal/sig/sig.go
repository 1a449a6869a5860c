package sig

import (
	"context"
	"fmt"

	"github.com/aitomatic/orchestra/internal/value"
)

// Parameter describes one formal parameter of a pipeline-eligible function.
//
// Required is true iff the parameter has no default. The two fields are
// kept in sync by Signature.Validate and by WithDefault.
type Parameter struct {
	// Name is the parameter identifier, unique within a signature.
	Name string

	// Type is the declared type tag. Empty or "any" accepts everything.
	Type value.Type

	// Default is used when no other source supplies a value. Nil means
	// no default (note: an explicit null default is value.Null{}, not nil).
	Default value.Value

	// Required is true iff Default is nil.
	Required bool
}

// Signature is the ordered parameter list of a callable plus an optional
// declared return type.
//
// Invariant: parameter names are unique within one signature.
type Signature struct {
	Params  []Parameter
	Returns value.Type
}

// Param returns the parameter with the given name.
func (s *Signature) Param(name string) (*Parameter, bool) {
	for i := range s.Params {
		if s.Params[i].Name == name {
			return &s.Params[i], true
		}
	}
	return nil, false
}

// Validate checks signature well-formedness: unique parameter names, valid
// type tags, and Required consistent with Default presence.
func (s *Signature) Validate() error {
	seen := make(map[string]bool, len(s.Params))
	for _, p := range s.Params {
		if p.Name == "" {
			return fmt.Errorf("parameter with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true

		if err := value.ValidateType(p.Type); err != nil {
			return fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		if p.Required && p.Default != nil {
			return fmt.Errorf("parameter %q: required but has a default", p.Name)
		}
		if !p.Required && p.Default == nil {
			return fmt.Errorf("parameter %q: optional but has no default", p.Name)
		}
	}
	if err := value.ValidateType(s.Returns); err != nil {
		return fmt.Errorf("return type: %w", err)
	}
	return nil
}

// InvokeFunc is the named-argument invocation form every callable provides.
// The args map holds exactly the bound arguments produced by orchestration.
type InvokeFunc func(ctx context.Context, args map[string]value.Value) (value.Value, error)

// PositionalFunc is the degraded invocation form used when signature
// analysis fails: the upstream value is passed as the sole argument.
type PositionalFunc func(ctx context.Context, arg value.Value) (value.Value, error)

// Callable is the registration contract for pipeline-eligible functions.
//
// Go reflection exposes parameter types but not names, so callables carry
// an explicit declared Signature instead of relying on ambient runtime
// introspection. A nil Signature marks the callable non-introspectable;
// the orchestrator then falls back to positional invocation via Positional.
type Callable struct {
	// Name identifies the function within its module.
	Name string

	// Module is the defining module, e.g. "math" or "orders".
	Module string

	// Sig is the declared signature. Nil means analysis will fail and
	// the orchestrator degrades to positional passing.
	Sig *Signature

	// Fn is the named-argument invoker. Required when Sig is non-nil.
	Fn InvokeFunc

	// Positional is the fallback invoker for non-introspectable
	// callables. Optional when Sig is non-nil.
	Positional PositionalFunc
}

// Identity returns the stable handle "module.name" (or just the name when
// the module is empty). Keyed on by the signature memo cache and the
// adaptive strategy cache.
func (c *Callable) Identity() string {
	if c.Module == "" {
		return c.Name
	}
	return c.Module + "." + c.Name
}

// New creates a callable with an explicit declared signature.
func New(module, name string, s *Signature, fn InvokeFunc) *Callable {
	return &Callable{Name: name, Module: module, Sig: s, Fn: fn}
}

// NewOpaque creates a non-introspectable callable that only supports
// positional invocation. Analysis of the result always fails, which is
// the supported path for fully dynamic functions.
func NewOpaque(module, name string, fn PositionalFunc) *Callable {
	return &Callable{Name: name, Module: module, Positional: fn}
}

// WithDefault returns the callable with a default installed on the named
// parameter, flipping it to optional. Panics if the parameter does not
// exist - defaults are wired at registration time, where a typo is a
// programming error.
func (c *Callable) WithDefault(param string, def value.Value) *Callable {
	if c.Sig == nil {
		panic(fmt.Sprintf("%s: WithDefault on callable without signature", c.Identity()))
	}
	p, ok := c.Sig.Param(param)
	if !ok {
		panic(fmt.Sprintf("%s: WithDefault: no parameter %q", c.Identity(), param))
	}
	p.Default = def
	p.Required = false
	return c
}

// CallPositional invokes the callable with a single positional argument.
// Prefers the dedicated Positional invoker; otherwise binds the value to
// the first declared parameter.
func (c *Callable) CallPositional(ctx context.Context, arg value.Value) (value.Value, error) {
	if c.Positional != nil {
		return c.Positional(ctx, arg)
	}
	if c.Sig != nil && len(c.Sig.Params) > 0 && c.Fn != nil {
		return c.Fn(ctx, map[string]value.Value{c.Sig.Params[0].Name: arg})
	}
	return nil, fmt.Errorf("%s: no positional invocation path", c.Identity())
}
