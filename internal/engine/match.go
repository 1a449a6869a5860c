package engine

import (
	"github.com/aitomatic/orchestra/internal/sig"
	"github.com/aitomatic/orchestra/internal/value"
)

// Strategy identifies which matching strategy bound a parameter (and, at
// call granularity, which strategy dominated the call - that is what the
// adaptive cache records).
type Strategy string

const (
	StrategyNameMatch    Strategy = "name_match"
	StrategyTypeMatch    Strategy = "type_match"
	StrategyTupleUnpack  Strategy = "tuple_unpack"
	StrategySingleScalar Strategy = "single_scalar"
)

// ValidStrategy reports whether s is one of the four matching strategies.
func ValidStrategy(s Strategy) bool {
	switch s {
	case StrategyNameMatch, StrategyTypeMatch, StrategyTupleUnpack, StrategySingleScalar:
		return true
	}
	return false
}

// Binding is the (possibly partial) result of matching extracted values
// against a signature. Parameters not present in Args are handed to the
// context injector.
type Binding struct {
	// Args maps bound parameter names to values.
	Args map[string]value.Value

	// Strategies records which strategy bound each parameter.
	Strategies map[string]Strategy

	consumed map[string]bool // extracted keys already claimed
}

func newBinding() *Binding {
	return &Binding{
		Args:       make(map[string]value.Value),
		Strategies: make(map[string]Strategy),
		consumed:   make(map[string]bool),
	}
}

func (b *Binding) bind(param, key string, v value.Value, s Strategy) {
	b.Args[param] = v
	b.Strategies[param] = s
	b.consumed[key] = true
}

// Bound reports whether the parameter has been bound.
func (b *Binding) Bound(param string) bool {
	_, ok := b.Args[param]
	return ok
}

// Dominant returns the strategy that bound the most parameters, breaking
// ties by strategy priority (name > type > tuple > single). Returns false
// when nothing was bound from extraction.
func (b *Binding) Dominant() (Strategy, bool) {
	if len(b.Strategies) == 0 {
		return "", false
	}
	counts := make(map[Strategy]int, 4)
	for _, s := range b.Strategies {
		counts[s]++
	}
	order := [...]Strategy{StrategyNameMatch, StrategyTypeMatch, StrategyTupleUnpack, StrategySingleScalar}
	best := order[0]
	bestCount := -1
	for _, s := range order {
		if counts[s] > bestCount {
			best = s
			bestCount = counts[s]
		}
	}
	return best, true
}

// Match binds extracted values to a target signature using, in priority
// order: exact name match, conservative type match, positional unpacking
// (sequence shapes only), and the single-scalar fallback.
//
// The output is necessarily partial - ambiguity defers to the context
// injector rather than guessing. The only error produced here is a
// TYPE_MISMATCH for a name-matched value that provably violates the
// parameter's declared type; everything else is best-effort.
func Match(s *sig.Signature, extracted *Extracted, function string) (*Binding, error) {
	b := newBinding()

	if err := matchNames(b, s, extracted, function); err != nil {
		return nil, err
	}
	matchTypes(b, s, extracted)
	matchPositional(b, s, extracted)
	matchSingleScalar(b, s, extracted)

	return b, nil
}

// matchNames binds parameters whose name exactly equals an extracted key.
//
// Name identity is the strongest signal the engine has, so a name-matched
// value that violates a declared non-any type is a hard TYPE_MISMATCH -
// silently skipping it would bind the parameter from context or defaults
// while an explicitly labeled value sits ignored in the upstream result.
func matchNames(b *Binding, s *sig.Signature, extracted *Extracted, function string) error {
	for _, p := range s.Params {
		v, ok := extracted.Get(p.Name)
		if !ok {
			continue
		}
		if !value.AssignableTo(v, p.Type) {
			return NewTypeMismatchError(function, p.Name, string(p.Type), string(value.KindOf(v)))
		}
		b.bind(p.Name, p.Name, v, StrategyNameMatch)
	}
	return nil
}

// matchTypes binds still-unbound typed parameters when exactly one
// unconsumed candidate is assignable to the declared type.
//
// Tie-break rule: two or more assignable candidates leave the parameter
// unbound (deferred to injection/defaulting) rather than guessing.
func matchTypes(b *Binding, s *sig.Signature, extracted *Extracted) {
	for _, p := range s.Params {
		if b.Bound(p.Name) || p.Type == "" || p.Type == value.TypeAny {
			continue
		}

		matchKey := ""
		matchCount := 0
		for _, key := range extracted.Keys() {
			if b.consumed[key] {
				continue
			}
			v, _ := extracted.Get(key)
			if value.AssignableTo(v, p.Type) {
				matchKey = key
				matchCount++
				if matchCount > 1 {
					break
				}
			}
		}

		if matchCount == 1 {
			v, _ := extracted.Get(matchKey)
			b.bind(p.Name, matchKey, v, StrategyTypeMatch)
		}
	}
}

// matchPositional binds remaining parameters to remaining positional
// values in declaration order. Applies only to sequence-shaped extraction.
// Unpacking stops at the first pair that violates a declared type - a
// misaligned zip would bind garbage to everything after it.
func matchPositional(b *Binding, s *sig.Signature, extracted *Extracted) {
	if extracted.Category != ShapeSequence {
		return
	}

	remaining := make([]string, 0, extracted.Len())
	for _, key := range extracted.Keys() {
		if !b.consumed[key] {
			remaining = append(remaining, key)
		}
	}

	i := 0
	for _, p := range s.Params {
		if i >= len(remaining) {
			break
		}
		if b.Bound(p.Name) {
			continue
		}
		v, _ := extracted.Get(remaining[i])
		if !value.AssignableTo(v, p.Type) {
			break
		}
		b.bind(p.Name, remaining[i], v, StrategyTupleUnpack)
		i++
	}
}

// matchSingleScalar binds a bare scalar to the sole unbound required
// parameter. Applies only when extraction produced exactly the reserved
// single-value key and exactly one required parameter is unbound.
func matchSingleScalar(b *Binding, s *sig.Signature, extracted *Extracted) {
	if extracted.Category != ShapeScalar || b.consumed[SingleKey] {
		return
	}

	target := ""
	for _, p := range s.Params {
		if p.Required && !b.Bound(p.Name) {
			if target != "" {
				return // more than one unbound required parameter
			}
			target = p.Name
		}
	}
	if target == "" {
		return
	}

	v, _ := extracted.Get(SingleKey)
	b.bind(target, SingleKey, v, StrategySingleScalar)
}
