package engine

import (
	"strconv"

	"github.com/aitomatic/orchestra/internal/value"
)

// SingleKey is the reserved candidate key for a bare scalar upstream value.
const SingleKey = "__single__"

// ShapeCategory classifies how an upstream value was decomposed into
// candidates. The matcher's positional and single-scalar fallbacks only
// apply to their respective categories.
type ShapeCategory int

const (
	// ShapeMapping - string-keyed values; keys are candidate names.
	ShapeMapping ShapeCategory = iota

	// ShapeSequence - ordered fixed-size values; keys are positional
	// indices "0".."n-1".
	ShapeSequence

	// ShapeRecord - structured value; keys are field names.
	ShapeRecord

	// ShapeScalar - anything else; a single entry under SingleKey.
	ShapeScalar
)

// String returns the category name for traces and logs.
func (s ShapeCategory) String() string {
	switch s {
	case ShapeMapping:
		return "mapping"
	case ShapeSequence:
		return "sequence"
	case ShapeRecord:
		return "record"
	default:
		return "scalar"
	}
}

// Extracted maps candidate keys to values produced from one upstream
// result, remembering the shape category and the candidate order.
type Extracted struct {
	// Category is how the upstream value decomposed.
	Category ShapeCategory

	// Tag is the stable shape tag used by the strategy cache.
	Tag string

	vals map[string]value.Value
	keys []string // candidate keys in source order
}

// Get returns the candidate value for a key.
func (e *Extracted) Get(key string) (value.Value, bool) {
	v, ok := e.vals[key]
	return v, ok
}

// Keys returns candidate keys in source order: positional order for
// sequences, field order for records, sorted order for mappings.
func (e *Extracted) Keys() []string {
	return e.keys
}

// Len returns the number of candidates.
func (e *Extracted) Len() int {
	return len(e.vals)
}

// Extract decomposes an upstream value into candidate parameter bindings.
//
// Checked in order: mapping (own keys), sequence (positional indices),
// record (field names), scalar (single entry under SingleKey). Extraction
// is total - every value falls into exactly one case and the result is
// never empty.
func Extract(v value.Value) *Extracted {
	switch val := v.(type) {
	case value.Map:
		keys := val.SortedKeys()
		vals := make(map[string]value.Value, len(val))
		for k, elem := range val {
			vals[k] = elem
		}
		return &Extracted{Category: ShapeMapping, Tag: value.ShapeTag(v), vals: vals, keys: keys}

	case value.List:
		vals := make(map[string]value.Value, len(val))
		keys := make([]string, len(val))
		for i, elem := range val {
			k := strconv.Itoa(i)
			vals[k] = elem
			keys[i] = k
		}
		return &Extracted{Category: ShapeSequence, Tag: value.ShapeTag(v), vals: vals, keys: keys}

	case value.Record:
		vals := make(map[string]value.Value, len(val.Fields))
		keys := make([]string, len(val.Fields))
		for i, f := range val.Fields {
			vals[f.Name] = f.Value
			keys[i] = f.Name
		}
		return &Extracted{Category: ShapeRecord, Tag: value.ShapeTag(v), vals: vals, keys: keys}

	default:
		return &Extracted{
			Category: ShapeScalar,
			Tag:      value.ShapeTag(v),
			vals:     map[string]value.Value{SingleKey: v},
			keys:     []string{SingleKey},
		}
	}
}
