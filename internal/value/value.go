package value

import (
	"fmt"
	"sort"
)

// Value is a sealed interface representing upstream pipeline data.
// Only Null, String, Int, Float, Bool, List, Map, and Record implement it.
// The closed set keeps dynamic-shape dispatch out of the matcher: the
// extractor switches over these eight cases and nothing else.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents an explicit null value.
// Using an explicit type ensures all Values satisfy the sealed interface.
type Null struct{}

func (Null) value() {}

// String represents a string value.
type String string

func (String) value() {}

// Int represents an integer value. Always int64.
type Int int64

func (Int) value() {}

// Float represents a floating-point value. Always float64.
// Pipeline data is ordinary application data (prices, rates, measurements),
// so floats are first-class here.
type Float float64

func (Float) value() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// List represents an ordered, fixed-size sequence of values.
// Produced by tuple-style upstream results; the extractor turns each
// element into a positional candidate.
type List []Value

func (List) value() {}

// Map represents string-keyed values. Map keys become candidate parameter
// names during extraction.
type Map map[string]Value

func (Map) value() {}

// Field is one named field of a Record, in declaration order.
type Field struct {
	Name  string
	Value Value
}

// Record represents a structured value with a type name and ordered named
// fields. Field names become candidate parameter names during extraction,
// and the type name participates in declared-type matching.
//
// Invariant: field names are unique within one record.
type Record struct {
	TypeName string
	Fields   []Field
}

func (Record) value() {}

// Get returns the value of the named field.
func (r Record) Get(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// NewRecord creates a Record, validating field name uniqueness.
func NewRecord(typeName string, fields ...Field) (Record, error) {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return Record{}, fmt.Errorf("record %s: duplicate field %q", typeName, f.Name)
		}
		seen[f.Name] = true
	}
	return Record{TypeName: typeName, Fields: fields}, nil
}

// MustRecord is like NewRecord but panics on error.
// Use only in tests or when fields are known to be unique.
func MustRecord(typeName string, fields ...Field) Record {
	r, err := NewRecord(typeName, fields...)
	if err != nil {
		panic(err)
	}
	return r
}

// F is a shorthand Field constructor for ergonomic record building.
func F(name string, v Value) Field {
	return Field{Name: name, Value: v}
}

// Kind identifies the runtime category of a Value.
type Kind string

const (
	KindNull   Kind = "null"
	KindString Kind = "str"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindList   Kind = "list"
	KindMap    Kind = "map"
	KindRecord Kind = "record"
)

// KindOf returns the Kind of a value. A nil Value reports KindNull.
func KindOf(v Value) Kind {
	switch v.(type) {
	case nil, Null:
		return KindNull
	case String:
		return KindString
	case Int:
		return KindInt
	case Float:
		return KindFloat
	case Bool:
		return KindBool
	case List:
		return KindList
	case Map:
		return KindMap
	case Record:
		return KindRecord
	default:
		panic(fmt.Sprintf("unknown Value type: %T", v))
	}
}

// SortedKeys returns the map's keys in lexicographic order.
// Used wherever deterministic iteration matters (canonical JSON, shape tags).
func (m Map) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
