package value

import "fmt"

// Type is a declared-type tag attached to a parameter. The empty tag and
// TypeAny both mean "accepts anything". Any other non-builtin tag is
// interpreted as a record type name.
type Type string

const (
	// TypeAny accepts every value. Parameters declared without a type
	// behave identically.
	TypeAny Type = "any"

	TypeString Type = "str"
	TypeInt    Type = "int"
	TypeFloat  Type = "float"
	TypeBool   Type = "bool"
	TypeList   Type = "list"
	TypeMap    Type = "map"
)

// builtinTypes is the closed set of non-record type tags.
var builtinTypes = map[Type]bool{
	TypeAny:    true,
	TypeString: true,
	TypeInt:    true,
	TypeFloat:  true,
	TypeBool:   true,
	TypeList:   true,
	TypeMap:    true,
}

// IsBuiltin reports whether t is one of the builtin type tags.
func (t Type) IsBuiltin() bool {
	return builtinTypes[t]
}

// ValidateType checks that a declared type tag is well-formed.
// Builtin tags and record type names (any other non-empty identifier)
// are accepted; the empty string is accepted and means "any".
func ValidateType(t Type) error {
	if t == "" || t.IsBuiltin() {
		return nil
	}
	// Record type names must be plain identifiers.
	for i, r := range t {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return fmt.Errorf("invalid type tag %q: must not start with a digit", t)
			}
		default:
			return fmt.Errorf("invalid type tag %q: not a builtin type or record name", t)
		}
	}
	return nil
}

// AssignableTo reports whether v satisfies the declared type t.
//
// Scalar kinds match exactly: an Int is NOT assignable to float and vice
// versa. Exact matching keeps type-guided binding deterministic - widening
// would make "exactly one candidate is assignable" depend on unrelated
// values in the same upstream result.
//
// Null is assignable only to "any". Record tags match by type name.
func AssignableTo(v Value, t Type) bool {
	if t == "" || t == TypeAny {
		return true
	}
	switch t {
	case TypeString:
		return KindOf(v) == KindString
	case TypeInt:
		return KindOf(v) == KindInt
	case TypeFloat:
		return KindOf(v) == KindFloat
	case TypeBool:
		return KindOf(v) == KindBool
	case TypeList:
		return KindOf(v) == KindList
	case TypeMap:
		return KindOf(v) == KindMap
	default:
		// Record type name match
		r, ok := v.(Record)
		return ok && r.TypeName == string(t)
	}
}
