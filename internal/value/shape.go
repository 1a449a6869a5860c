package value

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain prefix for strategy cache keys.
// Version suffix enables future algorithm migration.
const DomainStrategy = "orchestra/strategy/v1"

// ShapeTag returns a stable descriptor of an upstream value's shape:
// candidate keys together with their runtime kinds.
//
// Two upstream results with the same tag bind to any fixed signature the
// same way - name matches depend on keys, type matches on kinds, and
// positional unpacking on sequence arity. That determinism is what lets
// the adaptive strategy cache replay a recorded strategy safely:
//
//	Map{"price": Float, "customer": String} -> "map:customer=str,price=float"
//	List{Int, String, Float}               -> "seq:int,str,float"
//	Record{TypeName:"Order", …}            -> "record:Order:price=float,customer=str"
//	Int(42)                                -> "scalar:int"
//
// Map keys are sorted so insertion order never changes the tag; record
// fields keep declaration order.
func ShapeTag(v Value) string {
	switch val := v.(type) {
	case Map:
		parts := make([]string, 0, len(val))
		for _, k := range val.SortedKeys() {
			parts = append(parts, k+"="+string(KindOf(val[k])))
		}
		return "map:" + strings.Join(parts, ",")
	case List:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = string(KindOf(elem))
		}
		return "seq:" + strings.Join(parts, ",")
	case Record:
		parts := make([]string, len(val.Fields))
		for i, f := range val.Fields {
			parts[i] = f.Name + "=" + string(KindOf(f.Value))
		}
		return "record:" + val.TypeName + ":" + strings.Join(parts, ",")
	default:
		return "scalar:" + string(KindOf(v))
	}
}

// StrategyKey computes the cache key for a (function identity, shape tag)
// pair: SHA-256 with domain separation over NFC-normalized inputs.
//
// Identifiers are NFC-normalized first so visually identical function or
// field names arriving in different Unicode compositions share one record.
// The null byte separators prevent boundary ambiguity between components.
func StrategyKey(functionIdentity, shapeTag string) string {
	h := sha256.New()
	h.Write([]byte(DomainStrategy))
	h.Write([]byte{0x00})
	h.Write([]byte(norm.NFC.String(functionIdentity)))
	h.Write([]byte{0x00})
	h.Write([]byte(norm.NFC.String(shapeTag)))
	return hex.EncodeToString(h.Sum(nil))
}
