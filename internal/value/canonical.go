package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MarshalCanonical serializes a Value to deterministic JSON: map keys in
// sorted order, floats in strconv 'g' form, record fields in declaration
// order with the type name under "$type".
//
// Canonical bytes feed strategy-key hashing and golden trace comparison,
// so the same Value must always produce identical bytes.
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
		return nil

	case String:
		return writeJSONString(buf, string(val))

	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil

	case Float:
		// 'g' with -1 precision is the shortest round-trippable form
		buf.WriteString(strconv.FormatFloat(float64(val), 'g', -1, 64))
		return nil

	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
		return nil

	case List:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("list[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil

	case Map:
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("map[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
		return nil

	case Record:
		buf.WriteByte('{')
		if err := writeJSONString(buf, "$type"); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeJSONString(buf, val.TypeName); err != nil {
			return err
		}
		for _, f := range val.Fields {
			buf.WriteByte(',')
			if err := writeJSONString(buf, f.Name); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, f.Value); err != nil {
				return fmt.Errorf("record %s.%s: %w", val.TypeName, f.Name, err)
			}
		}
		buf.WriteByte('}')
		return nil

	default:
		return fmt.Errorf("unknown Value type: %T", v)
	}
}

// writeJSONString writes a JSON-escaped string using encoding/json so
// escaping matches the standard library exactly.
func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal string %q: %w", s, err)
	}
	buf.Write(b)
	return nil
}
