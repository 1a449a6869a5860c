package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// FromJSON deserializes JSON into a Value.
//
// Numbers without a fractional part or exponent become Int; everything else
// numeric becomes Float. JSON null becomes Null (not nil) to satisfy the
// sealed interface. Objects become Map - JSON carries no record type names,
// so records never come from this boundary.
func FromJSON(data []byte) (Value, error) {
	// json.Decoder with UseNumber() preserves the int/float distinction
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	return FromGo(raw)
}

// FromGo converts a plain Go value into a Value.
//
// This is the single reflection boundary for upstream data: pipeline stages
// that return native Go values cross through here once, and everything past
// the extractor operates on the closed Value union.
//
// Supported inputs: nil, bool, string, all int/uint widths, float32/64,
// json.Number, []any, map[string]any, any Value (returned as-is), and
// structs (converted to Record via exported fields in declaration order).
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		return Int(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		if val > 1<<63-1 {
			return nil, fmt.Errorf("uint64 value %d overflows int64", val)
		}
		return Int(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number out of range: %s", val)
		}
		return Float(f), nil
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			list[i] = conv
		}
		return list, nil
	case map[string]any:
		m := make(Map, len(val))
		for k, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("map[%q]: %w", k, err)
			}
			m[k] = conv
		}
		return m, nil
	default:
		return fromGoReflect(v)
	}
}

// fromGoReflect handles struct conversion to Record. Anything else is
// rejected - callers must stay within the supported input set.
func fromGoReflect(v any) (Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Null{}, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("unsupported type: %T", v)
	}

	rt := rv.Type()
	fields := make([]Field, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv, err := FromGo(rv.Field(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", rt.Name(), sf.Name, err)
		}
		fields = append(fields, Field{Name: fieldName(sf), Value: fv})
	}
	return Record{TypeName: rt.Name(), Fields: fields}, nil
}

// fieldName resolves a struct field's candidate name: the json tag if
// present, otherwise the Go field name.
func fieldName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" || tag == "-" {
		return sf.Name
	}
	for i, r := range tag {
		if r == ',' {
			return tag[:i]
		}
	}
	return tag
}
