package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/aitomatic/orchestra/internal/sig"
	"github.com/aitomatic/orchestra/internal/value"
)

// Default returns a registry populated with the built-in functions the
// CLI exposes to manifests.
func Default() *Registry {
	r := NewRegistry()

	r.MustRegister(numericBinary("math", "add", func(a, b float64) float64 { return a + b }))
	r.MustRegister(numericBinary("math", "subtract", func(a, b float64) float64 { return a - b }))
	r.MustRegister(numericBinary("math", "multiply", func(a, b float64) float64 { return a * b }))
	r.MustRegister(numericUnary("math", "double", func(n float64) float64 { return n * 2 }))
	r.MustRegister(numericUnary("math", "square", func(n float64) float64 { return n * n }))
	r.MustRegister(numericUnary("math", "negate", func(n float64) float64 { return -n }))
	r.MustRegister(sumCallable())

	r.MustRegister(mustGoFunc("strings", "upper", strings.ToUpper, "s"))
	r.MustRegister(mustGoFunc("strings", "lower", strings.ToLower, "s"))
	r.MustRegister(mustGoFunc("strings", "concat", func(left, right string) string {
		return left + right
	}, "left", "right"))
	r.MustRegister(mustGoFunc("strings", "length", func(s string) int64 {
		return int64(len(s))
	}, "s"))

	r.MustRegister(getCallable())
	r.MustRegister(mergeCallable())

	return r
}

func mustGoFunc(module, name string, fn any, paramNames ...string) *sig.Callable {
	c, err := sig.FromGoFunc(module, name, fn, paramNames...)
	if err != nil {
		panic(err)
	}
	return c
}

// asFloat widens Int or Float to float64 for arithmetic.
func asFloat(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case value.Int:
		return float64(n), true
	case value.Float:
		return float64(n), true
	}
	return 0, false
}

// numeric renders an arithmetic result: Int when both operands were Int
// and the result is whole, Float otherwise.
func numeric(result float64, intIn bool) value.Value {
	if intIn && result == float64(int64(result)) {
		return value.Int(int64(result))
	}
	return value.Float(result)
}

// numericUnary builds a one-argument arithmetic callable accepting Int or
// Float. Parameters are declared "any" so scalar inputs bind via the
// single-scalar fallback regardless of numeric kind.
func numericUnary(module, name string, fn func(float64) float64) *sig.Callable {
	s := &sig.Signature{
		Params:  []sig.Parameter{{Name: "n", Type: value.TypeAny, Required: true}},
		Returns: value.TypeAny,
	}
	return sig.New(module, name, s, func(ctx context.Context, args map[string]value.Value) (value.Value, error) {
		n, ok := asFloat(args["n"])
		if !ok {
			return nil, fmt.Errorf("%s.%s: n must be numeric, got %s", module, name, value.KindOf(args["n"]))
		}
		_, isInt := args["n"].(value.Int)
		return numeric(fn(n), isInt), nil
	})
}

func numericBinary(module, name string, fn func(a, b float64) float64) *sig.Callable {
	s := &sig.Signature{
		Params: []sig.Parameter{
			{Name: "a", Type: value.TypeAny, Required: true},
			{Name: "b", Type: value.TypeAny, Required: true},
		},
		Returns: value.TypeAny,
	}
	return sig.New(module, name, s, func(ctx context.Context, args map[string]value.Value) (value.Value, error) {
		a, okA := asFloat(args["a"])
		b, okB := asFloat(args["b"])
		if !okA || !okB {
			return nil, fmt.Errorf("%s.%s: a and b must be numeric", module, name)
		}
		_, aInt := args["a"].(value.Int)
		_, bInt := args["b"].(value.Int)
		return numeric(fn(a, b), aInt && bInt), nil
	})
}

// sumCallable adds every numeric element of a list.
func sumCallable() *sig.Callable {
	s := &sig.Signature{
		Params:  []sig.Parameter{{Name: "values", Type: value.TypeList, Required: true}},
		Returns: value.TypeAny,
	}
	return sig.New("math", "sum", s, func(ctx context.Context, args map[string]value.Value) (value.Value, error) {
		list, ok := args["values"].(value.List)
		if !ok {
			return nil, fmt.Errorf("math.sum: values must be a list, got %s", value.KindOf(args["values"]))
		}
		total := 0.0
		allInt := true
		for i, elem := range list {
			n, ok := asFloat(elem)
			if !ok {
				return nil, fmt.Errorf("math.sum: values[%d] is %s, not numeric", i, value.KindOf(elem))
			}
			if _, isInt := elem.(value.Int); !isInt {
				allInt = false
			}
			total += n
		}
		return numeric(total, allInt), nil
	})
}

// getCallable looks one key up in a mapping.
func getCallable() *sig.Callable {
	s := &sig.Signature{
		Params: []sig.Parameter{
			{Name: "source", Type: value.TypeMap, Required: true},
			{Name: "key", Type: value.TypeString, Required: true},
		},
		Returns: value.TypeAny,
	}
	return sig.New("data", "get", s, func(ctx context.Context, args map[string]value.Value) (value.Value, error) {
		source, ok := args["source"].(value.Map)
		if !ok {
			return nil, fmt.Errorf("data.get: source must be a map, got %s", value.KindOf(args["source"]))
		}
		keyVal, ok := args["key"].(value.String)
		if !ok {
			return nil, fmt.Errorf("data.get: key must be a string, got %s", value.KindOf(args["key"]))
		}
		key := string(keyVal)
		v, ok := source[key]
		if !ok {
			return nil, fmt.Errorf("data.get: no key %q", key)
		}
		return v, nil
	})
}

// mergeCallable combines two mappings; right wins on key collisions.
func mergeCallable() *sig.Callable {
	s := &sig.Signature{
		Params: []sig.Parameter{
			{Name: "left", Type: value.TypeMap, Required: true},
			{Name: "right", Type: value.TypeMap, Required: true},
		},
		Returns: value.TypeMap,
	}
	return sig.New("data", "merge", s, func(ctx context.Context, args map[string]value.Value) (value.Value, error) {
		left, okL := args["left"].(value.Map)
		right, okR := args["right"].(value.Map)
		if !okL || !okR {
			return nil, fmt.Errorf("data.merge: left and right must be maps")
		}
		merged := make(value.Map, len(left)+len(right))
		for k, v := range left {
			merged[k] = v
		}
		for k, v := range right {
			merged[k] = v
		}
		return merged, nil
	})
}
