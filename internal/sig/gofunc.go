package sig

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aitomatic/orchestra/internal/value"
)

var (
	ctxType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType   = reflect.TypeOf((*error)(nil)).Elem()
	valueType = reflect.TypeOf((*value.Value)(nil)).Elem()
	anyType   = reflect.TypeOf((*any)(nil)).Elem()
)

// FromGoFunc adapts a plain Go function into a Callable with a reflected
// signature.
//
// Go reflection exposes parameter types but not parameter names, so names
// are supplied at registration and paired positionally with the function's
// inputs. An optional leading context.Context is recognized and excluded
// from the declared parameters; the function may return T or (T, error).
//
// Reflected parameters are always required - Go has no parameter defaults.
// Use WithDefault on the result to install one.
//
// Returns *AnalysisError when the function cannot be given a targetable
// signature: not a func, variadic, or a name-count mismatch. Callers that
// want the degraded positional path for such functions should register
// them with NewOpaque instead.
func FromGoFunc(module, name string, fn any, paramNames ...string) (*Callable, error) {
	rv := reflect.ValueOf(fn)
	rt := rv.Type()
	identity := module + "." + name

	if rt.Kind() != reflect.Func {
		return nil, &AnalysisError{Function: identity, Reason: fmt.Sprintf("not a function: %T", fn)}
	}
	if rt.IsVariadic() {
		return nil, &AnalysisError{Function: identity, Reason: "variadic functions have no fixed parameters to target"}
	}

	// Recognize an optional leading context.Context
	in := 0
	hasCtx := rt.NumIn() > 0 && rt.In(0) == ctxType
	if hasCtx {
		in = 1
	}

	nParams := rt.NumIn() - in
	if nParams != len(paramNames) {
		return nil, &AnalysisError{
			Function: identity,
			Reason:   fmt.Sprintf("%d parameter names supplied for %d parameters", len(paramNames), nParams),
		}
	}

	// Validate outputs: T, (T, error), or error
	switch rt.NumOut() {
	case 1, 2:
		if rt.NumOut() == 2 && !rt.Out(1).Implements(errType) {
			return nil, &AnalysisError{Function: identity, Reason: "second return value must be error"}
		}
	default:
		return nil, &AnalysisError{Function: identity, Reason: fmt.Sprintf("unsupported return count %d", rt.NumOut())}
	}

	params := make([]Parameter, nParams)
	for i := 0; i < nParams; i++ {
		params[i] = Parameter{
			Name:     paramNames[i],
			Type:     typeTagFor(rt.In(in + i)),
			Required: true,
		}
	}

	s := &Signature{Params: params, Returns: returnTagFor(rt)}
	if err := s.Validate(); err != nil {
		return nil, &AnalysisError{Function: identity, Reason: err.Error()}
	}

	c := &Callable{Name: name, Module: module, Sig: s}
	c.Fn = func(ctx context.Context, args map[string]value.Value) (value.Value, error) {
		callArgs := make([]reflect.Value, 0, rt.NumIn())
		if hasCtx {
			callArgs = append(callArgs, reflect.ValueOf(ctx))
		}
		for i := 0; i < nParams; i++ {
			av, ok := args[paramNames[i]]
			if !ok {
				return nil, fmt.Errorf("%s: argument %q not bound", c.Identity(), paramNames[i])
			}
			rarg, err := toReflectValue(av, rt.In(in+i))
			if err != nil {
				return nil, fmt.Errorf("%s: argument %q: %w", c.Identity(), paramNames[i], err)
			}
			callArgs = append(callArgs, rarg)
		}
		return fromReflectResults(rv.Call(callArgs))
	}
	return c, nil
}

// typeTagFor maps a Go parameter type to a declared type tag.
func typeTagFor(t reflect.Type) value.Type {
	if t == valueType || t == anyType {
		return value.TypeAny
	}
	switch t.Kind() {
	case reflect.String:
		return value.TypeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.TypeInt
	case reflect.Float32, reflect.Float64:
		return value.TypeFloat
	case reflect.Bool:
		return value.TypeBool
	case reflect.Slice, reflect.Array:
		return value.TypeList
	case reflect.Map:
		return value.TypeMap
	case reflect.Struct:
		return value.Type(t.Name())
	default:
		return value.TypeAny
	}
}

// returnTagFor maps the first non-error return type to a declared tag.
func returnTagFor(rt reflect.Type) value.Type {
	if rt.NumOut() == 0 || rt.Out(0).Implements(errType) {
		return value.TypeAny
	}
	return typeTagFor(rt.Out(0))
}

// toReflectValue converts a Value into the Go representation a reflected
// parameter expects. The supported target set mirrors typeTagFor.
func toReflectValue(v value.Value, t reflect.Type) (reflect.Value, error) {
	if t == valueType {
		return reflect.ValueOf(v), nil
	}
	if t == anyType {
		return reflect.ValueOf(toGoAny(v)), nil
	}

	switch t.Kind() {
	case reflect.String:
		s, ok := v.(value.String)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected string, got %s", value.KindOf(v))
		}
		return reflect.ValueOf(string(s)).Convert(t), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := v.(value.Int)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected int, got %s", value.KindOf(v))
		}
		return reflect.ValueOf(int64(n)).Convert(t), nil

	case reflect.Float32, reflect.Float64:
		f, ok := v.(value.Float)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected float, got %s", value.KindOf(v))
		}
		return reflect.ValueOf(float64(f)).Convert(t), nil

	case reflect.Bool:
		b, ok := v.(value.Bool)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected bool, got %s", value.KindOf(v))
		}
		return reflect.ValueOf(bool(b)).Convert(t), nil

	case reflect.Slice:
		list, ok := v.(value.List)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected list, got %s", value.KindOf(v))
		}
		out := reflect.MakeSlice(t, len(list), len(list))
		for i, elem := range list {
			ev, err := toReflectValue(elem, t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out, nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return reflect.Value{}, fmt.Errorf("unsupported map key type %s", t.Key())
		}
		m, ok := v.(value.Map)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected map, got %s", value.KindOf(v))
		}
		out := reflect.MakeMapWithSize(t, len(m))
		for k, elem := range m {
			ev, err := toReflectValue(elem, t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("[%q]: %w", k, err)
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), ev)
		}
		return out, nil

	default:
		return reflect.Value{}, fmt.Errorf("unsupported parameter type %s", t)
	}
}

// toGoAny converts a Value to the plain Go form for an `any` parameter.
func toGoAny(v value.Value) any {
	switch val := v.(type) {
	case nil, value.Null:
		return nil
	case value.String:
		return string(val)
	case value.Int:
		return int64(val)
	case value.Float:
		return float64(val)
	case value.Bool:
		return bool(val)
	case value.List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = toGoAny(elem)
		}
		return out
	case value.Map:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = toGoAny(elem)
		}
		return out
	case value.Record:
		out := make(map[string]any, len(val.Fields))
		for _, f := range val.Fields {
			out[f.Name] = toGoAny(f.Value)
		}
		return out
	default:
		return nil
	}
}

// fromReflectResults converts a reflected call's results to (Value, error).
func fromReflectResults(results []reflect.Value) (value.Value, error) {
	switch len(results) {
	case 1:
		if results[0].Type().Implements(errType) {
			if err, _ := results[0].Interface().(error); err != nil {
				return nil, err
			}
			return value.Null{}, nil
		}
		return value.FromGo(results[0].Interface())
	case 2:
		if err, _ := results[1].Interface().(error); err != nil {
			return nil, err
		}
		return value.FromGo(results[0].Interface())
	default:
		return nil, fmt.Errorf("unexpected result count %d", len(results))
	}
}
