package sig

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitomatic/orchestra/internal/value"
)

func TestFromGoFunc_ReflectsSignature(t *testing.T) {
	fn := func(width, height, depth int) int { return width * height * depth }

	c, err := FromGoFunc("geometry", "calculate_volume", fn, "width", "height", "depth")
	require.NoError(t, err)

	require.Len(t, c.Sig.Params, 3)
	assert.Equal(t, Parameter{Name: "width", Type: value.TypeInt, Required: true}, c.Sig.Params[0])
	assert.Equal(t, value.TypeInt, c.Sig.Returns)
}

func TestFromGoFunc_Invoke(t *testing.T) {
	fn := func(width, height, depth int) int { return width * height * depth }
	c, err := FromGoFunc("geometry", "calculate_volume", fn, "width", "height", "depth")
	require.NoError(t, err)

	out, err := c.Fn(context.Background(), map[string]value.Value{
		"width":  value.Int(10),
		"height": value.Int(20),
		"depth":  value.Int(5),
	})
	require.NoError(t, err)
	assert.Equal(t, value.Int(1000), out)
}

func TestFromGoFunc_ContextAndError(t *testing.T) {
	fn := func(ctx context.Context, endpoint string, timeout int) (string, error) {
		if endpoint == "" {
			return "", errors.New("empty endpoint")
		}
		return endpoint, nil
	}

	c, err := FromGoFunc("net", "api_call", fn, "endpoint", "timeout")
	require.NoError(t, err)
	require.Len(t, c.Sig.Params, 2, "context parameter is not part of the signature")

	out, err := c.Fn(context.Background(), map[string]value.Value{
		"endpoint": value.String("/orders"),
		"timeout":  value.Int(5),
	})
	require.NoError(t, err)
	assert.Equal(t, value.String("/orders"), out)

	// The target's own error propagates unchanged
	_, err = c.Fn(context.Background(), map[string]value.Value{
		"endpoint": value.String(""),
		"timeout":  value.Int(5),
	})
	assert.EqualError(t, err, "empty endpoint")
}

func TestFromGoFunc_MixedTypes(t *testing.T) {
	fn := func(count int, message string, flag bool, rate float64) string {
		if flag {
			return message
		}
		return ""
	}

	c, err := FromGoFunc("demo", "process_data", fn, "count", "message", "flag", "rate")
	require.NoError(t, err)

	want := []value.Type{value.TypeInt, value.TypeString, value.TypeBool, value.TypeFloat}
	for i, p := range c.Sig.Params {
		assert.Equal(t, want[i], p.Type, "param %s", p.Name)
	}
}

func TestFromGoFunc_Variadic(t *testing.T) {
	_, err := FromGoFunc("m", "join", func(parts ...string) string { return "" }, "parts")
	require.Error(t, err)
	assert.True(t, IsAnalysisError(err))
	assert.Contains(t, err.Error(), "variadic")
}

func TestFromGoFunc_NameCountMismatch(t *testing.T) {
	_, err := FromGoFunc("m", "add", func(a, b int) int { return a + b }, "a")
	require.Error(t, err)
	assert.True(t, IsAnalysisError(err))
}

func TestFromGoFunc_NotAFunction(t *testing.T) {
	_, err := FromGoFunc("m", "oops", 42)
	require.Error(t, err)
	assert.True(t, IsAnalysisError(err))
}

func TestFromGoFunc_TypeMismatchAtInvoke(t *testing.T) {
	c, err := FromGoFunc("m", "add", func(a, b int) int { return a + b }, "a", "b")
	require.NoError(t, err)

	_, err = c.Fn(context.Background(), map[string]value.Value{
		"a": value.String("not an int"),
		"b": value.Int(2),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `argument "a"`)
}

func TestFromGoFunc_CollectionParams(t *testing.T) {
	fn := func(names []string, scores map[string]int) int {
		return len(names) + len(scores)
	}
	c, err := FromGoFunc("m", "tally", fn, "names", "scores")
	require.NoError(t, err)

	assert.Equal(t, value.TypeList, c.Sig.Params[0].Type)
	assert.Equal(t, value.TypeMap, c.Sig.Params[1].Type)

	out, err := c.Fn(context.Background(), map[string]value.Value{
		"names":  value.List{value.String("a"), value.String("b")},
		"scores": value.Map{"a": value.Int(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), out)
}
