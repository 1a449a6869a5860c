package sig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitomatic/orchestra/internal/value"
)

func TestSignature_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		sig     Signature
		wantErr string
	}{
		{
			name: "valid",
			sig: Signature{Params: []Parameter{
				{Name: "price", Type: value.TypeFloat, Required: true},
				{Name: "tax_rate", Type: value.TypeFloat, Default: value.Float(0.08)},
			}},
		},
		{
			name: "duplicate names",
			sig: Signature{Params: []Parameter{
				{Name: "x", Required: true},
				{Name: "x", Required: true},
			}},
			wantErr: `duplicate parameter "x"`,
		},
		{
			name:    "empty name",
			sig:     Signature{Params: []Parameter{{Name: "", Required: true}}},
			wantErr: "empty name",
		},
		{
			name: "required with default",
			sig: Signature{Params: []Parameter{
				{Name: "x", Default: value.Int(1), Required: true},
			}},
			wantErr: "required but has a default",
		},
		{
			name:    "optional without default",
			sig:     Signature{Params: []Parameter{{Name: "x", Required: false}}},
			wantErr: "optional but has no default",
		},
		{
			name:    "bad type tag",
			sig:     Signature{Params: []Parameter{{Name: "x", Type: "not-a-type", Required: true}}},
			wantErr: "invalid type tag",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sig.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestCallable_Identity(t *testing.T) {
	c := New("orders", "calculate_tax", &Signature{}, nil)
	assert.Equal(t, "orders.calculate_tax", c.Identity())

	bare := New("", "calculate_tax", &Signature{}, nil)
	assert.Equal(t, "calculate_tax", bare.Identity())
}

func TestCallable_WithDefault(t *testing.T) {
	c := New("orders", "process_payment", &Signature{Params: []Parameter{
		{Name: "amount", Type: value.TypeFloat, Required: true},
		{Name: "tax_rate", Type: value.TypeFloat, Required: true},
	}}, nil)

	c = c.WithDefault("tax_rate", value.Float(0.08))

	p, ok := c.Sig.Param("tax_rate")
	require.True(t, ok)
	assert.False(t, p.Required)
	assert.Equal(t, value.Float(0.08), p.Default)

	// The other parameter is untouched
	amount, _ := c.Sig.Param("amount")
	assert.True(t, amount.Required)
}

func TestCallable_WithDefault_UnknownParam(t *testing.T) {
	c := New("orders", "f", &Signature{Params: []Parameter{{Name: "x", Required: true}}}, nil)
	assert.Panics(t, func() { c.WithDefault("nope", value.Int(1)) })
}

func TestCallable_CallPositional_ViaFirstParam(t *testing.T) {
	var gotArgs map[string]value.Value
	c := New("m", "f", &Signature{Params: []Parameter{{Name: "x", Required: true}}},
		func(ctx context.Context, args map[string]value.Value) (value.Value, error) {
			gotArgs = args
			return value.Int(1), nil
		})

	out, err := c.CallPositional(context.Background(), value.String("in"))
	require.NoError(t, err)
	assert.Equal(t, value.Int(1), out)
	assert.Equal(t, map[string]value.Value{"x": value.String("in")}, gotArgs)
}

func TestCallable_CallPositional_Opaque(t *testing.T) {
	c := NewOpaque("m", "raw", func(ctx context.Context, arg value.Value) (value.Value, error) {
		return arg, nil
	})

	out, err := c.CallPositional(context.Background(), value.Int(7))
	require.NoError(t, err)
	assert.Equal(t, value.Int(7), out)
}
