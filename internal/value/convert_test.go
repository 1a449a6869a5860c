package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromJSON(t *testing.T) {
	testCases := []struct {
		name string
		json string
		want Value
	}{
		{"integer stays int", `42`, Int(42)},
		{"fraction becomes float", `999.99`, Float(999.99)},
		{"exponent becomes float", `1e3`, Float(1000)},
		{"string", `"hello"`, String("hello")},
		{"bool", `true`, Bool(true)},
		{"null", `null`, Null{}},
		{"array", `[10, 20, 5]`, List{Int(10), Int(20), Int(5)}},
		{
			"object",
			`{"price": 999.99, "customer": "Alice"}`,
			Map{"price": Float(999.99), "customer": String("Alice")},
		},
		{
			"nested",
			`{"items": [{"qty": 2}]}`,
			Map{"items": List{Map{"qty": Int(2)}}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromJSON([]byte(tc.json))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := FromJSON([]byte(`{"unterminated`))
	assert.Error(t, err)
}

func TestFromGo_Scalars(t *testing.T) {
	testCases := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"int", 42, Int(42)},
		{"int64", int64(7), Int(7)},
		{"uint32", uint32(9), Int(9)},
		{"float64", 3.14, Float(3.14)},
		{"float32", float32(0.5), Float(0.5)},
		{"string", "hi", String("hi")},
		{"bool", true, Bool(true)},
		{"already a Value", Int(1), Int(1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromGo(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromGo_Struct(t *testing.T) {
	type Order struct {
		Price    float64 `json:"price"`
		Customer string  `json:"customer"`
		internal int     // unexported - skipped
	}
	_ = Order{internal: 1}.internal

	got, err := FromGo(Order{Price: 999.99, Customer: "Alice"})
	require.NoError(t, err)

	rec, ok := got.(Record)
	require.True(t, ok, "struct should convert to Record")
	assert.Equal(t, "Order", rec.TypeName)
	require.Len(t, rec.Fields, 2)
	assert.Equal(t, Field{Name: "price", Value: Float(999.99)}, rec.Fields[0])
	assert.Equal(t, Field{Name: "customer", Value: String("Alice")}, rec.Fields[1])
}

func TestFromGo_NilPointer(t *testing.T) {
	type Order struct{ Price float64 }
	var p *Order

	got, err := FromGo(p)
	require.NoError(t, err)
	assert.Equal(t, Null{}, got)
}

func TestFromGo_Unsupported(t *testing.T) {
	_, err := FromGo(make(chan int))
	assert.Error(t, err)
}
