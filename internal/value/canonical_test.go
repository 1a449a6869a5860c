package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	m := Map{"zeta": Int(1), "alpha": Int(2), "mid": Int(3)}

	got, err := MarshalCanonical(m)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":3,"zeta":1}`, string(got))
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	v := Map{
		"price": Float(999.99),
		"tags":  List{String("a"), String("b")},
		"ok":    Bool(true),
		"n":     Null{},
	}

	first, err := MarshalCanonical(v)
	require.NoError(t, err)

	// Same value must always produce identical bytes
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(v)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestMarshalCanonical_Record(t *testing.T) {
	rec := MustRecord("Order", F("price", Float(999.99)), F("customer", String("Alice")))

	got, err := MarshalCanonical(rec)
	require.NoError(t, err)
	// Record fields keep declaration order; $type comes first
	assert.Equal(t, `{"$type":"Order","price":999.99,"customer":"Alice"}`, string(got))
}

func TestMarshalCanonical_FloatForm(t *testing.T) {
	testCases := []struct {
		v    Float
		want string
	}{
		{Float(0.08), "0.08"},
		{Float(3.14), "3.14"},
		{Float(1000), "1000"},
	}

	for _, tc := range testCases {
		got, err := MarshalCanonical(tc.v)
		require.NoError(t, err)
		assert.Equal(t, tc.want, string(got))
	}
}
