package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"b": 1,
		"a": 2,
		"c": 3,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1,"c":3}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"cond": "a < b && c > d"})
	require.NoError(t, err)
	assert.Equal(t, `{"cond":"a < b && c > d"}`, string(got))
}

func TestMarshalCanonical_Scalars(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{true, "true"},
		{false, "false"},
		{int64(42), "42"},
		{3.5, "3.5"},
		{10.0, "10"},
		{"x", `"x"`},
		{[]any{1.0, "a", nil}, `[1,"a",null]`},
	}
	for _, tt := range tests {
		got, err := MarshalCanonical(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// "é" as 'e' + COMBINING ACUTE ACCENT normalizes to the precomposed form.
	decomposed := "é"
	precomposed := "é"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonical_RejectsNonFinite(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"x": nan()})
	assert.Error(t, err)
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}

func TestSchemaHash_StableAcrossEquivalentSchemas(t *testing.T) {
	a := validSchema()
	b := validSchema()

	ha, err := SchemaHash(a)
	require.NoError(t, err)
	hb, err := SchemaHash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	b.Pages[0].Elements[0].Label = "Unit Price"
	hc, err := SchemaHash(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func TestPayloadHash_DomainSeparated(t *testing.T) {
	payload := []byte(`{"id":"form-1"}`)
	h1 := PayloadHash(payload)
	h2 := PayloadHash([]byte(`{"id":"form-2"}`))

	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, h2)
	// Same input always hashes the same.
	assert.Equal(t, h1, PayloadHash(payload))
}
