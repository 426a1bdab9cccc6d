package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"integral float", Float(3), "3"},
		{"fraction", Float(0.5), "0.5"},
		{"null", Null{}, "null"},
		{"bool true", Bool(true), "true"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"array of ints", Array{Int(1), Int(2), Int(3)}, "[1,2,3]"},
		{"simple object", Object{"a": Int(1)}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNestedSortedKeys(t *testing.T) {
	obj := Object{
		"z": Object{"b": Int(1), "a": Int(2)},
		"a": Int(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(String("<a&b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(result))
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	// "e" followed by a combining acute accent normalizes to the precomposed form.
	decomposed := "e" + string(rune(0x0301))
	precomposed := string(rune(0x00e9))

	a, err := MarshalCanonical(String(decomposed))
	require.NoError(t, err)
	b, err := MarshalCanonical(String(precomposed))
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonicalLineSeparatorsNotEscaped(t *testing.T) {
	ls := string(rune(0x2028))
	ps := string(rune(0x2029))

	result, err := MarshalCanonical(String("a" + ls + "b" + ps))
	require.NoError(t, err)
	assert.Equal(t, `"a`+ls+"b"+ps+`"`, string(result))
}

func TestMarshalCanonicalRejectsNonFinite(t *testing.T) {
	var zero float64
	_, err := MarshalCanonical(Float(1 / zero))
	require.Error(t, err)
}

func TestMarshalCanonicalIdempotency(t *testing.T) {
	v := Array{String("ffi"), String("qte_continue"), Array{Object{"identifier": String("qte_name")}}}

	first, err := MarshalCanonical(v)
	require.NoError(t, err)

	decoded, err := DecodeValue(first)
	require.NoError(t, err)
	second, err := MarshalCanonical(decoded)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}
