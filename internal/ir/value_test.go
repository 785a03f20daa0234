package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Float(1.5)
	var _ Value = Bool(true)
	var _ Value = Array{String("a"), Int(1)}
	var _ Value = Object{"key": String("value")}
}

func TestObjectSortedKeys(t *testing.T) {
	obj := Object{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestObjectSortedKeys_UTF16Order(t *testing.T) {
	// U+FF61 sorts before U+1F600 in UTF-8 but after it in UTF-16
	// (the emoji becomes a surrogate pair starting 0xD83D).
	obj := Object{
		"\U0001F600": Int(1),
		"\uFF61":     Int(2),
		"a":          Int(3),
	}

	assert.Equal(t, []string{"a", "\U0001F600", "\uFF61"}, obj.SortedKeys())
}

func TestNewObject_LaterPairWins(t *testing.T) {
	obj := NewObject(O("a", Int(1)), O("a", Int(2)))
	assert.Equal(t, Object{"a": Int(2)}, obj)
}

func TestUnmarshalValue_Kinds(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Value
	}{
		{"null", `null`, Null{}},
		{"string", `"hi"`, String("hi")},
		{"int", `42`, Int(42)},
		{"negative int", `-7`, Int(-7)},
		{"float", `1.5`, Float(1.5)},
		{"exponent", `1e3`, Float(1000)},
		{"bool", `true`, Bool(true)},
		{"array", `[1,"a",null]`, Array{Int(1), String("a"), Null{}}},
		{"object", `{"b":false,"a":[]}`, Object{"a": Array{}, "b": Bool(false)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalValue([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalValue_Rejects(t *testing.T) {
	_, err := UnmarshalValue([]byte(`{"a":`))
	assert.Error(t, err)

	_, err = UnmarshalValue([]byte(`1 2`))
	assert.Error(t, err)
}

func TestMarshalValue_KeepsFloatKind(t *testing.T) {
	out, err := MarshalValue(Float(2))
	require.NoError(t, err)
	assert.Equal(t, "2.0", string(out))

	back, err := UnmarshalValue(out)
	require.NoError(t, err)
	assert.Equal(t, Float(2), back)
}

func TestMarshalValue_RejectsNonFinite(t *testing.T) {
	_, err := MarshalValue(Float(math.NaN()))
	assert.Error(t, err)
	_, err = MarshalValue(Array{Float(math.Inf(1))})
	assert.Error(t, err)
}

func TestMarshalValue_ObjectSorted(t *testing.T) {
	out, err := MarshalValue(Object{"b": Int(1), "a": Null{}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":null,"b":1}`, string(out))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Int(1), Float(1)))
	assert.True(t, Equal(Float(math.NaN()), Float(math.NaN())))
	assert.True(t, Equal(Array{Int(1), Object{"a": Null{}}}, Array{Int(1), Object{"a": Null{}}}))
	assert.False(t, Equal(Array{Int(1)}, Array{Int(1), Int(2)}))
	assert.False(t, Equal(Object{"a": Int(1)}, Object{"b": Int(1)}))
	assert.False(t, Equal(String("1"), Int(1)))
	assert.False(t, Equal(Null{}, nil))
}

func TestFromAny_YAMLShapes(t *testing.T) {
	// yaml.v3 yields map[string]any and int; older decoders yield map[any]any.
	got, err := FromAny(map[string]any{
		"n":    3,
		"f":    0.25,
		"list": []any{"x", nil},
		"nested": map[any]any{
			"k": true,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, Object{
		"n":      Int(3),
		"f":      Float(0.25),
		"list":   Array{String("x"), Null{}},
		"nested": Object{"k": Bool(true)},
	}, got)

	_, err = FromAny(map[any]any{1: "x"})
	assert.Error(t, err)

	_, err = FromAny(struct{}{})
	assert.Error(t, err)
}

func TestToAny_RoundTrip(t *testing.T) {
	v := Object{"a": Array{Int(1), Float(0.5), String("s"), Bool(false), Null{}}}
	back, err := FromAny(ToAny(v))
	require.NoError(t, err)
	assert.True(t, Equal(v, back))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "number", KindOf(Int(1)))
	assert.Equal(t, "number", KindOf(Float(1)))
	assert.Equal(t, "object", KindOf(Object{}))
	assert.Equal(t, "nothing", KindOf(nil))
}
