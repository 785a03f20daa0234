package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAmbiguous_StringBeforeDate(t *testing.T) {
	p := NewAlternatives(AnyString, dateStr)

	amb, ok := IsAmbiguous(p, Always)
	require.True(t, ok, "str listed first swallows every date")
	assert.Equal(t, 0, amb.Index)
	assert.Equal(t, 1, amb.Other)
	assert.Equal(t, Always, amb.Strength)
	assert.Equal(t, "", amb.Path)
	assert.Same(t, AnyString, amb.Left)
}

func TestIsAmbiguous_DateBeforeString(t *testing.T) {
	p := NewAlternatives(dateStr, AnyString)

	_, ok := IsAmbiguous(p, Always)
	assert.False(t, ok, "a date only sometimes claims a string")

	amb, ok := IsAmbiguous(p, Sometimes)
	require.True(t, ok)
	assert.Equal(t, Sometimes, amb.Strength)
}

func TestIsAmbiguous_OptionalIsNotAmbiguous(t *testing.T) {
	p := NewAlternatives(Null, HomogArray(Number))

	_, ok := IsAmbiguous(p, Potential)
	assert.False(t, ok)
}

func TestIsAmbiguous_NestedPath(t *testing.T) {
	inner := NewAlternatives(HomogArray(Number), ExactArray(Number, Number))
	p := ExactObject(
		Field("name", AnyString),
		Field("items", HomogArray(inner)),
	)

	amb, ok := IsAmbiguous(p, Always)
	require.True(t, ok)
	assert.Equal(t, ".items[*]", amb.Path)
	assert.Equal(t, 0, amb.Index)
	assert.Equal(t, 1, amb.Other)
}

func TestIsAmbiguous_FirstOffendingPairWins(t *testing.T) {
	p := NewAlternatives(Number, AnyString, Exact("a"), dateStr)

	amb, ok := IsAmbiguous(p, Always)
	require.True(t, ok)
	assert.Equal(t, 1, amb.Index)
	assert.Equal(t, 2, amb.Other, "pairs are scanned (i, then j) in order")
}

func TestIsAmbiguous_Recursive(t *testing.T) {
	// Tree = int | list[Tree]; no branch shadows another.
	f := NewForward()
	tree := NewAlternatives(Number, HomogArray(f))
	f.Set(tree)

	_, ok := IsAmbiguous(tree, Potential)
	assert.False(t, ok)

	// Shadowed = list[Shadowed] | list[int]
	g := NewForward()
	shadowed := NewAlternatives(HomogArray(g), HomogArray(Number))
	g.Set(shadowed)

	amb, ok := IsAmbiguous(shadowed, Sometimes)
	require.True(t, ok, "both branches accept the empty array")
	assert.Equal(t, 0, amb.Index)
}

func TestIsAmbiguous_BranchPath(t *testing.T) {
	p := NewAlternatives(
		Number,
		ExactObject(Field("v", NewAlternatives(AnyString, Exact("x")))),
	)

	amb, ok := IsAmbiguous(p, Always)
	require.True(t, ok)
	assert.Equal(t, "|1.v", amb.Path)
	assert.Equal(t, "|1.v: branch 0 always shadows branch 1", amb.String())
}

func TestFindAmbiguities_ReportsEveryNode(t *testing.T) {
	p := ExactArray(
		NewAlternatives(AnyString, dateStr),
		NewAlternatives(Number, Null),
		NewAlternatives(HomogArray(Number), ExactArray()),
	)

	found := FindAmbiguities(p, Always)
	require.Len(t, found, 2)
	assert.Equal(t, "[0]", found[0].Path)
	assert.Equal(t, "[2]", found[1].Path)
}
