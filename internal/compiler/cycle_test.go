package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, src string) []Note {
	t.Helper()
	cat, err := CompileSource("test.cue", []byte(src))
	require.NoError(t, err)
	return AnalyzeRecursion(cat)
}

func TestAnalyzeRecursion_NoRecursion(t *testing.T) {
	notes := analyze(t, `types: {
		A: record: {b: "B"}
		B: list: "int"
	}`)
	assert.Empty(t, notes)
}

func TestAnalyzeRecursion_SelfLoop(t *testing.T) {
	notes := analyze(t, `types: Tree: record: {
		children: {list: "Tree"}
	}`)
	require.Len(t, notes, 1)
	assert.Equal(t, "info", notes[0].Level)
	assert.Equal(t, []string{"Tree", "Tree"}, notes[0].Path)
	assert.Equal(t, "recursive type: Tree → Tree", notes[0].Message)
}

func TestAnalyzeRecursion_Mutual(t *testing.T) {
	notes := analyze(t, `types: {
		Expr: union: ["int", "Call"]
		Call: record: {fn: "str", args: {list: "Expr"}}
	}`)
	require.Len(t, notes, 1)
	assert.Equal(t, "info", notes[0].Level)
	assert.Len(t, notes[0].Path, 3)
	assert.Equal(t, notes[0].Path[0], notes[0].Path[2], "the path closes the cycle")
	assert.ElementsMatch(t, []string{"Expr", "Call"}, notes[0].Path[:2])
}

func TestAnalyzeRecursion_Uninhabited(t *testing.T) {
	notes := analyze(t, `types: {
		Loop: record: {next: "Loop"}
		Fine: record: {next: {type: "Fine", optional: true}}
		Chain: tuple: ["int", "Loop"]
		Empty: enum: []
	}`)

	var warnings []string
	for _, n := range notes {
		if n.Level == "warning" {
			warnings = append(warnings, n.Path[0])
		}
	}
	assert.Equal(t, []string{"Loop", "Chain", "Empty"}, warnings)
}

func TestTarjanSCC_DeterministicOrder(t *testing.T) {
	graph := referenceGraph{
		"a": {"b"},
		"b": {"a"},
		"c": {},
	}
	sccs := tarjanSCC([]string{"c", "a", "b"}, graph)
	require.Len(t, sccs, 2)
	assert.Equal(t, []string{"c"}, sccs[0])
	assert.ElementsMatch(t, []string{"a", "b"}, sccs[1])
}
