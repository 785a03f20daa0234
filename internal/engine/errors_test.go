package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shapes/internal/ir"
)

func TestPathError_Accumulates(t *testing.T) {
	base := errors.New("expected string")

	err := AtField(AtIndex(AtField(base, "name"), 3), "items")

	assert.Equal(t, "expected string; at .items[3].name", err.Error())
	assert.ErrorIs(t, err, base)

	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ".items[3].name", pe.Path())
}

func TestPathError_MapKey(t *testing.T) {
	err := AtKey(errors.New("bad"), `a"b`)
	assert.Equal(t, `bad; at ["a\"b"]`, err.Error())
}

func TestAtPath_Nil(t *testing.T) {
	assert.NoError(t, AtPath(nil, ".x"))
}

func TestAtPath_WrappedPathErrorStartsFresh(t *testing.T) {
	inner := AtField(errors.New("bad"), "x")
	wrapped := fmt.Errorf("context: %w", inner)

	err := AtField(wrapped, "y")
	assert.Equal(t, "context: bad; at .x; at .y", err.Error())
}

func TestMismatch(t *testing.T) {
	assert.Equal(t, "expected boolean, got number", Mismatch("boolean", ir.Float(1)).Error())
	assert.Equal(t, "expected string, got nil", Mismatch("string", nil).Error())
	assert.Equal(t, "expected string, got int", Mismatch("string", 3).Error())
}

func TestLookupError_Helpers(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", newUnresolvedError(ir.Encode, prim("x")))
	assert.True(t, IsUnresolved(err))
	assert.False(t, IsMissingType(err))
	assert.False(t, IsCycleError(err))

	missing := newMissingTypeError(ir.Decode)
	assert.Equal(t, "MISSING_TYPE: no type given: lookup(decode)", missing.Error())
}

// =============================================================================
// CycleDetector Unit Tests
// =============================================================================

func TestCycleDetector_WouldCycle_AfterRecord(t *testing.T) {
	cd := NewCycleDetector()
	assert.False(t, cd.WouldCycle(ir.Decode, prim("int")))

	assert.Equal(t, 1, cd.Record(ir.Decode, prim("int")))
	assert.True(t, cd.WouldCycle(ir.Decode, prim("int")))
	assert.False(t, cd.WouldCycle(ir.Encode, prim("int")), "verbs are tracked separately")

	cd.Clear(ir.Decode, prim("int"))
	assert.False(t, cd.WouldCycle(ir.Decode, prim("int")))
	assert.Equal(t, 0, cd.Depth())
}

func TestCycleDetector_Unhashable(t *testing.T) {
	cd := NewCycleDetector()
	desc := unhashable{parts: []string{"a"}}

	cd.Record(ir.Decode, desc)
	assert.True(t, cd.WouldCycle(ir.Decode, unhashable{parts: []string{"b"}}),
		"unhashable descriptors are identified by their printed form")
}
