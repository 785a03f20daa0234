package cache

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
)

type named string

func (n named) String() string { return string(n) }

// sliced is not comparable and cannot key a map.
type sliced struct{ parts []string }

func (s sliced) String() string { return "sliced" }

func identity(v any) (any, error) { return v, nil }

// ============================================================================
// Forward Unit Tests
// ============================================================================

func TestForward_ConvertBeforeFulfil(t *testing.T) {
	fwd := NewForward(ir.Decode, named("T"))

	conv, ok := fwd.Placeholder().(ir.Converter)
	require.True(t, ok)

	_, err := conv(1)
	require.Error(t, err)
	assert.True(t, IsUnfulfilled(err))
	assert.Contains(t, err.Error(), "decode(T)")
	assert.False(t, fwd.Fulfilled())
}

func TestForward_ConvertAfterFulfil(t *testing.T) {
	fwd := NewForward(ir.Encode, named("T"))
	conv := fwd.Placeholder().(ir.Converter)

	fwd.Fulfill(ir.Converter(func(v any) (any, error) { return v.(int) * 2, nil }))

	out, err := conv(21)
	require.NoError(t, err)
	assert.Equal(t, 42, out)
	assert.True(t, fwd.Fulfilled())
}

func TestForward_InspectPanicsBeforeFulfil(t *testing.T) {
	fwd := NewForward(ir.InspectDecoded, named("T"))
	insp := fwd.Placeholder().(ir.Inspector)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, IsUnfulfilled(err))
	}()
	insp(1)
}

func TestForward_InspectAfterFulfil(t *testing.T) {
	fwd := NewForward(ir.InspectEncoded, named("T"))
	insp := fwd.Placeholder().(ir.Inspector)
	fwd.Fulfill(ir.Inspector(func(v any) bool { return v == "ok" }))

	assert.True(t, insp("ok"))
	assert.False(t, insp("no"))
}

func TestForward_PatternBackfill(t *testing.T) {
	fwd := NewForward(ir.DescribePattern, named("T"))
	p, ok := fwd.Placeholder().(*pattern.Forward)
	require.True(t, ok)
	assert.Equal(t, pattern.Unknown, pattern.Resolve(p))

	fwd.Fulfill(pattern.Number)
	assert.Equal(t, pattern.Number, pattern.Resolve(p))
}

// ============================================================================
// Simple Cache Unit Tests
// ============================================================================

func TestSimple_Lifecycle(t *testing.T) {
	c := NewSimple()
	desc := named("list[T]")

	assert.Nil(t, c.Get(ir.Decode, desc), "absent")

	fwd := c.InFlight(ir.Decode, desc)
	got := c.Get(ir.Decode, desc)
	require.NotNil(t, got, "in flight returns the placeholder")
	placeholder := got.(ir.Converter)

	c.Complete(ir.Decode, desc, ir.Converter(identity))
	assert.True(t, fwd.Fulfilled(), "Complete fulfils the forward in place")

	out, err := placeholder("x")
	require.NoError(t, err)
	assert.Equal(t, "x", out)

	resolved := c.Get(ir.Decode, desc)
	_, isConv := resolved.(ir.Converter)
	assert.True(t, isConv)
	assert.Equal(t, 1, c.Len())
}

func TestSimple_KeysByVerb(t *testing.T) {
	c := NewSimple()
	desc := named("int")
	c.Complete(ir.Decode, desc, ir.Converter(identity))

	assert.NotNil(t, c.Get(ir.Decode, desc))
	assert.Nil(t, c.Get(ir.Encode, desc))
}

func TestSimple_ReleaseOnlySameForward(t *testing.T) {
	c := NewSimple()
	desc := named("T")

	fwd := c.InFlight(ir.Decode, desc)
	other := NewForward(ir.Decode, desc)

	c.Release(ir.Decode, desc, other)
	assert.NotNil(t, c.Get(ir.Decode, desc), "foreign forward must not release the entry")

	c.Release(ir.Decode, desc, fwd)
	assert.Nil(t, c.Get(ir.Decode, desc))
	assert.Equal(t, 0, c.Len())
}

func TestSimple_ReleaseKeepsResolved(t *testing.T) {
	c := NewSimple()
	desc := named("T")

	fwd := c.InFlight(ir.Decode, desc)
	c.Complete(ir.Decode, desc, ir.Converter(identity))
	c.Release(ir.Decode, desc, fwd)

	assert.NotNil(t, c.Get(ir.Decode, desc))
}

func TestSimple_UnhashableWarnsAndSkips(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	c := NewSimple(WithLogger(logger))
	desc := sliced{parts: []string{"a"}}

	assert.Nil(t, c.Get(ir.Decode, desc))
	fwd := c.InFlight(ir.Decode, desc)
	require.NotNil(t, fwd)
	c.Complete(ir.Decode, desc, ir.Converter(identity))

	assert.Nil(t, c.Get(ir.Decode, desc), "never cached")
	assert.Equal(t, 0, c.Len())
	assert.Contains(t, buf.String(), "not comparable")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestSimple_UnhashableSilenced(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	c := NewSimple(WithLogger(logger), WithWarnUnhashable(false))

	c.Get(ir.Decode, sliced{})
	assert.Empty(t, buf.String())
}

// ============================================================================
// Nop Cache Unit Tests
// ============================================================================

func TestNop_StoresNothing(t *testing.T) {
	var c Cache = NewNop()
	desc := named("int")

	fwd := c.InFlight(ir.Decode, desc)
	require.NotNil(t, fwd)
	c.Complete(ir.Decode, desc, ir.Converter(identity))
	assert.Nil(t, c.Get(ir.Decode, desc))
}
