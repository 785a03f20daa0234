package rules

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/shapes/internal/engine"
	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/typedesc"
)

func newEngine(opts ...Option) *engine.Engine {
	return NewEngine([]engine.Option{engine.WithLogger(slog.New(slog.DiscardHandler))}, opts...)
}

// roundTrip decodes in, re-encodes the result and checks it comes back
// unchanged.
func roundTrip(t *testing.T, e *engine.Engine, desc ir.Descriptor, in ir.Value) any {
	t.Helper()
	decoded, err := e.Decode(desc, in)
	require.NoError(t, err)
	out, err := e.Encode(desc, decoded)
	require.NoError(t, err)
	require.True(t, ir.Equal(in, out), "round trip of %s: got %s", desc, ir.MustMarshalCanonical(out))
	return decoded
}

func mustJSON(t *testing.T, s string) ir.Value {
	t.Helper()
	v, err := ir.UnmarshalValue([]byte(s))
	require.NoError(t, err)
	return v
}

// treeType is Tree = record{label: str, children: list[Tree] = []}.
func treeType() *typedesc.Named {
	tree := typedesc.NewNamed("Tree")
	tree.Bind(&typedesc.Record{Name: "Tree", Fields: []typedesc.Field{
		{Name: "label", Type: typedesc.String},
		{Name: "children", Type: typedesc.List{Elem: tree}, Default: ir.Array{}},
	}})
	return tree
}

var pointType = &typedesc.Record{Name: "Point", Fields: []typedesc.Field{
	{Name: "x", Type: typedesc.Int},
	{Name: "y", Type: typedesc.Int},
}}
