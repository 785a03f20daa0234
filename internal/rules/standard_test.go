package rules

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shapes/internal/engine"
	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/typedesc"
)

type celsius struct{}

func (celsius) String() string { return "celsius" }

var celsiusRule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, e *engine.Engine) (ir.Action, error) {
	if desc != (celsius{}) {
		return nil, nil
	}
	return e.Lookup(verb, typedesc.Float)
})

func TestStandard_Extras(t *testing.T) {
	e := newEngine(WithExtras(celsiusRule))

	got, err := e.Decode(typedesc.List{Elem: celsius{}}, mustJSON(t, `[21.5]`))
	require.NoError(t, err)
	assert.Equal(t, []any{21.5}, got)
}

func TestStandard_Overrides(t *testing.T) {
	def := Standard()
	custom := Standard(WithFloats(FloatsNaNStr), WithDecimals(DecimalsAsStr), WithDates(ISODatesLoose))
	require.Len(t, custom, len(def))

	e := engine.New(custom)
	out, err := e.Encode(typedesc.Decimal, mustDecimal(t, "1.50"))
	require.NoError(t, err)
	assert.Equal(t, ir.String("1.50"), out)
}

func TestStandard_ForkSharesRules(t *testing.T) {
	e := newEngine()
	f := e.Fork()

	a, err := e.Decode(pointType, mustJSON(t, `{"x": 1, "y": 2}`))
	require.NoError(t, err)
	b, err := f.Decode(pointType, mustJSON(t, `{"x": 1, "y": 2}`))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestProfile_Options(t *testing.T) {
	opts, err := Profile{Floats: "nan_str", Dates: "loose"}.Options()
	require.NoError(t, err)

	e := newEngine(opts...)
	out, err := e.Encode(typedesc.Float, math.Inf(-1))
	require.NoError(t, err)
	assert.Equal(t, ir.String("-Infinity"), out)

	_, err = Profile{Decimals: "binary"}.Options()
	assert.ErrorContains(t, err, `unknown decimals rule "binary"`)
}
