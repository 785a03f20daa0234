package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/shapes/internal/engine"
	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
	"github.com/roach88/shapes/internal/typedesc"
)

// Atoms handles null, bool, int and str.
var Atoms engine.Rule = engine.RuleFunc(atoms)

func atoms(verb ir.Verb, desc ir.Descriptor, _ *engine.Engine) (ir.Action, error) {
	p, ok := desc.(typedesc.Primitive)
	if !ok {
		return nil, nil
	}
	switch p {
	case typedesc.Null:
		return nullLeaf.action(verb), nil
	case typedesc.Bool:
		return boolLeaf.action(verb), nil
	case typedesc.Int:
		return intLeaf.action(verb), nil
	case typedesc.String:
		return strLeaf.action(verb), nil
	}
	return nil, nil
}

var nullLeaf = leaf{
	decode: func(v any) (any, error) {
		if _, ok := v.(ir.Null); !ok {
			return nil, engine.Mismatch("null", v)
		}
		return nil, nil
	},
	encode: func(v any) (any, error) {
		if v != nil {
			return nil, engine.Mismatch("nil", v)
		}
		return ir.Null{}, nil
	},
	isDecoded: func(v any) bool { return v == nil },
	isEncoded: func(v any) bool { _, ok := v.(ir.Null); return ok },
	pattern:   pattern.Null,
}

var boolLeaf = leaf{
	decode: func(v any) (any, error) {
		b, ok := v.(ir.Bool)
		if !ok {
			return nil, engine.Mismatch("boolean", v)
		}
		return bool(b), nil
	},
	encode: func(v any) (any, error) {
		b, ok := v.(bool)
		if !ok {
			return nil, engine.Mismatch("bool", v)
		}
		return ir.Bool(b), nil
	},
	isDecoded: func(v any) bool { _, ok := v.(bool); return ok },
	isEncoded: func(v any) bool { _, ok := v.(ir.Bool); return ok },
	pattern:   pattern.Bool,
}

// Integers decode strictly: 1.0 is a float, not an int.
var intLeaf = leaf{
	decode: func(v any) (any, error) {
		n, ok := v.(ir.Int)
		if !ok {
			return nil, engine.Mismatch("integer", v)
		}
		return int64(n), nil
	},
	encode: func(v any) (any, error) {
		n, ok := toInt64(v)
		if !ok {
			return nil, engine.Mismatch("integer", v)
		}
		return ir.Int(n), nil
	},
	isDecoded: func(v any) bool { _, ok := toInt64(v); return ok },
	isEncoded: func(v any) bool { _, ok := v.(ir.Int); return ok },
	pattern:   pattern.Number,
}

var strLeaf = leaf{
	decode: func(v any) (any, error) {
		s, ok := v.(ir.String)
		if !ok {
			return nil, engine.Mismatch("string", v)
		}
		return string(s), nil
	},
	encode: func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, engine.Mismatch("string", v)
		}
		return ir.String(s), nil
	},
	isDecoded: func(v any) bool { _, ok := v.(string); return ok },
	isEncoded: func(v any) bool { _, ok := v.(ir.String); return ok },
	pattern:   pattern.AnyString,
}

// ============================================================================
// Floats
// ============================================================================

// Floats handles float as a JSON number. Integers decode as floats.
// Non-finite values cannot be encoded.
var Floats engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, _ *engine.Engine) (ir.Action, error) {
	if desc != typedesc.Float {
		return nil, nil
	}
	return floatLeaf.action(verb), nil
})

// FloatsNaNStr handles float like Floats but carries NaN and the
// infinities as the strings "NaN", "Infinity" and "-Infinity".
var FloatsNaNStr engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, _ *engine.Engine) (ir.Action, error) {
	if desc != typedesc.Float {
		return nil, nil
	}
	return floatNaNStrLeaf.action(verb), nil
})

func numberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case ir.Int:
		return float64(n), true
	case ir.Float:
		return float64(n), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	}
	return 0, false
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

var floatLeaf = leaf{
	decode: func(v any) (any, error) {
		f, ok := numberOf(v)
		if !ok {
			return nil, engine.Mismatch("number", v)
		}
		return f, nil
	},
	encode: func(v any) (any, error) {
		f, ok := toFloat64(v)
		if !ok {
			return nil, engine.Mismatch("float64", v)
		}
		if !isFinite(f) {
			return nil, fmt.Errorf("cannot encode %v as a number", f)
		}
		return ir.Float(f), nil
	},
	isDecoded: func(v any) bool { _, ok := v.(float64); return ok },
	isEncoded: func(v any) bool { f, ok := numberOf(v); return ok && isFinite(f) },
	pattern:   pattern.Number,
}

// parseSpecialFloat reads the spellings of NaN and the infinities,
// ignoring case.
func parseSpecialFloat(s string) (float64, bool) {
	switch strings.ToLower(s) {
	case "nan":
		return math.NaN(), true
	case "inf", "+inf", "infinity", "+infinity":
		return math.Inf(1), true
	case "-inf", "-infinity":
		return math.Inf(-1), true
	}
	return 0, false
}

var floatNaNStrLeaf = leaf{
	decode: func(v any) (any, error) {
		if s, ok := v.(ir.String); ok {
			if f, ok := parseSpecialFloat(string(s)); ok {
				return f, nil
			}
			return nil, fmt.Errorf("%q is not a float constant", string(s))
		}
		return floatLeaf.decode(v)
	},
	encode: func(v any) (any, error) {
		f, ok := toFloat64(v)
		if !ok {
			return nil, engine.Mismatch("float64", v)
		}
		switch {
		case math.IsNaN(f):
			return ir.String("NaN"), nil
		case math.IsInf(f, 1):
			return ir.String("Infinity"), nil
		case math.IsInf(f, -1):
			return ir.String("-Infinity"), nil
		}
		return ir.Float(f), nil
	},
	isDecoded: floatLeaf.isDecoded,
	isEncoded: func(v any) bool {
		if s, ok := v.(ir.String); ok {
			_, ok = parseSpecialFloat(string(s))
			return ok
		}
		_, ok := numberOf(v)
		return ok
	},
	pattern: pattern.NewAlternatives(
		pattern.Number,
		pattern.Exact("NaN"),
		pattern.Exact("Infinity"),
		pattern.Exact("-Infinity"),
	),
}

// ============================================================================
// Decimals
// ============================================================================

// Decimals handles decimal as a JSON number. Integral values encode as
// integers; others go through float64 and may lose precision.
var Decimals engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, _ *engine.Engine) (ir.Action, error) {
	if desc != typedesc.Decimal {
		return nil, nil
	}
	return decimalLeaf.action(verb), nil
})

// DecimalsAsStr handles decimal as a string holding its exact digits.
var DecimalsAsStr engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, _ *engine.Engine) (ir.Action, error) {
	if desc != typedesc.Decimal {
		return nil, nil
	}
	return decimalStrLeaf.action(verb), nil
})

func parseDecimal(s string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, err
	}
	if d.Form != apd.Finite {
		return nil, fmt.Errorf("%q is not a finite decimal", s)
	}
	return d, nil
}

func finiteDecimal(v any) (*apd.Decimal, error) {
	d, ok := v.(*apd.Decimal)
	if !ok || d == nil {
		return nil, engine.Mismatch("*apd.Decimal", v)
	}
	if d.Form != apd.Finite {
		return nil, fmt.Errorf("cannot encode %s", d)
	}
	return d, nil
}

func isDecimal(v any) bool {
	d, ok := v.(*apd.Decimal)
	return ok && d != nil
}

var decimalLeaf = leaf{
	decode: func(v any) (any, error) {
		switch n := v.(type) {
		case ir.Int:
			return apd.New(int64(n), 0), nil
		case ir.Float:
			return new(apd.Decimal).SetFloat64(float64(n))
		}
		return nil, engine.Mismatch("number", v)
	},
	encode: func(v any) (any, error) {
		d, err := finiteDecimal(v)
		if err != nil {
			return nil, err
		}
		if n, err := d.Int64(); err == nil {
			return ir.Int(n), nil
		}
		f, err := d.Float64()
		if err != nil {
			return nil, fmt.Errorf("decimal %s: %w", d, err)
		}
		return ir.Float(f), nil
	},
	isDecoded: isDecimal,
	isEncoded: func(v any) bool { f, ok := numberOf(v); return ok && isFinite(f) },
	pattern:   pattern.Number,
}

var decimalStrLeaf = leaf{
	decode: func(v any) (any, error) {
		s, ok := v.(ir.String)
		if !ok {
			return nil, engine.Mismatch("string", v)
		}
		return parseDecimal(string(s))
	},
	encode: func(v any) (any, error) {
		d, err := finiteDecimal(v)
		if err != nil {
			return nil, err
		}
		return ir.String(d.String()), nil
	},
	isDecoded: isDecimal,
	isEncoded: parsesAs(parseDecimal),
	pattern:   pattern.NamedString("number", recognizer(parseDecimal)),
}
