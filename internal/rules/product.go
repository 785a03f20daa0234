package rules

import (
	"errors"
	"fmt"

	"github.com/roach88/shapes/internal/engine"
	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
	"github.com/roach88/shapes/internal/typedesc"
)

var errMissingField = errors.New("missing required field")

// lookupAll resolves verb for each descriptor in order.
func lookupAll(e *engine.Engine, verb ir.Verb, descs []ir.Descriptor) ([]ir.Action, error) {
	out := make([]ir.Action, len(descs))
	for i, d := range descs {
		a, err := e.LookupOptional(verb, d)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

func asConverters(actions []ir.Action) []ir.Converter {
	out := make([]ir.Converter, len(actions))
	for i, a := range actions {
		out[i] = a.(ir.Converter)
	}
	return out
}

func asInspectors(actions []ir.Action) []ir.Inspector {
	out := make([]ir.Inspector, len(actions))
	for i, a := range actions {
		out[i] = a.(ir.Inspector)
	}
	return out
}

func asPatterns(actions []ir.Action) []pattern.Pattern {
	out := make([]pattern.Pattern, len(actions))
	for i, a := range actions {
		out[i] = a.(pattern.Pattern)
	}
	return out
}

// ============================================================================
// Tuples
// ============================================================================

// Tuples handles tuple[A, B, ...] as a JSON array of exactly that
// length.
var Tuples engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, e *engine.Engine) (ir.Action, error) {
	t, ok := desc.(*typedesc.Tuple)
	if !ok || !isCore(verb) {
		return nil, nil
	}
	actions, err := lookupAll(e, verb, t.Elems())
	if err != nil {
		return nil, err
	}
	n := len(actions)
	switch verb {
	case ir.Decode:
		convs := asConverters(actions)
		return ir.Converter(func(v any) (any, error) {
			arr, ok := v.(ir.Array)
			if !ok {
				return nil, engine.Mismatch("array", v)
			}
			if len(arr) != n {
				return nil, fmt.Errorf("expected %d elements, got %d", n, len(arr))
			}
			out := make([]any, n)
			for i, conv := range convs {
				d, err := conv(arr[i])
				if err != nil {
					return nil, engine.AtIndex(err, i)
				}
				out[i] = d
			}
			return out, nil
		}), nil
	case ir.Encode:
		convs := asConverters(actions)
		return ir.Converter(func(v any) (any, error) {
			items, ok := sliceItems(v)
			if !ok {
				return nil, engine.Mismatch("slice", v)
			}
			if len(items) != n {
				return nil, fmt.Errorf("expected %d elements, got %d", n, len(items))
			}
			out := make(ir.Array, n)
			for i, conv := range convs {
				enc, err := conv(items[i])
				if err != nil {
					return nil, engine.AtIndex(err, i)
				}
				val, ok := enc.(ir.Value)
				if !ok {
					return nil, engine.AtIndex(engine.Mismatch("encoded value", enc), i)
				}
				out[i] = val
			}
			return out, nil
		}), nil
	case ir.InspectDecoded:
		checks := asInspectors(actions)
		return ir.Inspector(func(v any) bool {
			items, ok := sliceItems(v)
			return ok && allPass(checks, items)
		}), nil
	case ir.InspectEncoded:
		checks := asInspectors(actions)
		return ir.Inspector(func(v any) bool {
			arr, ok := v.(ir.Array)
			return ok && allPass(checks, arr)
		}), nil
	default:
		return pattern.ExactArray(asPatterns(actions)...), nil
	}
})

func allPass[T any](checks []ir.Inspector, items []T) bool {
	if len(items) != len(checks) {
		return false
	}
	for i, check := range checks {
		if !check(items[i]) {
			return false
		}
	}
	return true
}

// ============================================================================
// Records
// ============================================================================

// Records handles records as JSON objects keyed by field name. Decoded
// records are map[string]any.
//
// Decoding ignores unknown keys, fills absent fields from their default
// and rejects absent required fields. Encoding omits fields whose value
// encodes to the default. A field without a type is resolved through
// the engine's fallback.
var Records engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, e *engine.Engine) (ir.Action, error) {
	r, ok := desc.(*typedesc.Record)
	if !ok || !isCore(verb) {
		return nil, nil
	}
	types := make([]ir.Descriptor, len(r.Fields))
	for i, f := range r.Fields {
		types[i] = f.Type
	}
	actions, err := lookupAll(e, verb, types)
	if err != nil {
		return nil, err
	}
	fields := r.Fields
	switch verb {
	case ir.Decode:
		return decodeRecord(fields, asConverters(actions)), nil
	case ir.Encode:
		return encodeRecord(fields, asConverters(actions)), nil
	case ir.InspectDecoded:
		checks := asInspectors(actions)
		return ir.Inspector(func(v any) bool {
			m, ok := v.(map[string]any)
			if !ok {
				return false
			}
			return recordPasses(fields, checks, func(name string) (any, bool) {
				item, ok := m[name]
				return item, ok
			})
		}), nil
	case ir.InspectEncoded:
		checks := asInspectors(actions)
		return ir.Inspector(func(v any) bool {
			obj, ok := v.(ir.Object)
			if !ok {
				return false
			}
			return recordPasses(fields, checks, func(name string) (any, bool) {
				item, ok := obj[name]
				return item, ok
			})
		}), nil
	default:
		pats := asPatterns(actions)
		entries := make([]pattern.Entry, len(fields))
		for i, f := range fields {
			if f.Required() {
				entries[i] = pattern.Field(f.Name, pats[i])
			} else {
				entries[i] = pattern.OptionalField(f.Name, pats[i])
			}
		}
		return pattern.ExactObject(entries...), nil
	}
})

func decodeRecord(fields []typedesc.Field, convs []ir.Converter) ir.Converter {
	return func(v any) (any, error) {
		obj, ok := v.(ir.Object)
		if !ok {
			return nil, engine.Mismatch("object", v)
		}
		out := make(map[string]any, len(fields))
		for i, f := range fields {
			item, present := obj[f.Name]
			switch {
			case present:
			case f.Default != nil:
				item = f.Default
			case f.Optional:
				continue
			default:
				return nil, engine.AtField(errMissingField, f.Name)
			}
			d, err := convs[i](item)
			if err != nil {
				return nil, engine.AtField(err, f.Name)
			}
			out[f.Name] = d
		}
		return out, nil
	}
}

func encodeRecord(fields []typedesc.Field, convs []ir.Converter) ir.Converter {
	return func(v any) (any, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, engine.Mismatch("map[string]any", v)
		}
		out := make(ir.Object, len(fields))
		for i, f := range fields {
			item, present := m[f.Name]
			if !present {
				if f.Required() {
					return nil, engine.AtField(errMissingField, f.Name)
				}
				continue
			}
			enc, err := convs[i](item)
			if err != nil {
				return nil, engine.AtField(err, f.Name)
			}
			val, ok := enc.(ir.Value)
			if !ok {
				return nil, engine.AtField(engine.Mismatch("encoded value", enc), f.Name)
			}
			if f.Default != nil && ir.Equal(val, f.Default) {
				continue
			}
			out[f.Name] = val
		}
		return out, nil
	}
}

func recordPasses(fields []typedesc.Field, checks []ir.Inspector, get func(string) (any, bool)) bool {
	for i, f := range fields {
		item, ok := get(f.Name)
		if !ok {
			if f.Required() {
				return false
			}
			continue
		}
		if !checks[i](item) {
			return false
		}
	}
	return true
}
