package rules

import (
	"bytes"
	"errors"
	"slices"

	"github.com/roach88/shapes/internal/engine"
	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
	"github.com/roach88/shapes/internal/typedesc"
)

// Optional handles optional[T]: nil and null pass through, anything
// else goes to T.
var Optional engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, e *engine.Engine) (ir.Action, error) {
	o, ok := desc.(typedesc.Optional)
	if !ok || !isCore(verb) {
		return nil, nil
	}
	inner, err := e.Lookup(verb, o.Elem)
	if err != nil {
		return nil, err
	}
	switch verb {
	case ir.Decode:
		conv := inner.(ir.Converter)
		return ir.Converter(func(v any) (any, error) {
			if _, null := v.(ir.Null); null {
				return nil, nil
			}
			return conv(v)
		}), nil
	case ir.Encode:
		conv := inner.(ir.Converter)
		return ir.Converter(func(v any) (any, error) {
			if v == nil {
				return ir.Null{}, nil
			}
			return conv(v)
		}), nil
	case ir.InspectDecoded:
		check := inner.(ir.Inspector)
		return ir.Inspector(func(v any) bool { return v == nil || check(v) }), nil
	case ir.InspectEncoded:
		check := inner.(ir.Inspector)
		return ir.Inspector(func(v any) bool {
			_, null := v.(ir.Null)
			return null || check(v)
		}), nil
	default:
		return pattern.NewAlternatives(pattern.Null, inner.(pattern.Pattern)), nil
	}
})

// Lists handles list[T] as a JSON array. Encoding accepts any Go slice.
var Lists engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, e *engine.Engine) (ir.Action, error) {
	l, ok := desc.(typedesc.List)
	if !ok || !isCore(verb) {
		return nil, nil
	}
	inner, err := e.Lookup(verb, l.Elem)
	if err != nil {
		return nil, err
	}
	switch verb {
	case ir.Decode:
		return decodeArray(inner.(ir.Converter), func(items []any) any { return items }), nil
	case ir.Encode:
		return encodeItems(inner.(ir.Converter), sliceItems), nil
	case ir.InspectDecoded:
		return checkItems(inner.(ir.Inspector), sliceItems), nil
	case ir.InspectEncoded:
		return checkEncodedArray(inner.(ir.Inspector)), nil
	default:
		return pattern.HomogArray(inner.(pattern.Pattern)), nil
	}
})

// Sets handles set[T] as a JSON array. Decoded sets are
// map[any]struct{}; encoding accepts the keys of any Go map and sorts
// the output by canonical form.
var Sets engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, e *engine.Engine) (ir.Action, error) {
	s, ok := desc.(typedesc.Set)
	if !ok || !isCore(verb) {
		return nil, nil
	}
	inner, err := e.Lookup(verb, s.Elem)
	if err != nil {
		return nil, err
	}
	switch verb {
	case ir.Decode:
		conv := inner.(ir.Converter)
		return ir.Converter(func(v any) (any, error) {
			arr, ok := v.(ir.Array)
			if !ok {
				return nil, engine.Mismatch("array", v)
			}
			out := make(map[any]struct{}, len(arr))
			for i, item := range arr {
				d, err := conv(item)
				if err != nil {
					return nil, engine.AtIndex(err, i)
				}
				if !hashable(d) {
					return nil, engine.AtIndex(errors.New("set member is not comparable"), i)
				}
				out[d] = struct{}{}
			}
			return out, nil
		}), nil
	case ir.Encode:
		enc := encodeItems(inner.(ir.Converter), setMembers)
		return ir.Converter(func(v any) (any, error) {
			out, err := enc(v)
			if err != nil {
				return nil, err
			}
			arr := out.(ir.Array)
			sortCanonical(arr)
			return arr, nil
		}), nil
	case ir.InspectDecoded:
		return checkItems(inner.(ir.Inspector), setMembers), nil
	case ir.InspectEncoded:
		return checkEncodedArray(inner.(ir.Inspector)), nil
	default:
		return pattern.HomogArray(inner.(pattern.Pattern)), nil
	}
})

func setMembers(v any) ([]any, bool) {
	entries, ok := mapEntries(v)
	if !ok {
		return nil, false
	}
	out := make([]any, len(entries))
	for i, kv := range entries {
		out[i] = kv[0]
	}
	return out, true
}

func sortCanonical(arr ir.Array) {
	keys := make(map[int][]byte, len(arr))
	idx := make([]int, len(arr))
	for i, v := range arr {
		idx[i] = i
		b, err := ir.MarshalCanonical(v)
		if err != nil {
			b = nil
		}
		keys[i] = b
	}
	slices.SortStableFunc(idx, func(a, b int) int { return bytes.Compare(keys[a], keys[b]) })
	sorted := make(ir.Array, len(arr))
	for i, j := range idx {
		sorted[i] = arr[j]
	}
	copy(arr, sorted)
}

func decodeArray(conv ir.Converter, build func([]any) any) ir.Converter {
	return func(v any) (any, error) {
		arr, ok := v.(ir.Array)
		if !ok {
			return nil, engine.Mismatch("array", v)
		}
		out := make([]any, len(arr))
		for i, item := range arr {
			d, err := conv(item)
			if err != nil {
				return nil, engine.AtIndex(err, i)
			}
			out[i] = d
		}
		return build(out), nil
	}
}

func encodeItems(conv ir.Converter, items func(any) ([]any, bool)) ir.Converter {
	return func(v any) (any, error) {
		list, ok := items(v)
		if !ok {
			return nil, engine.Mismatch("collection", v)
		}
		out := make(ir.Array, len(list))
		for i, item := range list {
			enc, err := conv(item)
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
	}
}

func checkItems(check ir.Inspector, items func(any) ([]any, bool)) ir.Inspector {
	return func(v any) bool {
		list, ok := items(v)
		if !ok {
			return false
		}
		for _, item := range list {
			if !check(item) {
				return false
			}
		}
		return true
	}
}

func checkEncodedArray(check ir.Inspector) ir.Inspector {
	return func(v any) bool {
		arr, ok := v.(ir.Array)
		if !ok {
			return false
		}
		for _, item := range arr {
			if !check(item) {
				return false
			}
		}
		return true
	}
}

// ============================================================================
// Maps
// ============================================================================

// Maps handles map[K, V] as a JSON object. K must answer the string
// verbs (see StringKeys). Decoded maps are map[any]any; encoding accepts
// any Go map.
var Maps engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, e *engine.Engine) (ir.Action, error) {
	m, ok := desc.(typedesc.Map)
	if !ok || !isCore(verb) {
		return nil, nil
	}
	val, err := e.Lookup(verb, m.Value)
	if err != nil {
		return nil, err
	}
	switch verb {
	case ir.Decode:
		key, err := e.Lookup(ir.StringToValue, m.Key)
		if err != nil {
			return nil, err
		}
		return decodeMap(key.(ir.Converter), val.(ir.Converter)), nil
	case ir.Encode:
		key, err := e.Lookup(ir.ValueToString, m.Key)
		if err != nil {
			return nil, err
		}
		return encodeMap(key.(ir.Converter), val.(ir.Converter)), nil
	case ir.InspectDecoded:
		key, err := e.Lookup(ir.InspectDecoded, m.Key)
		if err != nil {
			return nil, err
		}
		return checkMap(key.(ir.Inspector), val.(ir.Inspector)), nil
	case ir.InspectEncoded:
		key, err := e.Lookup(ir.InspectString, m.Key)
		if err != nil {
			return nil, err
		}
		return checkEncodedObject(key.(ir.Inspector), val.(ir.Inspector)), nil
	default:
		key, err := keyPattern(e, m.Key)
		if err != nil {
			return nil, err
		}
		return pattern.HomogObject(key, val.(pattern.Pattern)), nil
	}
})

func decodeMap(key, val ir.Converter) ir.Converter {
	return func(v any) (any, error) {
		obj, ok := v.(ir.Object)
		if !ok {
			return nil, engine.Mismatch("object", v)
		}
		out := make(map[any]any, len(obj))
		for _, name := range obj.SortedKeys() {
			k, err := key(name)
			if err != nil {
				return nil, engine.AtKey(err, name)
			}
			if !hashable(k) {
				return nil, engine.AtKey(errors.New("key is not comparable"), name)
			}
			d, err := val(obj[name])
			if err != nil {
				return nil, engine.AtKey(err, name)
			}
			out[k] = d
		}
		return out, nil
	}
}

func encodeMap(key, val ir.Converter) ir.Converter {
	return func(v any) (any, error) {
		entries, ok := mapEntries(v)
		if !ok {
			return nil, engine.Mismatch("map", v)
		}
		out := make(ir.Object, len(entries))
		for _, kv := range entries {
			k, err := key(kv[0])
			if err != nil {
				return nil, err
			}
			name, ok := k.(string)
			if !ok {
				return nil, engine.Mismatch("string key", k)
			}
			enc, err := val(kv[1])
			if err != nil {
				return nil, engine.AtKey(err, name)
			}
			encoded, ok := enc.(ir.Value)
			if !ok {
				return nil, engine.AtKey(engine.Mismatch("encoded value", enc), name)
			}
			if _, dup := out[name]; dup {
				return nil, engine.AtKey(errors.New("two keys encode to the same string"), name)
			}
			out[name] = encoded
		}
		return out, nil
	}
}

func checkMap(key, val ir.Inspector) ir.Inspector {
	return func(v any) bool {
		entries, ok := mapEntries(v)
		if !ok {
			return false
		}
		for _, kv := range entries {
			if !key(kv[0]) || !val(kv[1]) {
				return false
			}
		}
		return true
	}
}

func checkEncodedObject(key, val ir.Inspector) ir.Inspector {
	return func(v any) bool {
		obj, ok := v.(ir.Object)
		if !ok {
			return false
		}
		for name, item := range obj {
			if !key(name) || !val(item) {
				return false
			}
		}
		return true
	}
}
