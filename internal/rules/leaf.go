package rules

import (
	"math"
	"reflect"

	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
)

// leaf bundles the actions of a scalar type.
type leaf struct {
	decode    ir.Converter
	encode    ir.Converter
	isDecoded ir.Inspector
	isEncoded ir.Inspector
	pattern   pattern.Pattern
}

// action picks the member for verb. Unset members decline with an
// untyped nil so the engine moves on to the next rule.
func (l leaf) action(verb ir.Verb) ir.Action {
	switch verb {
	case ir.Decode:
		if l.decode != nil {
			return l.decode
		}
	case ir.Encode:
		if l.encode != nil {
			return l.encode
		}
	case ir.InspectDecoded:
		if l.isDecoded != nil {
			return l.isDecoded
		}
	case ir.InspectEncoded:
		if l.isEncoded != nil {
			return l.isEncoded
		}
	case ir.DescribePattern:
		if l.pattern != nil {
			return l.pattern
		}
	}
	return nil
}

// isCore reports whether verb is one of the five core verbs.
func isCore(verb ir.Verb) bool {
	switch verb {
	case ir.Decode, ir.Encode, ir.InspectDecoded, ir.InspectEncoded, ir.DescribePattern:
		return true
	}
	return false
}

// parsesAs turns a parser into an inspector over encoded strings.
func parsesAs[T any](parse func(string) (T, error)) ir.Inspector {
	return func(v any) bool {
		s, ok := v.(ir.String)
		if !ok {
			return false
		}
		_, err := parse(string(s))
		return err == nil
	}
}

// recognizer turns a parser into a pattern recognizer.
func recognizer[T any](parse func(string) (T, error)) func(string) bool {
	return func(s string) bool {
		_, err := parse(s)
		return err == nil
	}
}

// toInt64 accepts Go's signed integers and unsigned ones that fit.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return int64(n), true
		}
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
	}
	return 0, false
}

// sliceItems views any Go slice or array as []any.
func sliceItems(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// mapEntries views any Go map as key/value pairs, in no particular order.
func mapEntries(v any) ([][2]any, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make([][2]any, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out = append(out, [2]any{iter.Key().Interface(), iter.Value().Interface()})
	}
	return out, true
}

// hashable reports whether v can key a Go map.
func hashable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).Comparable()
}
