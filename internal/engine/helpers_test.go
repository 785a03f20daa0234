package engine

import (
	"fmt"

	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
)

// prim is a leaf descriptor such as "int" or "str".
type prim string

func (p prim) String() string { return string(p) }

// listOf is a comparable container descriptor.
type listOf struct{ elem ir.Descriptor }

func (l listOf) String() string { return fmt.Sprintf("list[%s]", l.elem) }

// recursive is a list whose element type is itself: T = list[T].
type recursive struct{ name string }

func (r *recursive) String() string { return r.name }

// unhashable cannot key a map.
type unhashable struct{ parts []string }

func (u unhashable) String() string { return "unhashable" }

// intRule handles prim("int") for every core verb.
var intRule = RuleFunc(func(verb ir.Verb, desc ir.Descriptor, _ *Engine) (ir.Action, error) {
	if desc != prim("int") {
		return nil, nil
	}
	switch verb {
	case ir.Decode:
		return ir.Converter(func(v any) (any, error) {
			n, ok := v.(ir.Int)
			if !ok {
				return nil, Mismatch("integer", v)
			}
			return int64(n), nil
		}), nil
	case ir.Encode:
		return ir.Converter(func(v any) (any, error) {
			n, ok := v.(int64)
			if !ok {
				return nil, Mismatch("int64", v)
			}
			return ir.Int(n), nil
		}), nil
	case ir.InspectDecoded:
		return ir.Inspector(func(v any) bool { _, ok := v.(int64); return ok }), nil
	case ir.InspectEncoded:
		return ir.Inspector(func(v any) bool { _, ok := v.(ir.Int); return ok }), nil
	case ir.DescribePattern:
		return pattern.Number, nil
	}
	return nil, nil
})

// elemOf returns the element type of list-like descriptors.
func elemOf(desc ir.Descriptor) (ir.Descriptor, bool) {
	switch d := desc.(type) {
	case listOf:
		return d.elem, true
	case *recursive:
		return d, true
	}
	return nil, false
}

// listRule handles listOf and *recursive.
var listRule = RuleFunc(func(verb ir.Verb, desc ir.Descriptor, e *Engine) (ir.Action, error) {
	elem, ok := elemOf(desc)
	if !ok {
		return nil, nil
	}
	inner, err := e.Lookup(verb, elem)
	if err != nil {
		return nil, err
	}
	switch verb {
	case ir.Decode:
		conv := inner.(ir.Converter)
		return ir.Converter(func(v any) (any, error) {
			arr, ok := v.(ir.Array)
			if !ok {
				return nil, Mismatch("array", v)
			}
			out := make([]any, len(arr))
			for i, item := range arr {
				d, err := conv(item)
				if err != nil {
					return nil, AtIndex(err, i)
				}
				out[i] = d
			}
			return out, nil
		}), nil
	case ir.InspectEncoded:
		insp := inner.(ir.Inspector)
		return ir.Inspector(func(v any) bool {
			arr, ok := v.(ir.Array)
			if !ok {
				return false
			}
			for _, item := range arr {
				if !insp(item) {
					return false
				}
			}
			return true
		}), nil
	case ir.DescribePattern:
		return pattern.HomogArray(inner.(pattern.Pattern)), nil
	}
	return nil, nil
})

// countingRule wraps a rule and counts Build calls.
type countingRule struct {
	inner Rule
	calls int
}

func (c *countingRule) Build(verb ir.Verb, desc ir.Descriptor, e *Engine) (ir.Action, error) {
	c.calls++
	return c.inner.Build(verb, desc, e)
}

// constRule accepts every type with a fixed pattern.
type constRule struct{ p pattern.Pattern }

func (c constRule) Build(verb ir.Verb, _ ir.Descriptor, _ *Engine) (ir.Action, error) {
	if verb != ir.DescribePattern {
		return nil, nil
	}
	return c.p, nil
}
