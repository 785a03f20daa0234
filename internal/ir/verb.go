package ir

import "fmt"

// Shape selects the kind of action a verb produces and the kind of
// placeholder a forward cell must hand out while the action is built.
type Shape int

const (
	// ShapeConvert verbs produce a Converter.
	ShapeConvert Shape = iota + 1
	// ShapeInspect verbs produce an Inspector.
	ShapeInspect
	// ShapePattern verbs produce a pattern.Pattern.
	ShapePattern
)

func (s Shape) String() string {
	switch s {
	case ShapeConvert:
		return "convert"
	case ShapeInspect:
		return "inspect"
	case ShapePattern:
		return "pattern"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Verb names an operation requested from the engine. Verbs are comparable
// and usable as map keys.
type Verb struct {
	name  string
	shape Shape
}

// NewVerb mints a verb. Extensions use it for their own operations; two
// verbs are the same only if both name and shape match.
func NewVerb(name string, shape Shape) Verb {
	return Verb{name: name, shape: shape}
}

// Name returns the verb's name.
func (v Verb) Name() string { return v.name }

// Shape returns the verb's action shape.
func (v Verb) Shape() Shape { return v.shape }

func (v Verb) String() string { return v.name }

// IsZero reports whether v is the zero Verb.
func (v Verb) IsZero() bool { return v == Verb{} }

// Core verbs.
var (
	// Decode converts an encoded Value into its decoded Go value.
	Decode = NewVerb("decode", ShapeConvert)
	// Encode converts a decoded Go value into an encoded Value.
	Encode = NewVerb("encode", ShapeConvert)
	// InspectDecoded tests whether a Go value is a valid decoded instance.
	InspectDecoded = NewVerb("inspect_decoded", ShapeInspect)
	// InspectEncoded tests whether a Value could be decoded.
	InspectEncoded = NewVerb("inspect_encoded", ShapeInspect)
	// DescribePattern produces the pattern of the encoded form.
	DescribePattern = NewVerb("describe_pattern", ShapePattern)
)

// String-key verbs are used by map rules to convert keys to and from
// object keys.
var (
	StringToValue = NewVerb("string_to_value", ShapeConvert)
	ValueToString = NewVerb("value_to_string", ShapeConvert)
	InspectString = NewVerb("inspect_string", ShapeInspect)
)

// CoreVerbs lists the core verbs in a stable order.
func CoreVerbs() []Verb {
	return []Verb{Decode, Encode, InspectDecoded, InspectEncoded, DescribePattern}
}

// ParseVerb resolves the name of a built-in verb.
func ParseVerb(name string) (Verb, error) {
	for _, v := range append(CoreVerbs(), StringToValue, ValueToString, InspectString) {
		if v.name == name {
			return v, nil
		}
	}
	return Verb{}, fmt.Errorf("unknown verb %q", name)
}
