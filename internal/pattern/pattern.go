package pattern

import (
	"fmt"

	"github.com/roach88/shapes/internal/ir"
)

// Kind tags pattern nodes.
type Kind int

const (
	KindAtom Kind = iota + 1
	KindString
	KindArray
	KindObject
	KindAlternatives
	KindMissing
	KindUnknown
	KindForward
)

func (k Kind) String() string {
	switch k {
	case KindAtom:
		return "atom"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindAlternatives:
		return "alternatives"
	case KindMissing:
		return "missing"
	case KindUnknown:
		return "unknown"
	case KindForward:
		return "forward"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Pattern is a node describing the shape of encoded data.
type Pattern interface {
	Kind() Kind
}

// Atom matches exactly one scalar encoded value.
type Atom struct {
	Value ir.Value
}

func (Atom) Kind() Kind { return KindAtom }

// Canonical atoms.
var (
	Null   = Atom{Value: ir.Null{}}
	Bool   = Atom{Value: ir.Bool(false)}
	Number = Atom{Value: ir.Int(0)}
)

// String name constants.
const (
	StrAny   = "str"
	StrExact = "exact"
)

// Str matches strings. Name is StrAny for any string, StrExact for a
// single literal, or a named kind such as "date" with an optional
// recognizer deciding membership.
type Str struct {
	Name      string
	Literal   string
	Recognize func(string) bool
}

func (*Str) Kind() Kind { return KindString }

// AnyString matches every string.
var AnyString = &Str{Name: StrAny}

// Exact matches the literal s only.
func Exact(s string) *Str {
	return &Str{Name: StrExact, Literal: s}
}

// NamedString matches strings of a named kind. recognize may be nil when
// membership cannot be tested.
func NamedString(name string, recognize func(string) bool) *Str {
	return &Str{Name: name, Recognize: recognize}
}

func (s *Str) isExact() bool { return s.Name == StrExact }

// Array matches encoded arrays. A homogeneous array has exactly one
// element pattern repeated any number of times.
type Array struct {
	Elems []Pattern
	Homog bool
}

func (*Array) Kind() Kind { return KindArray }

// HomogArray matches arrays of any length whose elements match elem.
func HomogArray(elem Pattern) *Array {
	return &Array{Elems: []Pattern{elem}, Homog: true}
}

// ExactArray matches arrays with exactly these positional elements.
func ExactArray(elems ...Pattern) *Array {
	return &Array{Elems: elems}
}

// Entry is one key/value pair of an Object pattern. An Optional entry
// may be absent from matching objects.
type Entry struct {
	Key      Pattern
	Value    Pattern
	Optional bool
}

// Object matches encoded objects.
type Object struct {
	Entries []Entry
	Homog   bool
}

func (*Object) Kind() Kind { return KindObject }

// HomogObject matches objects whose keys all match key and values all
// match value.
func HomogObject(key, value Pattern) *Object {
	return &Object{Entries: []Entry{{Key: key, Value: value}}, Homog: true}
}

// ExactObject matches objects with exactly the given entries.
func ExactObject(entries ...Entry) *Object {
	return &Object{Entries: entries}
}

// Field is shorthand for an entry keyed by an exact string.
func Field(name string, value Pattern) Entry {
	return Entry{Key: Exact(name), Value: value}
}

// OptionalField is Field for a key that may be absent.
func OptionalField(name string, value Pattern) Entry {
	return Entry{Key: Exact(name), Value: value, Optional: true}
}

// Alternatives matches anything one of its branches matches.
type Alternatives struct {
	Alts []Pattern
}

func (*Alternatives) Kind() Kind { return KindAlternatives }

// NewAlternatives builds an alternatives node.
func NewAlternatives(alts ...Pattern) *Alternatives {
	return &Alternatives{Alts: alts}
}

type missing struct{}

func (missing) Kind() Kind { return KindMissing }

type unknown struct{}

func (unknown) Kind() Kind { return KindUnknown }

var (
	// Missing fills the absent side when fixed-length arrays differ.
	// It never matches anything.
	Missing Pattern = missing{}
	// Unknown stands for a shape that cannot be described.
	Unknown Pattern = unknown{}
)

// Forward is a pattern whose target is filled in later. It closes
// cycles in recursive types.
type Forward struct {
	target Pattern
}

func (*Forward) Kind() Kind { return KindForward }

// NewForward returns an unresolved forward.
func NewForward() *Forward {
	return &Forward{}
}

// Set points the forward at p.
func (f *Forward) Set(p Pattern) {
	f.target = p
}

// Target returns the current target, nil while unresolved.
func (f *Forward) Target() Pattern {
	return f.target
}

// Resolve follows forwards until reaching a concrete node. An unresolved
// forward, or a chain of forwards that loops, resolves to Unknown.
func Resolve(p Pattern) Pattern {
	var seen map[*Forward]bool
	for {
		f, ok := p.(*Forward)
		if !ok {
			return p
		}
		if f.target == nil {
			return Unknown
		}
		if seen == nil {
			seen = make(map[*Forward]bool)
		}
		if seen[f] {
			return Unknown
		}
		seen[f] = true
		p = f.target
	}
}

// same reports whether a and b are the identical node.
func same(a, b Pattern) bool {
	switch x := a.(type) {
	case Atom:
		y, ok := b.(Atom)
		return ok && ir.Equal(x.Value, y.Value)
	case missing, unknown:
		return a.Kind() == b.Kind()
	case *Str:
		y, ok := b.(*Str)
		return ok && x == y
	case *Array:
		y, ok := b.(*Array)
		return ok && x == y
	case *Object:
		y, ok := b.(*Object)
		return ok && x == y
	case *Alternatives:
		y, ok := b.(*Alternatives)
		return ok && x == y
	case *Forward:
		y, ok := b.(*Forward)
		return ok && x == y
	}
	return false
}
