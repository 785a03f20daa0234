package typedesc

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/shapes/internal/ir"
)

// Primitive names a scalar type.
type Primitive int

const (
	Null Primitive = iota + 1
	Bool
	Int
	Float
	String
	Decimal
	Date
	DateTime
	Time
	Duration
)

var primitiveNames = map[Primitive]string{
	Null:     "null",
	Bool:     "bool",
	Int:      "int",
	Float:    "float",
	String:   "str",
	Decimal:  "decimal",
	Date:     "date",
	DateTime: "datetime",
	Time:     "time",
	Duration: "duration",
}

func (p Primitive) String() string {
	if name, ok := primitiveNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Primitive(%d)", int(p))
}

// Primitives lists every primitive in declaration order.
func Primitives() []Primitive {
	return []Primitive{Null, Bool, Int, Float, String, Decimal, Date, DateTime, Time, Duration}
}

// ParsePrimitive resolves a primitive by name. "string" is accepted as an
// alias for "str".
func ParsePrimitive(name string) (Primitive, bool) {
	if name == "string" {
		return String, true
	}
	for p, n := range primitiveNames {
		if n == name {
			return p, true
		}
	}
	return 0, false
}

// List is a homogeneous sequence.
type List struct{ Elem ir.Descriptor }

func (l List) String() string { return "list[" + show(l.Elem) + "]" }

// Set is a homogeneous collection without duplicates.
type Set struct{ Elem ir.Descriptor }

func (s Set) String() string { return "set[" + show(s.Elem) + "]" }

// Optional admits null in addition to Elem.
type Optional struct{ Elem ir.Descriptor }

func (o Optional) String() string { return "optional[" + show(o.Elem) + "]" }

// Map has keys that convert to and from strings.
type Map struct {
	Key   ir.Descriptor
	Value ir.Descriptor
}

func (m Map) String() string { return "map[" + show(m.Key) + ", " + show(m.Value) + "]" }

// Tuple is a fixed-length heterogeneous sequence. Tuples are interned:
// NewTuple with the same members returns the same pointer.
type Tuple struct{ elems []ir.Descriptor }

func (t *Tuple) String() string { return "tuple[" + showAll(t.elems) + "]" }

// Elems returns the member types.
func (t *Tuple) Elems() []ir.Descriptor { return slices.Clone(t.elems) }

// Union is an ordered choice of alternatives. Order matters: decoding
// tries the alternatives first to last. Unions are interned.
type Union struct{ alts []ir.Descriptor }

func (u *Union) String() string { return "union[" + showAll(u.alts) + "]" }

// Alts returns the alternatives in order.
func (u *Union) Alts() []ir.Descriptor { return slices.Clone(u.alts) }

// Flag is a string restricted to a fixed set of values. Flags are
// interned on their sorted member set.
type Flag struct{ members []string }

func (f *Flag) String() string {
	quoted := make([]string, len(f.members))
	for i, m := range f.members {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	return "flag[" + strings.Join(quoted, ", ") + "]"
}

// Members returns the sorted member set.
func (f *Flag) Members() []string { return slices.Clone(f.members) }

// Has reports membership.
func (f *Flag) Has(s string) bool {
	_, ok := slices.BinarySearch(f.members, s)
	return ok
}

// Enum is a nominal string enumeration. Two enums with equal members are
// still different types.
type Enum struct {
	Name    string
	Members []string
}

func (e *Enum) String() string { return e.Name }

// Has reports membership.
func (e *Enum) Has(s string) bool { return slices.Contains(e.Members, s) }

// Field is one member of a Record.
type Field struct {
	Name string
	Type ir.Descriptor
	// Optional fields may be absent from both representations.
	Optional bool
	// Default is the encoded default, or nil for none. A field with a
	// default is implicitly optional.
	Default ir.Value
}

// Required reports whether the field must be present when decoding.
func (f Field) Required() bool { return !f.Optional && f.Default == nil }

// Record is a nominal product type with named fields.
type Record struct {
	Name   string
	Fields []Field
}

func (r *Record) String() string { return r.Name }

// Field looks up a field by name.
func (r *Record) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Named gives a type a name. Binding the target after construction lets
// a type refer to itself.
type Named struct {
	Name   string
	target ir.Descriptor
}

// NewNamed returns an unbound name.
func NewNamed(name string) *Named { return &Named{Name: name} }

// Alias returns a name bound to target.
func Alias(name string, target ir.Descriptor) *Named {
	return &Named{Name: name, target: target}
}

func (n *Named) String() string { return n.Name }

// Bind sets the target.
func (n *Named) Bind(target ir.Descriptor) { n.target = target }

// Target returns the bound type, or nil.
func (n *Named) Target() ir.Descriptor { return n.target }

func show(d ir.Descriptor) string {
	if d == nil {
		return "<nil>"
	}
	return d.String()
}

func showAll(ds []ir.Descriptor) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = show(d)
	}
	return strings.Join(parts, ", ")
}

// ============================================================================
// Interning
// ============================================================================

var (
	internMu sync.Mutex
	tuples   = make(map[string]*Tuple)
	unions   = make(map[string]*Union)
	flags    = make(map[string]*Flag)
)

// NewTuple returns the tuple of elems.
func NewTuple(elems ...ir.Descriptor) *Tuple {
	key := identities(elems)
	internMu.Lock()
	defer internMu.Unlock()
	if t, ok := tuples[key]; ok {
		return t
	}
	t := &Tuple{elems: slices.Clone(elems)}
	tuples[key] = t
	return t
}

// NewUnion returns the union of alts in the given order.
func NewUnion(alts ...ir.Descriptor) *Union {
	key := identities(alts)
	internMu.Lock()
	defer internMu.Unlock()
	if u, ok := unions[key]; ok {
		return u
	}
	u := &Union{alts: slices.Clone(alts)}
	unions[key] = u
	return u
}

// NewFlag returns the flag type over members. Duplicates are dropped.
func NewFlag(members ...string) *Flag {
	sorted := slices.Clone(members)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	key := strings.Join(sorted, "\x00")
	internMu.Lock()
	defer internMu.Unlock()
	if f, ok := flags[key]; ok {
		return f
	}
	f := &Flag{members: sorted}
	flags[key] = f
	return f
}

// identity is a string unique to a descriptor's identity: structural for
// value descriptors, the address for pointer descriptors.
func identity(d ir.Descriptor) string {
	switch v := d.(type) {
	case nil:
		return "nil"
	case Primitive:
		return v.String()
	case List:
		return "list(" + identity(v.Elem) + ")"
	case Set:
		return "set(" + identity(v.Elem) + ")"
	case Optional:
		return "optional(" + identity(v.Elem) + ")"
	case Map:
		return "map(" + identity(v.Key) + "," + identity(v.Value) + ")"
	default:
		if reflect.ValueOf(d).Kind() == reflect.Pointer {
			return fmt.Sprintf("%T@%p", d, d)
		}
		return fmt.Sprintf("%T:%#v", d, d)
	}
}

func identities(ds []ir.Descriptor) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = identity(d)
	}
	return strings.Join(parts, "|")
}
