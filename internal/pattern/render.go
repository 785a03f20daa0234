package pattern

import (
	"github.com/roach88/shapes/internal/ir"
)

// Render converts a pattern into an encoded value for display and
// golden snapshots:
//
//	Atom                 its value
//	Str                  "str", "=literal" or the kind name
//	homogeneous Array    ["...", elem]
//	fixed Array          ["exact", e0, e1, ...]
//	Object               {key: value}, "key?" if optional, plus "...": "..." if homogeneous
//	Alternatives         ["alts", a0, a1, ...]
//	Missing / Unknown    "<missing>" / "<unknown>"
//
// A container reached again while rendering itself becomes "<cycle>".
func Render(p Pattern) ir.Value {
	r := renderer{active: make(map[Pattern]bool)}
	return r.render(p)
}

// Format returns the canonical JSON text of Render(p).
func Format(p Pattern) string {
	out, err := ir.MarshalCanonical(Render(p))
	if err != nil {
		// Render only produces finite scalars from atoms built by rules.
		return "<unrenderable: " + err.Error() + ">"
	}
	return string(out)
}

type renderer struct {
	active map[Pattern]bool
}

func (r *renderer) render(p Pattern) ir.Value {
	p = Resolve(p)
	switch n := p.(type) {
	case Atom:
		if n.Value == nil {
			return ir.Null{}
		}
		return n.Value
	case *Str:
		return ir.String(strLabel(n))
	case missing:
		return ir.String("<missing>")
	case unknown:
		return ir.String("<unknown>")
	}

	if r.active[p] {
		return ir.String("<cycle>")
	}
	r.active[p] = true
	defer delete(r.active, p)

	switch n := p.(type) {
	case *Array:
		head := "exact"
		if n.Homog {
			head = "..."
		}
		out := ir.Array{ir.String(head)}
		for _, e := range n.Elems {
			out = append(out, r.render(e))
		}
		return out
	case *Object:
		out := make(ir.Object, len(n.Entries)+1)
		for _, e := range n.Entries {
			label := keyLabel(e.Key)
			if e.Optional {
				label += "?"
			}
			out[label] = r.render(e.Value)
		}
		if n.Homog {
			out["..."] = ir.String("...")
		}
		return out
	case *Alternatives:
		out := ir.Array{ir.String("alts")}
		for _, a := range n.Alts {
			out = append(out, r.render(a))
		}
		return out
	}
	return ir.String("<unknown>")
}

func strLabel(s *Str) string {
	if s.isExact() {
		return "=" + s.Literal
	}
	return s.Name
}

// keyLabel names an object key: the bare literal for exact keys.
func keyLabel(key Pattern) string {
	switch k := Resolve(key).(type) {
	case *Str:
		if k.isExact() {
			return k.Literal
		}
		return k.Name
	case Atom:
		out, err := ir.MarshalCanonical(k.Value)
		if err != nil {
			return "<atom>"
		}
		return string(out)
	}
	return "<" + key.Kind().String() + ">"
}
