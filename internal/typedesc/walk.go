package typedesc

import (
	"fmt"
	"strings"

	"github.com/roach88/shapes/internal/ir"
)

// Children returns the descriptors directly contained in d.
func Children(d ir.Descriptor) []ir.Descriptor {
	switch v := d.(type) {
	case List:
		return []ir.Descriptor{v.Elem}
	case Set:
		return []ir.Descriptor{v.Elem}
	case Optional:
		return []ir.Descriptor{v.Elem}
	case Map:
		return []ir.Descriptor{v.Key, v.Value}
	case *Tuple:
		return v.Elems()
	case *Union:
		return v.Alts()
	case *Record:
		out := make([]ir.Descriptor, 0, len(v.Fields))
		for _, f := range v.Fields {
			out = append(out, f.Type)
		}
		return out
	case *Named:
		if v.target != nil {
			return []ir.Descriptor{v.target}
		}
	}
	return nil
}

// Walk visits d and everything it contains depth-first. Named types and
// records are visited once, so recursive types terminate. Returning false
// from fn skips the children of that node.
func Walk(d ir.Descriptor, fn func(ir.Descriptor) bool) {
	seen := make(map[any]bool)
	var walk func(ir.Descriptor)
	walk = func(d ir.Descriptor) {
		if d == nil {
			return
		}
		switch d.(type) {
		case *Named, *Record:
			if seen[d] {
				return
			}
			seen[d] = true
		}
		if !fn(d) {
			return
		}
		for _, c := range Children(d) {
			walk(c)
		}
	}
	walk(d)
}

// Unalias follows Named types to the first non-name. An unbound or
// looping name is returned as is.
func Unalias(d ir.Descriptor) ir.Descriptor {
	seen := make(map[*Named]bool)
	for {
		n, ok := d.(*Named)
		if !ok || n.target == nil || seen[n] {
			return d
		}
		seen[n] = true
		d = n.target
	}
}

// Describe renders d structurally, expanding records and names once.
// Unlike String, two records with the same name but different fields
// describe differently.
func Describe(d ir.Descriptor) string {
	var b strings.Builder
	expanded := make(map[any]bool)
	var write func(ir.Descriptor)
	write = func(d ir.Descriptor) {
		switch v := d.(type) {
		case nil:
			b.WriteString("<nil>")
		case *Named:
			b.WriteString(v.Name)
			if expanded[v] || v.target == nil {
				return
			}
			expanded[v] = true
			b.WriteString("=")
			write(v.target)
		case *Record:
			b.WriteString("record ")
			b.WriteString(v.Name)
			if expanded[v] {
				return
			}
			expanded[v] = true
			b.WriteString("{")
			for i, f := range v.Fields {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(f.Name)
				if !f.Required() {
					b.WriteString("?")
				}
				b.WriteString(": ")
				write(f.Type)
				if f.Default != nil {
					fmt.Fprintf(&b, " = %s", ir.MustMarshalCanonical(f.Default))
				}
			}
			b.WriteString("}")
		case *Enum:
			fmt.Fprintf(&b, "enum %s%q", v.Name, v.Members)
		case List:
			b.WriteString("list[")
			write(v.Elem)
			b.WriteString("]")
		case Set:
			b.WriteString("set[")
			write(v.Elem)
			b.WriteString("]")
		case Optional:
			b.WriteString("optional[")
			write(v.Elem)
			b.WriteString("]")
		case Map:
			b.WriteString("map[")
			write(v.Key)
			b.WriteString(", ")
			write(v.Value)
			b.WriteString("]")
		case *Tuple:
			writeSeq(&b, "tuple[", v.elems, write)
		case *Union:
			writeSeq(&b, "union[", v.alts, write)
		default:
			b.WriteString(d.String())
		}
	}
	write(d)
	return b.String()
}

func writeSeq(b *strings.Builder, open string, ds []ir.Descriptor, write func(ir.Descriptor)) {
	b.WriteString(open)
	for i, d := range ds {
		if i > 0 {
			b.WriteString(", ")
		}
		write(d)
	}
	b.WriteString("]")
}

// Fingerprint identifies d's structure.
func Fingerprint(d ir.Descriptor) string {
	return ir.FingerprintString(ir.DomainDescriptor, Describe(d))
}
