package compiler

import (
	"fmt"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/typedesc"
)

// Catalog is the set of named types declared by one source.
type Catalog struct {
	// Names in declaration order.
	Names []string
	types map[string]*typedesc.Named
}

// Lookup returns the named type, or false.
func (c *Catalog) Lookup(name string) (*typedesc.Named, bool) {
	n, ok := c.types[name]
	return n, ok
}

// All returns the named types in declaration order.
func (c *Catalog) All() []*typedesc.Named {
	out := make([]*typedesc.Named, len(c.Names))
	for i, name := range c.Names {
		out[i] = c.types[name]
	}
	return out
}

// Fingerprint identifies the catalog's structure: the names in order
// and what each expands to.
func (c *Catalog) Fingerprint() string {
	var b strings.Builder
	for _, n := range c.All() {
		b.WriteString(typedesc.Describe(n))
		b.WriteByte('\n')
	}
	return ir.FingerprintString(ir.DomainCatalog, b.String())
}

// Resolve parses a type expression written in the catalog's string
// syntax: a primitive or a declared name.
func (c *Catalog) Resolve(expr string) (ir.Descriptor, error) {
	if n, ok := c.types[expr]; ok {
		return n, nil
	}
	if p, ok := typedesc.ParsePrimitive(expr); ok {
		return p, nil
	}
	return nil, &CompileError{Field: "type", Message: fmt.Sprintf("unknown type %q", expr)}
}

// ResolveJSON parses a type expression in the struct syntax of the
// source, given as JSON, e.g. {"list": "Tree"}.
func (c *Catalog) ResolveJSON(expr string) (ir.Descriptor, error) {
	v := cuecontext.New().CompileString(expr, cue.Filename("<expr>"))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compiler{cat: c}.expr(v, "expr", "expr")
}

// CompileSource compiles CUE source text holding a top-level types
// struct.
func CompileSource(filename string, src []byte) (*Catalog, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileTypes(v)
}

// CompileTypes reads the types struct of v into a Catalog.
//
// Every label under types declares a name. A type expression is either
// a string naming a primitive or a declared type, or a struct with one
// of these keys:
//
//	list, set, optional   a type expression
//	map                   {key: expr, value: expr}
//	tuple, union          a list of type expressions
//	enum, flag            a list of strings
//	record                {field: expr | {type: expr, optional?: bool, default?: _}}
//
// Names are created before any definition is read, so declarations may
// refer to each other and to themselves in any order.
func CompileTypes(v cue.Value) (*Catalog, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	typesVal := v.LookupPath(cue.ParsePath("types"))
	if !typesVal.Exists() {
		return nil, &CompileError{
			Field:   "types",
			Message: "types is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := typesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	cat := &Catalog{types: make(map[string]*typedesc.Named)}
	var defs []cue.Value
	for iter.Next() {
		name := iter.Label()
		if _, isPrim := typedesc.ParsePrimitive(name); isPrim {
			return nil, &CompileError{
				Field:   "types." + name,
				Message: "name shadows a primitive type",
				Pos:     iter.Value().Pos(),
			}
		}
		cat.Names = append(cat.Names, name)
		cat.types[name] = typedesc.NewNamed(name)
		defs = append(defs, iter.Value())
	}

	for i, name := range cat.Names {
		c := compiler{cat: cat}
		target, err := c.expr(defs[i], "types."+name, name)
		if err != nil {
			return nil, err
		}
		cat.types[name].Bind(target)
	}
	return cat, nil
}

type compiler struct {
	cat *Catalog
}

// typeKeys are the struct keys that introduce a composite type.
var typeKeys = []string{"list", "set", "optional", "map", "tuple", "union", "enum", "flag", "record"}

// expr compiles one type expression. name labels nominal types (records
// and enums) declared at this position.
func (c compiler) expr(v cue.Value, field, name string) (ir.Descriptor, error) {
	if s, err := v.String(); err == nil {
		if n, ok := c.cat.types[s]; ok {
			return n, nil
		}
		if p, ok := typedesc.ParsePrimitive(s); ok {
			return p, nil
		}
		return nil, &CompileError{Field: field, Message: fmt.Sprintf("unknown type %q", s), Pos: v.Pos()}
	}
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("type expression must be a string or struct, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	var key string
	for _, k := range typeKeys {
		if v.LookupPath(cue.ParsePath(k)).Exists() {
			if key != "" {
				return nil, &CompileError{
					Field:   field,
					Message: fmt.Sprintf("type expression has both %s and %s", key, k),
					Pos:     v.Pos(),
				}
			}
			key = k
		}
	}
	if key == "" {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("type expression needs one of %v", typeKeys),
			Pos:     v.Pos(),
		}
	}

	inner := v.LookupPath(cue.ParsePath(key))
	sub := field + "." + key
	switch key {
	case "list":
		elem, err := c.expr(inner, sub, name)
		if err != nil {
			return nil, err
		}
		return typedesc.List{Elem: elem}, nil
	case "set":
		elem, err := c.expr(inner, sub, name)
		if err != nil {
			return nil, err
		}
		return typedesc.Set{Elem: elem}, nil
	case "optional":
		elem, err := c.expr(inner, sub, name)
		if err != nil {
			return nil, err
		}
		return typedesc.Optional{Elem: elem}, nil
	case "map":
		k, err := c.expr(inner.LookupPath(cue.ParsePath("key")), sub+".key", name)
		if err != nil {
			return nil, err
		}
		val, err := c.expr(inner.LookupPath(cue.ParsePath("value")), sub+".value", name)
		if err != nil {
			return nil, err
		}
		return typedesc.Map{Key: k, Value: val}, nil
	case "tuple":
		elems, err := c.exprList(inner, sub, name)
		if err != nil {
			return nil, err
		}
		return typedesc.NewTuple(elems...), nil
	case "union":
		alts, err := c.exprList(inner, sub, name)
		if err != nil {
			return nil, err
		}
		return typedesc.NewUnion(alts...), nil
	case "enum":
		members, err := stringList(inner, sub)
		if err != nil {
			return nil, err
		}
		return &typedesc.Enum{Name: name, Members: members}, nil
	case "flag":
		members, err := stringList(inner, sub)
		if err != nil {
			return nil, err
		}
		return typedesc.NewFlag(members...), nil
	default:
		return c.record(inner, sub, name)
	}
}

func (c compiler) exprList(v cue.Value, field, name string) ([]ir.Descriptor, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of type expressions", Pos: v.Pos()}
	}
	var out []ir.Descriptor
	for i := 0; iter.Next(); i++ {
		d, err := c.expr(iter.Value(), fmt.Sprintf("%s[%d]", field, i), name)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func stringList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of strings", Pos: v.Pos()}
	}
	var out []string
	for i := 0; iter.Next(); i++ {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "must be a string",
				Pos:     iter.Value().Pos(),
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// fieldKeys mark a record field written in long form.
var fieldKeys = []string{"type", "optional", "default"}

func (c compiler) record(v cue.Value, field, name string) (ir.Descriptor, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	rec := &typedesc.Record{Name: name}
	for iter.Next() {
		fname := iter.Label()
		fv := iter.Value()
		sub := field + "." + fname

		long := slices.ContainsFunc(fieldKeys, func(k string) bool {
			return fv.LookupPath(cue.ParsePath(k)).Exists()
		})
		if !long || fv.IncompleteKind() != cue.StructKind {
			typ, err := c.expr(fv, sub, name+"."+fname)
			if err != nil {
				return nil, err
			}
			rec.Fields = append(rec.Fields, typedesc.Field{Name: fname, Type: typ})
			continue
		}

		f := typedesc.Field{Name: fname}
		if tv := fv.LookupPath(cue.ParsePath("type")); tv.Exists() {
			f.Type, err = c.expr(tv, sub+".type", name+"."+fname)
			if err != nil {
				return nil, err
			}
		}
		if ov := fv.LookupPath(cue.ParsePath("optional")); ov.Exists() {
			f.Optional, err = ov.Bool()
			if err != nil {
				return nil, &CompileError{Field: sub + ".optional", Message: "must be a bool", Pos: ov.Pos()}
			}
		}
		if dv := fv.LookupPath(cue.ParsePath("default")); dv.Exists() {
			f.Default, err = toValue(dv, sub+".default")
			if err != nil {
				return nil, err
			}
		}
		rec.Fields = append(rec.Fields, f)
	}
	return rec, nil
}

// toValue converts a concrete CUE value to an encoded value.
func toValue(v cue.Value, field string) (ir.Value, error) {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, &CompileError{Field: field, Message: "must be concrete", Pos: v.Pos()}
	}
	switch v.Kind() {
	case cue.NullKind:
		return ir.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		return ir.Bool(b), err
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Int(n), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Float(f), nil
	case cue.StringKind:
		s, err := v.String()
		return ir.String(s), err
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := ir.Array{}
		for i := 0; iter.Next(); i++ {
			item, err := toValue(iter.Value(), fmt.Sprintf("%s[%d]", field, i))
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := ir.Object{}
		for iter.Next() {
			key := iter.Label()
			item, err := toValue(iter.Value(), field+"."+key)
			if err != nil {
				return nil, err
			}
			out[key] = item
		}
		return out, nil
	}
	return nil, &CompileError{
		Field:   field,
		Message: fmt.Sprintf("unsupported value kind %v", v.Kind()),
		Pos:     v.Pos(),
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// First error with position info wins.
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
