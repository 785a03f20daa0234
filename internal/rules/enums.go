package rules

import (
	"fmt"
	"strconv"
	"time"

	"github.com/roach88/shapes/internal/engine"
	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
	"github.com/roach88/shapes/internal/typedesc"
)

// Enums handles enumerations as strings naming a member.
var Enums engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, _ *engine.Engine) (ir.Action, error) {
	e, ok := desc.(*typedesc.Enum)
	if !ok {
		return nil, nil
	}
	return memberLeaf(e.Name, e.Has).action(verb), nil
})

// Flags handles flag types: strings restricted to a literal set.
var Flags engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, _ *engine.Engine) (ir.Action, error) {
	f, ok := desc.(*typedesc.Flag)
	if !ok {
		return nil, nil
	}
	return memberLeaf(f.String(), f.Has).action(verb), nil
})

func memberLeaf(name string, has func(string) bool) leaf {
	check := func(s string) (string, error) {
		if !has(s) {
			return "", fmt.Errorf("%q is not a member of %s", s, name)
		}
		return s, nil
	}
	l := stringLeaf(name, check, func(s string) string { return s })
	l.encode = func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, engine.Mismatch("string", v)
		}
		if _, err := check(s); err != nil {
			return nil, err
		}
		return ir.String(s), nil
	}
	l.isDecoded = func(v any) bool {
		s, ok := v.(string)
		return ok && has(s)
	}
	return l
}

// ============================================================================
// String keys
// ============================================================================

// StringKeys answers the string verbs for types usable as object keys:
// str, int, date, enums and flags.
var StringKeys engine.Rule = engine.RuleFunc(stringKeys)

func stringKeys(verb ir.Verb, desc ir.Descriptor, _ *engine.Engine) (ir.Action, error) {
	var k keyCodec
	switch d := desc.(type) {
	case typedesc.Primitive:
		switch d {
		case typedesc.String:
			k = keyCodec{
				parse:  func(s string) (any, error) { return s, nil },
				format: func(v any) (string, bool) { s, ok := v.(string); return s, ok },
			}
		case typedesc.Int:
			k = keyCodec{
				parse: func(s string) (any, error) { return strconv.ParseInt(s, 10, 64) },
				format: func(v any) (string, bool) {
					n, ok := toInt64(v)
					return strconv.FormatInt(n, 10), ok
				},
			}
		case typedesc.Date:
			k = keyCodec{
				parse: func(s string) (any, error) { return parseDate(s) },
				format: func(v any) (string, bool) {
					t, ok := v.(time.Time)
					if !ok {
						return "", false
					}
					return formatDate(t), true
				},
			}
		default:
			return nil, nil
		}
	case *typedesc.Enum:
		k = memberKey(d.Name, d.Has)
	case *typedesc.Flag:
		k = memberKey(d.String(), d.Has)
	default:
		return nil, nil
	}
	return k.action(verb, desc), nil
}

// keyCodec converts a key type to and from the strings of object keys.
type keyCodec struct {
	parse  func(string) (any, error)
	format func(any) (string, bool)
}

func (k keyCodec) action(verb ir.Verb, desc ir.Descriptor) ir.Action {
	switch verb {
	case ir.StringToValue:
		return ir.Converter(func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, engine.Mismatch("string key", v)
			}
			return k.parse(s)
		})
	case ir.ValueToString:
		return ir.Converter(func(v any) (any, error) {
			s, ok := k.format(v)
			if !ok {
				return nil, fmt.Errorf("%v cannot be a %s key", v, desc)
			}
			return s, nil
		})
	case ir.InspectString:
		return ir.Inspector(func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return false
			}
			_, err := k.parse(s)
			return err == nil
		})
	}
	return nil
}

func memberKey(name string, has func(string) bool) keyCodec {
	return keyCodec{
		parse: func(s string) (any, error) {
			if !has(s) {
				return nil, fmt.Errorf("%q is not a member of %s", s, name)
			}
			return s, nil
		},
		format: func(v any) (string, bool) {
			s, ok := v.(string)
			return s, ok && has(s)
		},
	}
}

// keyPattern describes the object keys produced by key type desc.
func keyPattern(e *engine.Engine, desc ir.Descriptor) (pattern.Pattern, error) {
	base := typedesc.Unalias(desc)
	if base == typedesc.String {
		return pattern.AnyString, nil
	}
	insp, err := e.Lookup(ir.InspectString, desc)
	if err != nil {
		return nil, err
	}
	check := insp.(ir.Inspector)
	return pattern.NamedString(base.String(), func(s string) bool { return check(s) }), nil
}
