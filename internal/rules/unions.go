package rules

import (
	"github.com/roach88/shapes/internal/engine"
	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
	"github.com/roach88/shapes/internal/typedesc"
)

// Unions handles union[A, B, ...] by trying the alternatives in order.
// Decoding picks the first alternative whose encoded inspector accepts
// the value, encoding the first whose decoded inspector does. The
// pattern lists every alternative, so ambiguity analysis can report
// branches that shadow later ones.
var Unions engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, e *engine.Engine) (ir.Action, error) {
	u, ok := desc.(*typedesc.Union)
	if !ok || !isCore(verb) {
		return nil, nil
	}
	alts := u.Alts()
	switch verb {
	case ir.Decode:
		return unionConverter(e, desc, alts, ir.InspectEncoded, ir.Decode)
	case ir.Encode:
		return unionConverter(e, desc, alts, ir.InspectDecoded, ir.Encode)
	case ir.InspectDecoded, ir.InspectEncoded:
		actions, err := lookupAll(e, verb, alts)
		if err != nil {
			return nil, err
		}
		checks := asInspectors(actions)
		return ir.Inspector(func(v any) bool {
			for _, check := range checks {
				if check(v) {
					return true
				}
			}
			return false
		}), nil
	default:
		actions, err := lookupAll(e, verb, alts)
		if err != nil {
			return nil, err
		}
		return pattern.NewAlternatives(asPatterns(actions)...), nil
	}
})

func unionConverter(e *engine.Engine, desc ir.Descriptor, alts []ir.Descriptor, inspect, convert ir.Verb) (ir.Action, error) {
	checkActions, err := lookupAll(e, inspect, alts)
	if err != nil {
		return nil, err
	}
	convActions, err := lookupAll(e, convert, alts)
	if err != nil {
		return nil, err
	}
	checks := asInspectors(checkActions)
	convs := asConverters(convActions)
	name := desc.String()
	return ir.Converter(func(v any) (any, error) {
		for i, check := range checks {
			if check(v) {
				return convs[i](v)
			}
		}
		return nil, engine.Mismatch(name, v)
	}), nil
}
