package rules

import (
	"fmt"

	"github.com/roach88/shapes/internal/engine"
	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/typedesc"
)

// Aliases resolves a named type to its target for every verb, including
// the string verbs. Recursive types go through here: the name is in
// flight while its target is built.
var Aliases engine.Rule = engine.RuleFunc(func(verb ir.Verb, desc ir.Descriptor, e *engine.Engine) (ir.Action, error) {
	n, ok := desc.(*typedesc.Named)
	if !ok {
		return nil, nil
	}
	if n.Target() == nil {
		return nil, fmt.Errorf("type %s is declared but never defined", n.Name)
	}
	if _, loops := typedesc.Unalias(n).(*typedesc.Named); loops {
		return nil, fmt.Errorf("type %s only names other names", n.Name)
	}
	return e.Lookup(verb, n.Target())
})
