package cache

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
)

// UnfulfilledError is raised when a forward placeholder is used before
// the action it stands for has been built.
type UnfulfilledError struct {
	Verb ir.Verb
	Type string
}

func (e *UnfulfilledError) Error() string {
	return fmt.Sprintf("forward action for %s(%s) used before it was resolved", e.Verb, e.Type)
}

// IsUnfulfilled reports whether err is, or wraps, an *UnfulfilledError.
func IsUnfulfilled(err error) bool {
	var ue *UnfulfilledError
	return errors.As(err, &ue)
}

// Forward stands in for an action while that action is still being
// built. Rules that recurse into the type being built receive the
// placeholder and capture it; once Fulfill runs, the placeholder
// delegates to the real action.
type Forward struct {
	verb        ir.Verb
	desc        string
	target      atomic.Value // holds actionBox
	placeholder ir.Action
	pattern     *pattern.Forward
}

type actionBox struct{ action ir.Action }

// NewForward creates a forward cell whose placeholder fits verb's shape.
func NewForward(verb ir.Verb, desc ir.Descriptor) *Forward {
	f := &Forward{verb: verb, desc: describe(desc)}
	switch verb.Shape() {
	case ir.ShapeConvert:
		f.placeholder = ir.Converter(f.convert)
	case ir.ShapeInspect:
		f.placeholder = ir.Inspector(f.inspect)
	case ir.ShapePattern:
		f.pattern = pattern.NewForward()
		f.placeholder = f.pattern
	}
	return f
}

// Placeholder returns the stand-in action handed out while in flight.
func (f *Forward) Placeholder() ir.Action {
	return f.placeholder
}

// Fulfill points the placeholder at action. Later calls replace the target.
func (f *Forward) Fulfill(action ir.Action) {
	f.target.Store(actionBox{action: action})
	if f.pattern != nil {
		if p, ok := action.(pattern.Pattern); ok {
			f.pattern.Set(p)
		}
	}
}

// Fulfilled reports whether Fulfill has been called.
func (f *Forward) Fulfilled() bool {
	return f.Resolved() != nil
}

// Resolved returns the fulfilled action, or nil.
func (f *Forward) Resolved() ir.Action {
	box, ok := f.target.Load().(actionBox)
	if !ok {
		return nil
	}
	return box.action
}

func (f *Forward) unfulfilled() *UnfulfilledError {
	return &UnfulfilledError{Verb: f.verb, Type: f.desc}
}

func (f *Forward) convert(v any) (any, error) {
	conv, ok := f.Resolved().(ir.Converter)
	if !ok {
		return nil, f.unfulfilled()
	}
	return conv(v)
}

// inspect has no error channel, so an early call panics with the
// *UnfulfilledError value.
func (f *Forward) inspect(v any) bool {
	insp, ok := f.Resolved().(ir.Inspector)
	if !ok {
		panic(f.unfulfilled())
	}
	return insp(v)
}

func describe(desc ir.Descriptor) string {
	if desc == nil {
		return "<nil>"
	}
	return desc.String()
}
