package ir

import "fmt"

// Descriptor identifies a type. It must be comparable to be cached.
type Descriptor interface {
	String() string
}

// Converter transforms a value between representations.
type Converter func(any) (any, error)

// Inspector reports whether a value is an instance of a representation.
type Inspector func(any) bool

// Action is what the engine returns for a (verb, descriptor) pair:
// a Converter, an Inspector, or a pattern.Pattern depending on the
// verb's Shape.
type Action = any

// ValidationError reports a problem at a field path.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NormalizeAction verifies that action has the Go type required by shape.
// Plain function literals are converted to Converter or Inspector.
// Rules returning the wrong kind of action are programming errors.
func NormalizeAction(shape Shape, action Action) (Action, error) {
	switch shape {
	case ShapeConvert:
		switch fn := action.(type) {
		case Converter:
			return fn, nil
		case func(any) (any, error):
			return Converter(fn), nil
		}
	case ShapeInspect:
		switch fn := action.(type) {
		case Inspector:
			return fn, nil
		case func(any) bool:
			return Inspector(fn), nil
		}
	case ShapePattern:
		// pattern.Pattern is checked by the engine; ir cannot import it.
		if action != nil {
			return action, nil
		}
	}
	return nil, ValidationError{
		Field:   shape.String(),
		Message: fmt.Sprintf("action of type %T does not fit verb shape", action),
	}
}
