package compiler

import (
	"fmt"
	"slices"

	"github.com/roach88/shapes/internal/engine"
	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/typedesc"
)

// Validation error codes (E100-E199)
const (
	ErrEmptyEnum       = "E101" // enum or flag without members
	ErrDuplicateMember = "E102" // enum member listed twice
	ErrEmptyUnion      = "E103" // union without alternatives
	ErrAliasLoop       = "E104" // names that only name each other
	ErrUnresolved      = "E105" // no rule handles the type
	ErrBadDefault      = "E106" // default does not decode as the field type
	ErrBadMapKey       = "E107" // map key type has no string form
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled catalog against an engine's rules.
// Returns all errors found (does not fail-fast), in declaration order.
func Validate(cat *Catalog, e *engine.Engine) []ValidationError {
	var errs []ValidationError
	for _, n := range cat.All() {
		errs = append(errs, validateNamed(n, e)...)
	}
	return errs
}

func validateNamed(n *typedesc.Named, e *engine.Engine) []ValidationError {
	var errs []ValidationError
	field := "types." + n.Name

	if _, loops := typedesc.Unalias(n).(*typedesc.Named); loops {
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("%s never reaches a concrete type", n.Name),
			Code:    ErrAliasLoop,
		}}
	}

	typedesc.Walk(n.Target(), func(d ir.Descriptor) bool {
		switch v := d.(type) {
		case *typedesc.Named:
			// Names are validated on their own.
			return false
		case *typedesc.Enum:
			errs = append(errs, validateMembers(field, v.Members)...)
		case *typedesc.Flag:
			if len(v.Members()) == 0 {
				errs = append(errs, ValidationError{Field: field, Message: "flag has no members", Code: ErrEmptyEnum})
			}
		case *typedesc.Union:
			if len(v.Alts()) == 0 {
				errs = append(errs, ValidationError{Field: field, Message: "union has no alternatives", Code: ErrEmptyUnion})
			}
		case typedesc.Map:
			if _, err := e.Lookup(ir.StringToValue, v.Key); err != nil {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("%s cannot be a map key", v.Key),
					Code:    ErrBadMapKey,
				})
			}
		case *typedesc.Record:
			errs = append(errs, validateDefaults(field, v, e)...)
		}
		return true
	})
	if len(errs) > 0 {
		return errs
	}

	for _, verb := range ir.CoreVerbs() {
		if _, err := e.Lookup(verb, n); err != nil {
			return []ValidationError{{
				Field:   field,
				Message: err.Error(),
				Code:    ErrUnresolved,
			}}
		}
	}
	return nil
}

func validateMembers(field string, members []string) []ValidationError {
	if len(members) == 0 {
		return []ValidationError{{Field: field, Message: "enum has no members", Code: ErrEmptyEnum}}
	}
	var errs []ValidationError
	for i, m := range members {
		if slices.Index(members, m) != i {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: fmt.Sprintf("duplicate member %q", m),
				Code:    ErrDuplicateMember,
			})
		}
	}
	return errs
}

func validateDefaults(field string, r *typedesc.Record, e *engine.Engine) []ValidationError {
	var errs []ValidationError
	for _, f := range r.Fields {
		if f.Default == nil || f.Type == nil {
			continue
		}
		if _, err := e.Decode(f.Type, f.Default); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + "." + f.Name + ".default",
				Message: err.Error(),
				Code:    ErrBadDefault,
			})
		}
	}
	return errs
}
