package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/shapes/internal/ir"
)

// LookupError is returned when the engine cannot produce an action.
//
// Codes:
//   - MISSING_TYPE: no descriptor was given
//   - UNRESOLVED_TYPE: no rule and no fallback produced an action
//   - CYCLE_DETECTED: the type recursed into itself with no cache to break the cycle
//   - DEPTH_EXCEEDED: nested lookups went deeper than the configured limit
//   - INVALID_ACTION: a rule returned an action of the wrong kind for the verb
type LookupError struct {
	Code    ErrorCode
	Message string
	Verb    ir.Verb
	Type    string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes lookup errors.
type ErrorCode string

const (
	ErrCodeMissingType   ErrorCode = "MISSING_TYPE"
	ErrCodeUnresolved    ErrorCode = "UNRESOLVED_TYPE"
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"
	ErrCodeDepthExceeded ErrorCode = "DEPTH_EXCEEDED"
	ErrCodeInvalidAction ErrorCode = "INVALID_ACTION"
)

func (e *LookupError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: %s: lookup(%s, %s)", e.Code, e.Message, e.Verb, e.Type)
	}
	return fmt.Sprintf("%s: %s: lookup(%s)", e.Code, e.Message, e.Verb)
}

func (e *LookupError) Unwrap() error { return e.Err }

func hasCode(err error, code ErrorCode) bool {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}

// IsUnresolved reports whether no rule could handle the type.
func IsUnresolved(err error) bool { return hasCode(err, ErrCodeUnresolved) }

// IsMissingType reports whether a lookup was made without a type.
func IsMissingType(err error) bool { return hasCode(err, ErrCodeMissingType) }

// IsCycleError reports whether a lookup recursed with no way to close the cycle.
func IsCycleError(err error) bool { return hasCode(err, ErrCodeCycleDetected) }

// IsDepthError reports whether nested lookups exceeded the depth limit.
func IsDepthError(err error) bool { return hasCode(err, ErrCodeDepthExceeded) }

func newMissingTypeError(verb ir.Verb) *LookupError {
	return &LookupError{
		Code:    ErrCodeMissingType,
		Message: "no type given",
		Verb:    verb,
	}
}

func newUnresolvedError(verb ir.Verb, desc ir.Descriptor) *LookupError {
	return &LookupError{
		Code:    ErrCodeUnresolved,
		Message: "no rule produced an action",
		Verb:    verb,
		Type:    desc.String(),
	}
}

func newCycleError(verb ir.Verb, desc ir.Descriptor) *LookupError {
	return &LookupError{
		Code:    ErrCodeCycleDetected,
		Message: "type refers to itself but the cache cannot hold it in flight",
		Verb:    verb,
		Type:    desc.String(),
	}
}

func newDepthError(verb ir.Verb, desc ir.Descriptor, limit int) *LookupError {
	return &LookupError{
		Code:    ErrCodeDepthExceeded,
		Message: fmt.Sprintf("nested lookups exceeded depth %d", limit),
		Verb:    verb,
		Type:    desc.String(),
	}
}

func newInvalidActionError(verb ir.Verb, desc ir.Descriptor, err error) *LookupError {
	return &LookupError{
		Code:    ErrCodeInvalidAction,
		Message: "rule returned an action of the wrong kind",
		Verb:    verb,
		Type:    desc.String(),
		Err:     err,
	}
}

// PathError annotates a conversion error with where in the value it
// happened. Segments accumulate as the error travels outward.
type PathError struct {
	Segments []string
	Err      error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%v; at %s", e.Err, e.Path())
}

func (e *PathError) Unwrap() error { return e.Err }

// Path joins the segments, e.g. ".items[3].name".
func (e *PathError) Path() string {
	return strings.Join(e.Segments, "")
}

// AtPath prepends segment to err's location. A nil err stays nil.
func AtPath(err error, segment string) error {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*PathError); ok {
		segs := make([]string, 0, len(pe.Segments)+1)
		segs = append(segs, segment)
		segs = append(segs, pe.Segments...)
		return &PathError{Segments: segs, Err: pe.Err}
	}
	return &PathError{Segments: []string{segment}, Err: err}
}

// AtField locates err under a record field.
func AtField(err error, name string) error {
	return AtPath(err, "."+name)
}

// AtIndex locates err at an array position.
func AtIndex(err error, i int) error {
	return AtPath(err, "["+strconv.Itoa(i)+"]")
}

// AtKey locates err under a map key.
func AtKey(err error, key string) error {
	return AtPath(err, "["+strconv.Quote(key)+"]")
}

// ConversionError reports a value that does not fit its type.
type ConversionError struct {
	Expected string
	Got      string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
}

// Mismatch builds a ConversionError naming the Go type of got.
func Mismatch(expected string, got any) error {
	if v, ok := got.(ir.Value); ok {
		return &ConversionError{Expected: expected, Got: ir.KindOf(v)}
	}
	if got == nil {
		return &ConversionError{Expected: expected, Got: "nil"}
	}
	return &ConversionError{Expected: expected, Got: fmt.Sprintf("%T", got)}
}
