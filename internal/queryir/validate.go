package queryir

import (
	"fmt"
	"slices"

	"github.com/roach88/shapes/internal/ir"
)

// ValidationResult lists the problems found in a query.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid    bool
	Problems []string
}

// Err returns the first problem as an error, or nil.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("invalid query: %s", r.Problems[0])
}

// Validate checks q against schema: the table exists, every referenced
// column belongs to it, at least one column is selected and every value
// is a comparable scalar.
//
// Validate is a pure function with no side effects.
func Validate(q Query, schema Schema) ValidationResult {
	v := &validator{schema: schema, problems: []string{}}
	v.validateQuery(q)
	return ValidationResult{Valid: len(v.problems) == 0, Problems: v.problems}
}

type validator struct {
	schema   Schema
	columns  []string
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addProblem("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	default:
		v.addProblem("unknown query type %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	columns, ok := v.schema[sel.From]
	if !ok {
		v.addProblem("unknown table %q", sel.From)
		return
	}
	v.columns = columns

	if len(sel.Fields) == 0 {
		v.addProblem("no fields selected from %s", sel.From)
	}
	for _, f := range sel.Fields {
		v.checkField(f)
	}
	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

func (v *validator) checkField(f string) {
	if !slices.Contains(v.columns, f) {
		v.addProblem("unknown field %q", f)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
	case Equals:
		v.checkField(pred.Field)
		v.checkValue(pred.Field, pred.Value)
	case *Equals:
		v.validatePredicate(*pred)
	case In:
		v.checkField(pred.Field)
		if len(pred.Values) == 0 {
			v.addProblem("field %q compared with an empty set", pred.Field)
		}
		for _, val := range pred.Values {
			v.checkValue(pred.Field, val)
		}
	case *In:
		v.validatePredicate(*pred)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *And:
		v.validatePredicate(*pred)
	default:
		v.addProblem("unknown predicate type %T", p)
	}
}

func (v *validator) checkValue(field string, val ir.Value) {
	switch val.(type) {
	case ir.String, ir.Int, ir.Float, ir.Bool:
	case nil, ir.Null:
		v.addProblem("field %q compared with null", field)
	default:
		v.addProblem("field %q compared with %s", field, ir.KindOf(val))
	}
}
