package queryir

import "github.com/roach88/shapes/internal/ir"

// Query is a read query. Only types in this package implement it.
type Query interface {
	queryNode()
}

// Predicate filters rows. Only types in this package implement it.
type Predicate interface {
	predicateNode()
}

// Select reads the Fields of rows of From that satisfy Filter.
//
//	Select{
//	  From:   "finding_history",
//	  Filter: And{Predicates: []Predicate{
//	    Equals{Field: "type_name", Value: ir.String("Id")},
//	    In{Field: "strength", Values: []ir.Value{ir.String("always")}},
//	  }},
//	  Fields: []string{"run_id", "message"},
//	  Limit:  10,
//	}
type Select struct {
	From   string
	Filter Predicate // nil matches every row
	Fields []string  // output columns, in order
	Limit  int       // <= 0 means no limit
}

func (Select) queryNode() {}

// Equals holds when Field equals Value.
type Equals struct {
	Field string
	Value ir.Value
}

func (Equals) predicateNode() {}

// In holds when Field equals one of Values.
type In struct {
	Field  string
	Values []ir.Value
}

func (In) predicateNode() {}

// And holds when every predicate holds. An empty And always holds.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// AllOf returns the conjunction of the non-nil predicates, flattening
// nested Ands. It returns nil when nothing remains, and the predicate
// itself when only one does.
func AllOf(preds ...Predicate) Predicate {
	var out []Predicate
	for _, p := range preds {
		switch v := p.(type) {
		case nil:
		case And:
			if flat := AllOf(v.Predicates...); flat != nil {
				if and, ok := flat.(And); ok {
					out = append(out, and.Predicates...)
				} else {
					out = append(out, flat)
				}
			}
		default:
			out = append(out, p)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return And{Predicates: out}
}

// Schema lists the columns of each queryable table.
type Schema map[string][]string
