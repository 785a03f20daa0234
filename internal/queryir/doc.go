// Package queryir describes read queries over recorded lint history
// without committing to the SQL that runs them.
//
// A Query is a Select over one table (or view) with an optional filter,
// an explicit column list and an optional row limit. Filters are built
// from three predicates:
//
//	Equals{Field, Value}      field = value
//	In{Field, Values}         field IN (values...)
//	And{Predicates}           conjunction; empty means always true
//
// Values are scalar ir.Values. Null, arrays and objects never compare
// equal to a column and are rejected by Validate.
//
// Validate checks a query against a Schema before a backend compiles it;
// backends may assume every table and column name they see was validated,
// since names are not parameterized.
//
// Query and Predicate are sealed: backends switch over the concrete types
// exhaustively.
package queryir
