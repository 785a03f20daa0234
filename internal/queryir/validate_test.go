package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shapes/internal/ir"
)

var testSchema = Schema{
	"findings": {"run_id", "type_name", "strength", "branch"},
}

func TestValidate_ValidQuery(t *testing.T) {
	query := Select{
		From: "findings",
		Filter: And{Predicates: []Predicate{
			Equals{Field: "type_name", Value: ir.String("Id")},
			In{Field: "strength", Values: []ir.Value{ir.String("always"), ir.String("sometimes")}},
			Equals{Field: "branch", Value: ir.Int(0)},
		}},
		Fields: []string{"run_id", "type_name"},
		Limit:  5,
	}

	result := Validate(query, testSchema)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Problems)
	assert.NoError(t, result.Err())
}

func TestValidate_PointerTypes(t *testing.T) {
	query := &Select{
		From:   "findings",
		Filter: &Equals{Field: "run_id", Value: ir.String("r1")},
		Fields: []string{"run_id"},
	}
	assert.True(t, Validate(query, testSchema).Valid)
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name    string
		query   Query
		problem string
	}{
		{
			name:    "nil query",
			query:   nil,
			problem: "nil query",
		},
		{
			name:    "unknown table",
			query:   Select{From: "runs", Fields: []string{"id"}},
			problem: `unknown table "runs"`,
		},
		{
			name:    "no fields",
			query:   Select{From: "findings"},
			problem: "no fields selected from findings",
		},
		{
			name:    "unknown selected field",
			query:   Select{From: "findings", Fields: []string{"seq"}},
			problem: `unknown field "seq"`,
		},
		{
			name: "unknown filter field",
			query: Select{
				From:   "findings",
				Fields: []string{"run_id"},
				Filter: Equals{Field: "id; DROP TABLE findings", Value: ir.Int(1)},
			},
			problem: `unknown field "id; DROP TABLE findings"`,
		},
		{
			name: "null value",
			query: Select{
				From:   "findings",
				Fields: []string{"run_id"},
				Filter: Equals{Field: "type_name", Value: ir.Null{}},
			},
			problem: `field "type_name" compared with null`,
		},
		{
			name: "array value",
			query: Select{
				From:   "findings",
				Fields: []string{"run_id"},
				Filter: In{Field: "type_name", Values: []ir.Value{ir.Array{}}},
			},
			problem: `field "type_name" compared with array`,
		},
		{
			name: "empty set",
			query: Select{
				From:   "findings",
				Fields: []string{"run_id"},
				Filter: And{Predicates: []Predicate{In{Field: "strength"}}},
			},
			problem: `field "strength" compared with an empty set`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.query, testSchema)
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Problems)
			assert.Equal(t, tt.problem, result.Problems[0])
			assert.EqualError(t, result.Err(), "invalid query: "+tt.problem)
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	query := Select{
		From:   "findings",
		Fields: []string{"nope"},
		Filter: And{Predicates: []Predicate{
			Equals{Field: "also_nope", Value: ir.String("x")},
			Equals{Field: "run_id", Value: ir.Object{}},
		}},
	}
	result := Validate(query, testSchema)
	assert.Len(t, result.Problems, 3)
}
