package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/queryir"
)

func TestCompile_SimpleSelect(t *testing.T) {
	compiler := NewSQLCompiler(map[string]string{"findings": "seq DESC, ordinal ASC"})

	query := queryir.Select{
		From:   "findings",
		Fields: []string{"run_id", "message"},
		Filter: queryir.Equals{Field: "type_name", Value: ir.String("Id")},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)

	assert.Equal(t, "SELECT run_id, message FROM findings WHERE type_name = ? ORDER BY seq DESC, ordinal ASC", sql)
	assert.NotContains(t, sql, "Id", "values are never interpolated")
	assert.Equal(t, []any{"Id"}, params)
}

func TestCompile_Pointers(t *testing.T) {
	compiler := NewSQLCompiler(nil)

	sql, params, err := compiler.Compile(&queryir.Select{
		From:   "findings",
		Fields: []string{"run_id"},
		Filter: &queryir.Equals{Field: "branch", Value: ir.Int(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT run_id FROM findings WHERE branch = ? ORDER BY rowid ASC", sql)
	assert.Equal(t, []any{int64(2)}, params)
}

func TestCompile_NoFilter(t *testing.T) {
	sql, params, err := NewSQLCompiler(nil).Compile(queryir.Select{From: "t", Fields: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT a FROM t ORDER BY rowid ASC", sql)
	assert.Empty(t, params)
}

func TestCompile_AndInLimit(t *testing.T) {
	query := queryir.Select{
		From:   "t",
		Fields: []string{"a", "b"},
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "a", Value: ir.Bool(true)},
			queryir.In{Field: "b", Values: []ir.Value{ir.String("x"), ir.Float(1.5), ir.Int(3)}},
			queryir.And{Predicates: []queryir.Predicate{
				queryir.Equals{Field: "c", Value: ir.String("y")},
				queryir.Equals{Field: "d", Value: ir.String("z")},
			}},
		}},
		Limit: 10,
	}

	sql, params, err := NewSQLCompiler(map[string]string{"t": "a ASC"}).Compile(query)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT a, b FROM t WHERE a = ? AND b IN (?, ?, ?) AND (c = ? AND d = ?) ORDER BY a ASC LIMIT ?",
		sql)
	assert.Equal(t, []any{true, "x", 1.5, int64(3), "y", "z", 10}, params)
}

func TestCompile_EmptyPredicates(t *testing.T) {
	compiler := NewSQLCompiler(nil)

	sql, _, err := compiler.Compile(queryir.Select{From: "t", Fields: []string{"a"}, Filter: queryir.And{}})
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE 1 = 1")

	sql, params, err := compiler.Compile(queryir.Select{From: "t", Fields: []string{"a"}, Filter: queryir.In{Field: "a"}})
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE 1 = 0")
	assert.Empty(t, params)
}

func TestCompile_Errors(t *testing.T) {
	compiler := NewSQLCompiler(nil)

	_, _, err := compiler.Compile(nil)
	assert.EqualError(t, err, "cannot compile nil query")

	_, _, err = compiler.Compile(queryir.Select{From: "t"})
	assert.EqualError(t, err, "select from t: no fields")

	_, _, err = compiler.Compile(queryir.Select{
		From:   "t",
		Fields: []string{"a"},
		Filter: queryir.Equals{Field: "a", Value: ir.Null{}},
	})
	assert.EqualError(t, err, "compile filter: a: null cannot be used as a SQL parameter")

	_, _, err = compiler.Compile(queryir.Select{
		From:   "t",
		Fields: []string{"a"},
		Filter: queryir.In{Field: "a", Values: []ir.Value{ir.String("ok"), ir.Array{}}},
	})
	assert.EqualError(t, err, "compile filter: a: array cannot be used as a SQL parameter")
}
