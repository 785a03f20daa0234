package store

import (
	"context"
	"fmt"

	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
	"github.com/roach88/shapes/internal/queryir"
	"github.com/roach88/shapes/internal/querysql"
)

const findingHistory = "finding_history"

// findingColumns are the columns of finding_history in scan order.
var findingColumns = []string{
	"run_id", "seq", "source", "ordinal", "type_name",
	"path", "branch", "other", "strength", "message",
}

// SearchSchema is the schema searches are validated against.
var SearchSchema = queryir.Schema{findingHistory: findingColumns}

var searchCompiler = querysql.NewSQLCompiler(map[string]string{
	findingHistory: "seq DESC, ordinal ASC",
})

// Hit is a finding together with the run that reported it.
type Hit struct {
	RunID  string
	Seq    int64
	Source string
	Finding
}

// FindingFilter selects findings across runs. Zero fields match all.
type FindingFilter struct {
	RunID     string
	Source    string
	Types     []string
	Strengths []pattern.Matches
}

// AtLeast lists the strengths at or above threshold, strongest first.
func AtLeast(threshold pattern.Matches) []pattern.Matches {
	var out []pattern.Matches
	for m := pattern.Always; m <= threshold && m < pattern.Never; m++ {
		out = append(out, m)
	}
	return out
}

// Predicate converts the filter to a query predicate, or nil for none.
func (f FindingFilter) Predicate() queryir.Predicate {
	var preds []queryir.Predicate
	if f.RunID != "" {
		preds = append(preds, queryir.Equals{Field: "run_id", Value: ir.String(f.RunID)})
	}
	if f.Source != "" {
		preds = append(preds, queryir.Equals{Field: "source", Value: ir.String(f.Source)})
	}
	if len(f.Types) > 0 {
		preds = append(preds, queryir.In{Field: "type_name", Values: stringValues(f.Types)})
	}
	if len(f.Strengths) > 0 {
		names := make([]string, len(f.Strengths))
		for i, m := range f.Strengths {
			names[i] = m.String()
		}
		preds = append(preds, queryir.In{Field: "strength", Values: stringValues(names)})
	}
	return queryir.AllOf(preds...)
}

func stringValues(ss []string) []ir.Value {
	out := make([]ir.Value, len(ss))
	for i, s := range ss {
		out[i] = ir.String(s)
	}
	return out
}

// Search returns the findings matching filter, newest run first and in
// report order within a run. limit <= 0 means all.
func (s *Store) Search(ctx context.Context, filter queryir.Predicate, limit int) ([]Hit, error) {
	q := queryir.Select{
		From:   findingHistory,
		Filter: filter,
		Fields: findingColumns,
		Limit:  limit,
	}
	if err := queryir.Validate(q, SearchSchema).Err(); err != nil {
		return nil, err
	}
	query, params, err := searchCompiler.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile search: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("search findings: %w", err)
	}
	defer rows.Close()

	hits := []Hit{}
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.RunID, &h.Seq, &h.Source, &h.Ordinal, &h.TypeName,
			&h.Path, &h.Branch, &h.Other, &h.Strength, &h.Message); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hits: %w", err)
	}
	return hits, nil
}
