package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a run or pattern does not exist.
var ErrNotFound = errors.New("not found")

// CreatedAt recovers the creation time embedded in the run's UUIDv7.
func (r Run) CreatedAt() (time.Time, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return time.Time{}, fmt.Errorf("run id: %w", err)
	}
	sec, nsec := id.Time().UnixTime()
	return time.Unix(sec, nsec).UTC(), nil
}

// Runs returns the most recent runs, newest first. limit <= 0 means all.
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, source, catalog_hash, threshold
		FROM lint_runs
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Seq, &r.Source, &r.CatalogHash, &r.Threshold); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Run returns one run by id.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, source, catalog_hash, threshold
		FROM lint_runs
		WHERE id = ?
	`, id).Scan(&r.ID, &r.Seq, &r.Source, &r.CatalogHash, &r.Threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("query run: %w", err)
	}
	return r, nil
}

// Findings returns a run's findings in report order.
func (s *Store) Findings(ctx context.Context, runID string) ([]Finding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ordinal, type_name, path, branch, other, strength, message
		FROM findings
		WHERE run_id = ?
		ORDER BY ordinal ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}
	defer rows.Close()

	findings := []Finding{}
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.Ordinal, &f.TypeName, &f.Path, &f.Branch, &f.Other, &f.Strength, &f.Message); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate findings: %w", err)
	}
	return findings, nil
}

// TypePatterns returns the patterns recorded by a run, ordered by type
// name (binary collation).
func (s *Store) TypePatterns(ctx context.Context, runID string) ([]TypePattern, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rt.type_name, rt.fingerprint, p.rendered
		FROM run_types rt
		JOIN patterns p ON p.fingerprint = rt.fingerprint
		WHERE rt.run_id = ?
		ORDER BY rt.type_name COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run types: %w", err)
	}
	defer rows.Close()

	out := []TypePattern{}
	for rows.Next() {
		var tp TypePattern
		if err := rows.Scan(&tp.TypeName, &tp.Fingerprint, &tp.Rendered); err != nil {
			return nil, fmt.Errorf("scan run type: %w", err)
		}
		out = append(out, tp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run types: %w", err)
	}
	return out, nil
}

// Pattern returns the rendering stored under fingerprint.
func (s *Store) Pattern(ctx context.Context, fingerprint string) (string, error) {
	var rendered string
	err := s.db.QueryRowContext(ctx, `SELECT rendered FROM patterns WHERE fingerprint = ?`, fingerprint).Scan(&rendered)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("pattern %s: %w", fingerprint, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query pattern: %w", err)
	}
	return rendered, nil
}

// Change is a type whose pattern differs between two runs. An empty
// fingerprint means the type is absent from that run.
type Change struct {
	TypeName string `json:"type"`
	Before   string `json:"before,omitempty"`
	After    string `json:"after,omitempty"`
}

// Changes compares the patterns of two runs, ordered by type name.
func (s *Store) Changes(ctx context.Context, fromRun, toRun string) ([]Change, error) {
	before, err := s.TypePatterns(ctx, fromRun)
	if err != nil {
		return nil, err
	}
	after, err := s.TypePatterns(ctx, toRun)
	if err != nil {
		return nil, err
	}

	changes := []Change{}
	i, j := 0, 0
	for i < len(before) || j < len(after) {
		switch {
		case j == len(after) || (i < len(before) && before[i].TypeName < after[j].TypeName):
			changes = append(changes, Change{TypeName: before[i].TypeName, Before: before[i].Fingerprint})
			i++
		case i == len(before) || after[j].TypeName < before[i].TypeName:
			changes = append(changes, Change{TypeName: after[j].TypeName, After: after[j].Fingerprint})
			j++
		default:
			if before[i].Fingerprint != after[j].Fingerprint {
				changes = append(changes, Change{
					TypeName: before[i].TypeName,
					Before:   before[i].Fingerprint,
					After:    after[j].Fingerprint,
				})
			}
			i++
			j++
		}
	}
	return changes, nil
}
