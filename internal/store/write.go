package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// RecordRun stores a lint run with its patterns and findings in one
// transaction and returns the new run.
//
// Patterns are written with ON CONFLICT DO NOTHING: a rendering seen in
// an earlier run is shared, not duplicated.
func (s *Store) RecordRun(ctx context.Context, in RunInput) (Run, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Run{}, fmt.Errorf("record run: new id: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM lint_runs`).Scan(&seq); err != nil {
		return Run{}, fmt.Errorf("record run: next seq: %w", err)
	}

	run := Run{
		ID:          id.String(),
		Seq:         seq,
		Source:      in.Source,
		CatalogHash: in.CatalogHash,
		Threshold:   in.Threshold.String(),
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO lint_runs (id, seq, source, catalog_hash, threshold)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Seq, run.Source, run.CatalogHash, run.Threshold); err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	for _, tp := range in.Types {
		if err := writeTypePattern(ctx, tx, run.ID, tp); err != nil {
			return Run{}, fmt.Errorf("record run: %w", err)
		}
	}
	for _, f := range in.Findings {
		if err := writeFinding(ctx, tx, run.ID, f); err != nil {
			return Run{}, fmt.Errorf("record run: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: commit: %w", err)
	}
	return run, nil
}

func writeTypePattern(ctx context.Context, tx *sql.Tx, runID string, tp TypePattern) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO patterns (fingerprint, rendered)
		VALUES (?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`, tp.Fingerprint, tp.Rendered); err != nil {
		return fmt.Errorf("write pattern %s: %w", tp.TypeName, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO run_types (run_id, type_name, fingerprint)
		VALUES (?, ?, ?)
	`, runID, tp.TypeName, tp.Fingerprint); err != nil {
		return fmt.Errorf("write run type %s: %w", tp.TypeName, err)
	}
	return nil
}

func writeFinding(ctx context.Context, tx *sql.Tx, runID string, f Finding) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO findings (run_id, ordinal, type_name, path, branch, other, strength, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, f.Ordinal, f.TypeName, f.Path, f.Branch, f.Other, f.Strength, f.Message)
	if err != nil {
		return fmt.Errorf("write finding %d: %w", f.Ordinal, err)
	}
	return nil
}
