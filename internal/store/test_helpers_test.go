package store

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/roach88/shapes/internal/pattern"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustTypePattern renders p for typeName, failing the test on error.
func mustTypePattern(t *testing.T, typeName string, p pattern.Pattern) TypePattern {
	t.Helper()
	tp, err := NewTypePattern(typeName, p)
	if err != nil {
		t.Fatalf("NewTypePattern(%s) failed: %v", typeName, err)
	}
	return tp
}

// recordTestRun records a run over the given types, finding ambiguities
// at threshold Always.
func recordTestRun(t *testing.T, s *Store, types map[string]pattern.Pattern) Run {
	t.Helper()
	in := RunInput{Source: "catalog.cue", CatalogHash: "test-hash", Threshold: pattern.Always}
	for _, name := range sortedNames(types) {
		in.Types = append(in.Types, mustTypePattern(t, name, types[name]))
		for _, a := range pattern.FindAmbiguities(types[name], pattern.Always) {
			in.Findings = append(in.Findings, NewFinding(len(in.Findings), name, a))
		}
	}
	run, err := s.RecordRun(context.Background(), in)
	if err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}
	return run
}

func sortedNames(types map[string]pattern.Pattern) []string {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
