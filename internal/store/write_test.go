package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shapes/internal/pattern"
)

func TestRecordRun_AssignsSeqAndID(t *testing.T) {
	s := createTestStore(t)

	r1 := recordTestRun(t, s, map[string]pattern.Pattern{"Id": pattern.Number})
	r2 := recordTestRun(t, s, map[string]pattern.Pattern{"Id": pattern.Number})

	assert.Equal(t, int64(1), r1.Seq)
	assert.Equal(t, int64(2), r2.Seq)
	assert.NotEqual(t, r1.ID, r2.ID)
	assert.Equal(t, "always", r1.Threshold)
	assert.Equal(t, "catalog.cue", r1.Source)
}

func TestRecordRun_PatternsAreShared(t *testing.T) {
	s := createTestStore(t)

	recordTestRun(t, s, map[string]pattern.Pattern{"A": pattern.Number, "B": pattern.Number})
	recordTestRun(t, s, map[string]pattern.Pattern{"A": pattern.Number})

	var patterns, runTypes int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM patterns").Scan(&patterns))
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM run_types").Scan(&runTypes))
	assert.Equal(t, 1, patterns, "one row per distinct rendering")
	assert.Equal(t, 3, runTypes)
}

func TestRecordRun_StoresFindings(t *testing.T) {
	s := createTestStore(t)

	run := recordTestRun(t, s, map[string]pattern.Pattern{
		"Clean": pattern.NewAlternatives(pattern.Null, pattern.Number),
		"Dup":   pattern.NewAlternatives(pattern.Number, pattern.Number),
	})

	findings, err := s.Findings(context.Background(), run.ID)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "Dup", findings[0].TypeName)
	assert.Equal(t, 0, findings[0].Ordinal)
}

func TestRecordRun_DuplicateTypeRollsBack(t *testing.T) {
	s := createTestStore(t)
	tp := mustTypePattern(t, "A", pattern.Number)

	_, err := s.RecordRun(context.Background(), RunInput{
		Source:    "catalog.cue",
		Threshold: pattern.Always,
		Types:     []TypePattern{tp, tp},
	})
	require.Error(t, err)

	var runs int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM lint_runs").Scan(&runs))
	assert.Equal(t, 0, runs, "failed run must not be committed")
}

func TestRecordRun_CanceledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.RecordRun(ctx, RunInput{Threshold: pattern.Always})
	assert.Error(t, err)
}
