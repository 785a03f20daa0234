package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name))
	require.NoError(t, err)
	return s
}

func TestRun_SpecialValues(t *testing.T) {
	result, err := Run(context.Background(), loadTestScenario(t, "special_values.yaml"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Steps, 8)
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "c.cue", `types: {Id: union: ["int", "int"]}`)
	path := writeFile(t, dir, "s.yaml", `
name: failing
description: every step misses its expectation
catalog: c.cue
steps:
  - check: roundtrip
    type: int
    input: 1
    output: 2
  - check: reject
    type: int
    input: 1
  - check: inspect
    type: str
    input: 1
    accepted: true
  - check: pattern
    type: int
    pattern: str
  - check: ambiguity
    type: Id
    ambiguous: false
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "steps[0] roundtrip int")
	assert.Contains(t, result.Errors[0], "Expected: 2")
	assert.Contains(t, result.Errors[1], "decoded to 1")
	assert.Contains(t, result.Errors[2], "accepted=false")
	assert.Contains(t, result.Errors[3], `Expected: "str"`)
	assert.Contains(t, result.Errors[4], "branch 0")
}

func TestRun_UnknownTypeIsAnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "c.cue", `types: {}`)
	path := writeFile(t, dir, "s.yaml", `
name: unknown
description: refers to an undeclared type
catalog: c.cue
steps:
  - check: pattern
    type: Nowhere
    pattern: 0
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	_, err = Run(context.Background(), s)
	assert.ErrorContains(t, err, `unknown type "Nowhere"`)
}

func TestRun_BadCatalog(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "c.cue", `types: {A: list: "B"}`)
	path := writeFile(t, dir, "s.yaml", `
name: bad
description: catalog does not compile
catalog: c.cue
steps:
  - check: pattern
    type: A
    pattern: 0
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	_, err = Run(context.Background(), s)
	assert.ErrorContains(t, err, "failed to compile catalog")
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, loadTestScenario(t, "special_values.yaml"))
	assert.ErrorIs(t, err, context.Canceled)
}
