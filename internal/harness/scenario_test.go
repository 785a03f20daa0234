package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_ResolvesCatalogRelativeToFile(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/order_catalog.yaml")
	require.NoError(t, err)

	assert.Equal(t, "order_catalog", s.Name)
	assert.Equal(t, filepath.Join("testdata", "catalog.cue"), s.Catalog)
	assert.Equal(t, "str", s.Rules.Decimals)
	require.Len(t, s.Steps, 8)
	assert.Equal(t, CheckRoundTrip, s.Steps[0].Check)
	require.NotNil(t, s.Steps[7].Path)
	assert.Equal(t, "", *s.Steps[7].Path)
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "c.cue", `types: {}`)
	path := writeFile(t, dir, "s.yaml", `
name: typo
description: misspelt steps
catalog: c.cue
step:
  - check: pattern
`)
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestValidateScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "c.cue", `types: {}`)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"no name", "description: d\ncatalog: c.cue\nsteps: [{check: pattern, type: int, pattern: 0}]", "name is required"},
		{"no description", "name: n\ncatalog: c.cue\nsteps: [{check: pattern, type: int, pattern: 0}]", "description is required"},
		{"no catalog", "name: n\ndescription: d\nsteps: [{check: pattern, type: int, pattern: 0}]", "catalog is required"},
		{"missing catalog", "name: n\ndescription: d\ncatalog: gone.cue\nsteps: [{check: pattern, type: int, pattern: 0}]", "catalog file not found"},
		{"bad rules", "name: n\ndescription: d\ncatalog: c.cue\nrules: {dates: fuzzy}\nsteps: [{check: pattern, type: int, pattern: 0}]", `unknown dates rule "fuzzy"`},
		{"no steps", "name: n\ndescription: d\ncatalog: c.cue\nsteps: []", "steps list is required"},
		{"no type", "name: n\ndescription: d\ncatalog: c.cue\nsteps: [{check: pattern, pattern: 0}]", "steps[0]: type is required"},
		{"no check", "name: n\ndescription: d\ncatalog: c.cue\nsteps: [{type: int}]", "steps[0]: check is required"},
		{"unknown check", "name: n\ndescription: d\ncatalog: c.cue\nsteps: [{check: fuzz, type: int}]", `unknown check "fuzz"`},
		{"roundtrip no input", "name: n\ndescription: d\ncatalog: c.cue\nsteps: [{check: roundtrip, type: int}]", "input is required for roundtrip"},
		{"inspect no verdict", "name: n\ndescription: d\ncatalog: c.cue\nsteps: [{check: inspect, type: int, input: 1}]", "accepted is required"},
		{"pattern no pattern", "name: n\ndescription: d\ncatalog: c.cue\nsteps: [{check: pattern, type: int}]", "pattern is required"},
		{"ambiguity no verdict", "name: n\ndescription: d\ncatalog: c.cue\nsteps: [{check: ambiguity, type: int}]", "ambiguous is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "s.yaml", tt.body)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_NullInputIsPresent(t *testing.T) {
	s, err := ParseScenario([]byte("steps: [{check: roundtrip, type: null, input: null}]"))
	require.NoError(t, err)
	require.Len(t, s.Steps, 1)
	assert.False(t, s.Steps[0].Input.IsZero())
	assert.True(t, s.Steps[0].Output.IsZero())
}
