package harness

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover_Directory(t *testing.T) {
	got, err := Discover("testdata")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "scenarios", "order_catalog.yaml"),
		filepath.Join("testdata", "scenarios", "special_values.yaml"),
	}, got)
}

func TestDiscover_FilesAndDuplicates(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yml", "")
	writeFile(t, dir, "notes.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "golden"), 0o755))
	writeFile(t, filepath.Join(dir, "golden"), "skip.yaml", "")

	got, err := Discover(dir, a)
	require.NoError(t, err)
	assert.Equal(t, []string{a}, got)
}

func TestDiscover_Missing(t *testing.T) {
	_, err := Discover("testdata/absent")

	var nf *ScenarioNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "testdata/absent", nf.Path)
}
