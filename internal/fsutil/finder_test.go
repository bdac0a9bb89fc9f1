package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestFindFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.hcl"))
	touch(t, filepath.Join(root, "b.txt"))
	touch(t, filepath.Join(root, "nested", "c.yaml"))
	touch(t, filepath.Join(root, "nested", "d.yml"))
	other := filepath.Join(t.TempDir(), "notes.txt")
	touch(t, other)

	files, err := FindFiles([]string{root, filepath.Join(root, "a.hcl"), other}, ".hcl", ".yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "nested", "c.yaml"),
		other,
	}, files)
}

func TestFindFiles_MissingPath(t *testing.T) {
	_, err := FindFiles([]string{filepath.Join(t.TempDir(), "missing")}, ".hcl")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindFiles_NoExtensionsPanics(t *testing.T) {
	assert.Panics(t, func() { _, _ = FindFiles(nil) })
}
