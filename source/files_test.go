package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "agency-a"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "agency-b", "nested"), 0o755))

	for _, path := range []string{
		"data.json",
		"agency-a/data.json",
		"agency-b/nested/data.json",
		"agency-b/readme.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, path), []byte("{}"), 0o644))
	}

	files, err := Discover(root, []string{"**/data.json"})
	require.NoError(t, err)

	assert.Len(t, files, 3)
	for _, file := range files {
		assert.Equal(t, "data.json", filepath.Base(file))
	}
}

func TestDiscoverDeduplicates(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "data.json"), []byte("{}"), 0o644))

	files, err := Discover(root, []string{"**/*.json", "data.json"})
	require.NoError(t, err)

	assert.Len(t, files, 1)
}
