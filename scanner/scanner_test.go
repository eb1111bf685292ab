package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/skpat/syntax"
)

func TestScan(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	files := map[string]string{
		"base.yaml":           "name: base",
		"more/extra.toml":     "name = \"extra\"",
		"more/deep/b.yml":     "name: b",
		"notes.txt":           "not a definition file",
		".git/config.yaml":    "name: hidden",
		"more/.cache/c.toml":  "name = \"c\"",
		"more/deep/README.md": "# readme",
	}
	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}

	scanned, err := New(tempDir).Scan()
	require.NoError(t, err)

	want := []FileInfo{
		{Path: filepath.Join(tempDir, "base.yaml"), Format: syntax.FormatYAML, Size: int64(len(files["base.yaml"]))},
		{Path: filepath.Join(tempDir, "more/deep/b.yml"), Format: syntax.FormatYAML, Size: int64(len(files["more/deep/b.yml"]))},
		{Path: filepath.Join(tempDir, "more/extra.toml"), Format: syntax.FormatTOML, Size: int64(len(files["more/extra.toml"]))},
	}
	assert.Equal(t, want, scanned)
}

func TestScan_SingleFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "defs.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	scanned, err := New(path).Scan()
	require.NoError(t, err)
	require.Len(t, scanned, 1)
	assert.Equal(t, path, scanned[0].Path)
	assert.Empty(t, scanned[0].Format)

	_, err = New(filepath.Join(t.TempDir(), "missing")).Scan()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
