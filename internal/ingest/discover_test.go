package ingest

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
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestSupported(t *testing.T) {
	cases := map[string]bool{
		"a.pdf":       true,
		"b.PDF":       true,
		"c.jpeg":      true,
		"d.png":       true,
		"e.tiff":      false,
		"f.json":      false,
		"noext":       false,
		"dir/g.jpg":   true,
		".hidden.pdf": true,
	}
	for name, want := range cases {
		assert.Equal(t, want, Supported(name), name)
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.pdf"))
	touch(t, filepath.Join(root, "a.png"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "nested", "c.jpg"))
	touch(t, filepath.Join(root, ".cache", "d.pdf"))
	touch(t, filepath.Join(root, ".e.pdf"))

	got, err := Discover(root, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.png"),
		filepath.Join(root, "b.pdf"),
		filepath.Join(root, "nested", "c.jpg"),
	}, got)

	all, err := Discover(root, false)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestDiscoverErrors(t *testing.T) {
	_, err := Discover("  ", true)
	assert.Error(t, err)

	_, err = Discover(filepath.Join(t.TempDir(), "missing"), true)
	assert.Error(t, err)
}
