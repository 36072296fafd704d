package stream

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStore_RoundTrip(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "views"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.html"), []byte("<html></html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "views", "main.html"), []byte("<div></div>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "app.css"), []byte("body{}"), 0644))

	docs, err := Load(src)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	// Lexical walk order is deterministic.
	assert.Equal(t, "app.css", docs[0].Path)
	assert.Equal(t, "index.html", docs[1].Path)
	assert.Equal(t, "views/main.html", docs[2].Path)

	dest := t.TempDir()
	require.NoError(t, Store(dest, docs))

	out, err := Load(dest)
	require.NoError(t, err)
	assert.Equal(t, docs, out)
}

func TestLoad_MissingRoot(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
