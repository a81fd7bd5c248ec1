package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectra-go/vectra/internal/vecerr"
)

// FT01: fetching a relative uri returns its content and inferred doc_type.
func TestDirectoryFetcher_FetchInfersDocType(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# hi"), 0o644))

	f := NewDirectoryFetcher(dir)
	doc, err := f.Fetch(context.Background(), "notes.md")
	require.NoError(t, err)
	assert.Equal(t, "# hi", doc.Text)
	assert.Equal(t, "md", doc.DocType)
}

// FT02: fetching a missing uri surfaces not-found.
func TestDirectoryFetcher_MissingFileIsNotFound(t *testing.T) {
	dir := t.TempDir()
	f := NewDirectoryFetcher(dir)
	_, err := f.Fetch(context.Background(), "missing.txt")
	assert.Error(t, err)
	kind, ok := vecerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, vecerr.NotFound, kind)
}

// FT03: ListURIs enumerates every file under root, relative to it.
func TestDirectoryFetcher_ListURIs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("b"), 0o644))

	f := NewDirectoryFetcher(dir)
	uris, err := f.ListURIs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", filepath.Join("sub", "b.txt")}, uris)
}
