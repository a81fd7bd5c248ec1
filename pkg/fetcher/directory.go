// Package fetcher provides reference implementations of the
// document.TextFetcher collaborator interface, and a directory watcher
// that keeps a document index synchronized with a filesystem tree.
package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/vectra-go/vectra/internal/document"
	"github.com/vectra-go/vectra/internal/vecerr"
)

// DirectoryFetcher resolves a uri that is a path relative to Root into its
// file contents, inferring doc_type from the file extension.
type DirectoryFetcher struct {
	Root string
}

// NewDirectoryFetcher returns a fetcher rooted at root.
func NewDirectoryFetcher(root string) *DirectoryFetcher {
	return &DirectoryFetcher{Root: root}
}

// Fetch implements document.TextFetcher.
func (f *DirectoryFetcher) Fetch(_ context.Context, uri string) (document.FetchedDocument, error) {
	path := filepath.Join(f.Root, uri)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return document.FetchedDocument{}, vecerr.Wrap(vecerr.NotFound, err, "fetching %s", uri)
		}
		return document.FetchedDocument{}, vecerr.Wrap(vecerr.IOError, err, "fetching %s", uri)
	}
	return document.FetchedDocument{
		URI:     uri,
		Text:    string(raw),
		DocType: docTypeFromExtension(uri),
	}, nil
}

// ListURIs walks Root and returns every regular file's path relative to it.
func (f *DirectoryFetcher) ListURIs() ([]string, error) {
	var uris []string
	err := filepath.WalkDir(f.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.Root, path)
		if err != nil {
			return err
		}
		uris = append(uris, rel)
		return nil
	})
	if err != nil {
		return nil, vecerr.Wrap(vecerr.IOError, err, "listing %s", f.Root)
	}
	return uris, nil
}

func docTypeFromExtension(uri string) string {
	ext := filepath.Ext(uri)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
