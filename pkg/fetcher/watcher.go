package fetcher

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"github.com/vectra-go/vectra/internal/document"
	"github.com/vectra-go/vectra/internal/vecerr"
)

// syncTarget is the subset of document.Index a Watcher needs to keep in
// sync with filesystem events.
type syncTarget interface {
	UpsertDocument(ctx context.Context, uri, text, docType string, metadata map[string]any) (*document.Document, error)
	DeleteDocument(ctx context.Context, uri string) error
}

// Watcher drives a document.Index from filesystem change notifications
// under a DirectoryFetcher's root: writes/creates upsert, removes delete.
type Watcher struct {
	fetcher *DirectoryFetcher
	index   syncTarget
	logger  *slog.Logger
	watcher *fsnotify.Watcher
}

// New returns a Watcher that applies changes under fetcher.Root to index.
func New(fetcher *DirectoryFetcher, index syncTarget, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, vecerr.Wrap(vecerr.IOError, err, "creating filesystem watcher")
	}
	if err := fsw.Add(fetcher.Root); err != nil {
		_ = fsw.Close()
		return nil, vecerr.Wrap(vecerr.IOError, err, "watching %s", fetcher.Root)
	}
	return &Watcher{fetcher: fetcher, index: index, logger: logger, watcher: fsw}, nil
}

// Close stops the underlying filesystem watch.
func (w *Watcher) Close() error { return w.watcher.Close() }

// Run processes filesystem events until ctx is canceled or the watcher's
// channels close.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("fetcher: watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	rel, err := relativeTo(w.fetcher.Root, event.Name)
	if err != nil {
		w.logger.Warn("fetcher: skipping event outside root", "path", event.Name)
		return
	}

	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		doc, err := w.fetcher.Fetch(ctx, rel)
		if err != nil {
			w.logger.Error("fetcher: fetch failed", "uri", rel, "error", err)
			return
		}
		if _, err := w.index.UpsertDocument(ctx, doc.URI, doc.Text, doc.DocType, nil); err != nil {
			w.logger.Error("fetcher: upsert failed", "uri", rel, "error", err)
		}
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if err := w.index.DeleteDocument(ctx, rel); err != nil {
			w.logger.Error("fetcher: delete failed", "uri", rel, "error", err)
		}
	}
}
