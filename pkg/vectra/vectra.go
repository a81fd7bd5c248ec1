// Package vectra is the embeddable public API: a local, file-backed
// document index combining chunking, pluggable embeddings, exact
// nearest-neighbor search, and a MongoDB-subset metadata filter.
package vectra

import (
	"context"
	"log/slog"

	"github.com/vectra-go/vectra/internal/document"
	"github.com/vectra-go/vectra/internal/itemselector"
	"github.com/vectra-go/vectra/internal/lockfile"
	"github.com/vectra-go/vectra/internal/textsplitter"
	"github.com/vectra-go/vectra/internal/vecerr"
	"github.com/vectra-go/vectra/internal/vectorindex"
)

// Re-exported types so callers never need to import internal packages.
type (
	// Embeddings is the collaborator interface callers implement to plug
	// in a real embedding provider.
	Embeddings = document.Embeddings
	// EmbeddingsResult is an Embeddings.CreateEmbeddings response.
	EmbeddingsResult = document.EmbeddingsResult
	// Tokenizer is the collaborator interface the chunker uses to count
	// and decode tokens.
	Tokenizer = textsplitter.Tokenizer
	// TextFetcher resolves a uri to fetchable text, for Sync.
	TextFetcher = document.TextFetcher
	// Filter is a parsed metadata filter; build one with ParseFilter.
	Filter = itemselector.Filter
	// QueryOptions configures Query.
	QueryOptions = document.QueryOptions
	// Result is one document's matching chunks from a Query call.
	Result = document.Result
	// Section is one rendered excerpt from Result.Render*.
	Section = document.Section
	// CatalogStats summarizes the document catalog.
	CatalogStats = document.CatalogStats
	// MetadataConfig is the allow-list of metadata keys kept inline (and
	// filterable) per item; everything else spills to a sidecar file.
	MetadataConfig = vectorindex.MetadataConfig
)

// ParseFilter parses a MongoDB-subset metadata filter (the same shape
// accepted by the original source) into a Filter for QueryOptions.Filter.
func ParseFilter(raw map[string]any) (Filter, error) { return itemselector.Parse(raw) }

// DefaultQueryOptions returns {MaxDocuments: 10, MaxChunks: 50}.
func DefaultQueryOptions() QueryOptions { return document.DefaultQueryOptions() }

// Status values an Embeddings provider may report.
const (
	StatusSuccess     = document.StatusSuccess
	StatusRateLimited = document.StatusRateLimited
	StatusError       = document.StatusError
)

// Config configures an Index's collaborators and chunking defaults.
type Config struct {
	Tokenizer    Tokenizer
	Embeddings   Embeddings
	Fetcher      TextFetcher
	ChunkSize    int
	ChunkOverlap int
	DocType      string
	Logger       *slog.Logger
	WithoutLock  bool
}

// Option configures an Index at Open time.
type Option func(*Config)

// WithEmbeddings sets the embeddings provider.
func WithEmbeddings(e Embeddings) Option { return func(c *Config) { c.Embeddings = e } }

// WithTokenizer sets the chunker's tokenizer.
func WithTokenizer(t Tokenizer) Option { return func(c *Config) { c.Tokenizer = t } }

// WithTextFetcher sets the fetcher Sync uses to resolve uris.
func WithTextFetcher(f TextFetcher) Option { return func(c *Config) { c.Fetcher = f } }

// WithChunking overrides the default chunk_size/chunk_overlap (512/0).
func WithChunking(chunkSize, chunkOverlap int) Option {
	return func(c *Config) { c.ChunkSize = chunkSize; c.ChunkOverlap = chunkOverlap }
}

// WithDocType sets the doc_type used when UpsertDocument isn't given one
// explicitly. When set, it takes precedence over the doc_type inferred from
// the uri extension.
func WithDocType(docType string) Option { return func(c *Config) { c.DocType = docType } }

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option { return func(c *Config) { c.Logger = logger } }

// WithoutLock skips acquiring the folder's advisory lock, for read-only
// or single-process use where the lock's overhead isn't warranted.
func WithoutLock() Option { return func(c *Config) { c.WithoutLock = true } }

// Index is a handle on one folder-backed document index, holding an
// advisory lock on the folder from Open until Close (unless WithoutLock was
// given).
type Index struct {
	folder  string
	doc     *document.Index
	fetcher TextFetcher
	lock    *lockfile.FileLock
}

// Open binds an Index to folder, acquiring its advisory lock unless
// WithoutLock is set. It does not create the index on disk; call
// CreateIndex or InitIndex first.
func Open(folder string, opts ...Option) (*Index, error) {
	cfg := Config{ChunkSize: 512, ChunkOverlap: 0, Logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	var lock *lockfile.FileLock
	if !cfg.WithoutLock {
		lock = lockfile.New(folder)
		if err := lock.Lock(); err != nil {
			return nil, err
		}
	}

	docIndex := document.New(document.Config{
		FolderPath: folder,
		Tokenizer:  cfg.Tokenizer,
		Embeddings: cfg.Embeddings,
		Chunking: document.ChunkingConfig{
			ChunkSize:      cfg.ChunkSize,
			ChunkOverlap:   cfg.ChunkOverlap,
			KeepSeparators: true,
			DocType:        cfg.DocType,
		},
	}, document.WithLogger(cfg.Logger))

	return &Index{folder: folder, doc: docIndex, fetcher: cfg.Fetcher, lock: lock}, nil
}

// Close releases the folder's advisory lock, if held.
func (idx *Index) Close() error {
	if idx.lock == nil {
		return nil
	}
	return idx.lock.Unlock()
}

// CreateIndex creates a fresh index at the bound folder. metadataConfig's
// allow-listed keys (if any) are kept inline and filterable; every other
// metadata key spills to a per-item sidecar file.
func (idx *Index) CreateIndex(version int, deleteIfExists bool, metadataConfig MetadataConfig) error {
	return idx.doc.CreateIndex(vectorindex.CreateConfig{
		Version:        version,
		DeleteIfExists: deleteIfExists,
		MetadataConfig: metadataConfig,
	})
}

// InitIndex creates the index if missing (or corrupt), otherwise leaves it
// untouched.
func (idx *Index) InitIndex(version int) error {
	return idx.doc.VectorIndex().InitIndex(vectorindex.CreateConfig{Version: version})
}

// Upsert chunks, embeds, and inserts text under uri, replacing any prior
// document at the same uri.
func (idx *Index) Upsert(ctx context.Context, uri, text, docType string, metadata map[string]any) (*document.Document, error) {
	return idx.doc.UpsertDocument(ctx, uri, text, docType, metadata)
}

// Delete removes the document at uri, if any.
func (idx *Index) Delete(ctx context.Context, uri string) error {
	return idx.doc.DeleteDocument(ctx, uri)
}

// Query embeds queryText and returns matching documents ranked by mean
// chunk score.
func (idx *Index) Query(ctx context.Context, queryText string, opts QueryOptions) ([]*Result, error) {
	return idx.doc.QueryDocuments(ctx, queryText, opts)
}

// Stats reports the document catalog's {version, documents, chunks}.
func (idx *Index) Stats() (CatalogStats, error) {
	return idx.doc.GetCatalogStats()
}

// Sync fetches uri via the configured TextFetcher and upserts it,
// inferring doc_type from the fetched document.
func (idx *Index) Sync(ctx context.Context, uri string, metadata map[string]any) (*document.Document, error) {
	if idx.fetcher == nil {
		return nil, vecerr.New(vecerr.PreconditionViolation, "no TextFetcher configured, use WithTextFetcher")
	}
	fetched, err := idx.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	return idx.doc.UpsertDocument(ctx, fetched.URI, fetched.Text, fetched.DocType, metadata)
}
