package document

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vectra-go/vectra/internal/itemselector"
	"github.com/vectra-go/vectra/internal/textsplitter"
	"github.com/vectra-go/vectra/internal/vecerr"
	"github.com/vectra-go/vectra/internal/vectorindex"
)

const catalogFileName = "catalog.json"

// ChunkingConfig are the document index's default TextSplitter settings,
// merged with any per-upsert doc_type override. Defaults match §4.4:
// keep_separators=true, chunk_size=512, chunk_overlap=0.
type ChunkingConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	KeepSeparators bool
	DocType        string
}

// DefaultChunkingConfig returns the document index's built-in defaults.
func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{ChunkSize: 512, ChunkOverlap: 0, KeepSeparators: true}
}

// Config constructs an Index.
type Config struct {
	FolderPath string
	Tokenizer  textsplitter.Tokenizer
	Embeddings Embeddings
	Chunking   ChunkingConfig
}

// Option configures an Index at construction.
type Option func(*Index)

// WithLogger attaches a structured logger; defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Index) { idx.logger = logger }
}

// Index is the document layer, layered on a vectorindex.Index: it owns the
// URI<->documentId catalog and the chunk/embed/insert ingestion pipeline.
type Index struct {
	vi         *vectorindex.Index
	folderPath string
	tokenizer  textsplitter.Tokenizer
	embeddings Embeddings
	chunking   ChunkingConfig
	logger     *slog.Logger

	mu         sync.Mutex
	catalog    *Catalog
	newCatalog *Catalog
}

// New binds an Index to cfg.FolderPath without touching disk.
func New(cfg Config, opts ...Option) *Index {
	idx := &Index{
		vi:         vectorindex.New(cfg.FolderPath),
		folderPath: cfg.FolderPath,
		tokenizer:  cfg.Tokenizer,
		embeddings: cfg.Embeddings,
		chunking:   cfg.Chunking,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// VectorIndex exposes the underlying vector index for callers that need
// direct item-level access (e.g. administrative tooling).
func (idx *Index) VectorIndex() *vectorindex.Index { return idx.vi }

func (idx *Index) catalogPath() string {
	return filepath.Join(idx.folderPath, catalogFileName)
}

// CreateIndex delegates to the vector index, then eagerly loads or
// initializes the catalog (§4.4).
func (idx *Index) CreateIndex(cfg vectorindex.CreateConfig) error {
	if err := idx.vi.CreateIndex(cfg); err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.loadCatalogLocked()
}

// loadCatalogLocked loads catalog.json, creating an empty one if absent.
// Must be called with idx.mu held.
func (idx *Index) loadCatalogLocked() error {
	if idx.catalog != nil {
		return nil
	}
	if _, err := os.Stat(idx.catalogPath()); err == nil {
		var c Catalog
		if err := readJSON(idx.catalogPath(), &c); err != nil {
			return err
		}
		idx.catalog = &c
		return nil
	}
	c := newCatalog()
	if err := writeJSONAtomic(idx.catalogPath(), c); err != nil {
		return vecerr.Wrap(vecerr.IOError, err, "creating document catalog")
	}
	idx.catalog = c
	return nil
}

// GetDocumentID returns the documentId for uri, if known.
func (idx *Index) GetDocumentID(uri string) (string, bool, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.loadCatalogLocked(); err != nil {
		return "", false, err
	}
	id, ok := idx.catalog.URIToID[uri]
	return id, ok, nil
}

// GetDocumentURI returns the uri for documentId, if known.
func (idx *Index) GetDocumentURI(documentID string) (string, bool, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.loadCatalogLocked(); err != nil {
		return "", false, err
	}
	uri, ok := idx.catalog.IDToURI[documentID]
	return uri, ok, nil
}

// GetCatalogStats returns {version, documents, chunks}.
func (idx *Index) GetCatalogStats() (CatalogStats, error) {
	idx.mu.Lock()
	if err := idx.loadCatalogLocked(); err != nil {
		idx.mu.Unlock()
		return CatalogStats{}, err
	}
	stats := CatalogStats{Version: idx.catalog.Version, Documents: idx.catalog.Count}
	idx.mu.Unlock()

	viStats, err := idx.vi.GetIndexStats()
	if err != nil {
		return CatalogStats{}, err
	}
	stats.Chunks = viStats.Items
	return stats, nil
}

// beginUpdate mirrors LocalDocumentIndex.begin_update: it opens the
// vector index transaction and shadows the catalog into _new_catalog.
func (idx *Index) beginUpdate() error {
	if err := idx.vi.BeginUpdate(); err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.loadCatalogLocked(); err != nil {
		idx.vi.CancelUpdate()
		return err
	}
	idx.newCatalog = idx.catalog.clone()
	return nil
}

func (idx *Index) cancelUpdate() {
	idx.vi.CancelUpdate()
	idx.mu.Lock()
	idx.newCatalog = nil
	idx.mu.Unlock()
}

// endUpdate commits the vector index transaction, then writes
// catalog.json. Per Design Note §9(b) / Open Question (b), this is
// deliberately non-atomic across the two files: the inner index commits
// first, and a crash between the two writes leaves the catalog one
// generation behind the items it describes. The externally observable
// file shapes remain exactly as in §6.
func (idx *Index) endUpdate() error {
	if err := idx.vi.EndUpdate(); err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := writeJSONAtomic(idx.catalogPath(), idx.newCatalog); err != nil {
		return vecerr.Wrap(vecerr.IOError, err, "saving document catalog")
	}
	idx.catalog = idx.newCatalog
	idx.newCatalog = nil
	return nil
}

// UpsertDocument chunks text, batches it through the embeddings
// collaborator, and transactionally inserts the resulting chunk items,
// replacing any prior document at the same uri (§4.4).
func (idx *Index) UpsertDocument(ctx context.Context, uri, text, docType string, metadata map[string]any) (*Document, error) {
	if idx.embeddings == nil {
		return nil, vecerr.New(vecerr.PreconditionViolation, "embeddings provider not configured")
	}

	_, exists, err := idx.GetDocumentID(uri)
	if err != nil {
		return nil, err
	}
	if exists {
		if err := idx.DeleteDocument(ctx, uri); err != nil {
			return nil, err
		}
	}
	documentID := uuid.NewString()

	resolvedDocType := docType
	if resolvedDocType == "" {
		resolvedDocType = idx.chunking.DocType
	}
	if resolvedDocType == "" {
		if pos := strings.LastIndex(uri, "."); pos >= 0 {
			resolvedDocType = strings.ToLower(uri[pos+1:])
		}
	}

	splitter, err := textsplitter.New(textsplitter.Config{
		ChunkSize:      idx.chunking.ChunkSize,
		ChunkOverlap:   idx.chunking.ChunkOverlap,
		KeepSeparators: idx.chunking.KeepSeparators,
		Tokenizer:      idx.tokenizer,
		DocType:        resolvedDocType,
	})
	if err != nil {
		return nil, vecerr.Wrap(vecerr.IOError, err, "configuring splitter")
	}
	chunks := splitter.Split(text)

	batches := batchChunks(chunks, idx.embeddings.MaxTokens())

	embeddings := make([][]float64, 0, len(chunks))
	for _, batch := range batches {
		result, err := idx.embeddings.CreateEmbeddings(ctx, batch)
		if err != nil {
			return nil, vecerr.Wrap(vecerr.ProviderError, err, "generating embeddings")
		}
		if result.Status != StatusSuccess {
			return nil, vecerr.New(vecerr.ProviderError, "embeddings status %q: %s", result.Status, result.Message)
		}
		embeddings = append(embeddings, result.Output...)
	}
	if len(embeddings) != len(chunks) {
		return nil, vecerr.New(vecerr.ProviderError, "embeddings count %d does not match chunk count %d", len(embeddings), len(chunks))
	}

	if err := idx.beginUpdate(); err != nil {
		return nil, err
	}

	for i, chunk := range chunks {
		chunkMetadata := map[string]any{
			"document_id": documentID,
			"start_pos":   float64(chunk.StartPos),
			"end_pos":     float64(chunk.EndPos),
		}
		for k, v := range metadata {
			chunkMetadata[k] = v
		}
		if _, err := idx.vi.Insert(vectorindex.InsertItem{
			ID:       uuid.NewString(),
			Vector:   embeddings[i],
			Metadata: chunkMetadata,
		}); err != nil {
			idx.cancelUpdate()
			return nil, err
		}
	}

	if len(metadata) > 0 {
		if err := writeJSONAtomic(filepath.Join(idx.folderPath, documentID+".json"), metadata); err != nil {
			idx.cancelUpdate()
			return nil, err
		}
	}
	if err := os.WriteFile(filepath.Join(idx.folderPath, documentID+".txt"), []byte(text), 0o644); err != nil {
		idx.cancelUpdate()
		return nil, vecerr.Wrap(vecerr.IOError, err, "writing document text")
	}

	idx.mu.Lock()
	idx.newCatalog.URIToID[uri] = documentID
	idx.newCatalog.IDToURI[documentID] = uri
	idx.newCatalog.Count++
	idx.mu.Unlock()

	if err := idx.endUpdate(); err != nil {
		idx.cancelUpdate()
		return nil, err
	}

	return &Document{folderPath: idx.folderPath, tokenizer: idx.tokenizer, id: documentID, uri: uri}, nil
}

// DeleteDocument removes a document's chunks, catalog entries, and
// per-document files. A no-op if uri is unknown.
func (idx *Index) DeleteDocument(ctx context.Context, uri string) error {
	documentID, ok, err := idx.GetDocumentID(uri)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := idx.beginUpdate(); err != nil {
		return err
	}

	filter, err := itemselector.Parse(map[string]any{"document_id": documentID})
	if err != nil {
		idx.cancelUpdate()
		return err
	}
	chunks, err := idx.vi.ListItemsByMetadata(filter)
	if err != nil {
		idx.cancelUpdate()
		return err
	}
	for _, chunk := range chunks {
		if err := idx.vi.Delete(chunk.ID); err != nil {
			idx.cancelUpdate()
			return err
		}
	}

	idx.mu.Lock()
	delete(idx.newCatalog.URIToID, uri)
	delete(idx.newCatalog.IDToURI, documentID)
	idx.newCatalog.Count--
	idx.mu.Unlock()

	if err := idx.endUpdate(); err != nil {
		idx.cancelUpdate()
		return err
	}

	if err := removeTolerateMissing(filepath.Join(idx.folderPath, documentID+".txt")); err != nil {
		return err
	}
	if err := removeTolerateMissing(filepath.Join(idx.folderPath, documentID+".json")); err != nil {
		return err
	}
	return nil
}

func removeTolerateMissing(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return vecerr.Wrap(vecerr.IOError, err, "removing %s", path)
	}
	return nil
}

// QueryOptions configures QueryDocuments.
type QueryOptions struct {
	MaxDocuments int
	MaxChunks    int
	Filter       *itemselector.Filter
}

// DefaultQueryOptions matches the source's defaults (max_documents=10,
// max_chunks=50).
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{MaxDocuments: 10, MaxChunks: 50}
}

// QueryDocuments embeds queryText, retrieves its top matching chunks,
// groups them by document_id, and returns one Result per document sorted
// by mean chunk score descending, truncated to MaxDocuments (§4.4).
func (idx *Index) QueryDocuments(ctx context.Context, queryText string, opts QueryOptions) ([]*Result, error) {
	if idx.embeddings == nil {
		return nil, vecerr.New(vecerr.PreconditionViolation, "embeddings provider not configured")
	}
	if opts.MaxDocuments == 0 {
		opts.MaxDocuments = 10
	}
	if opts.MaxChunks == 0 {
		opts.MaxChunks = 50
	}

	response, err := idx.embeddings.CreateEmbeddings(ctx, []string{strings.ReplaceAll(queryText, "\n", " ")})
	if err != nil {
		return nil, vecerr.Wrap(vecerr.ProviderError, err, "generating query embedding")
	}
	if response.Status != StatusSuccess || len(response.Output) == 0 {
		return nil, vecerr.New(vecerr.ProviderError, "query embedding status %q: %s", response.Status, response.Message)
	}

	chunks, err := idx.vi.QueryItems(response.Output[0], opts.MaxChunks, opts.Filter)
	if err != nil {
		return nil, err
	}

	byDocument := map[string][]vectorindex.QueryResult{}
	var order []string
	for _, chunk := range chunks {
		documentID, _ := chunk.Item.Metadata["document_id"].(string)
		if _, seen := byDocument[documentID]; !seen {
			order = append(order, documentID)
		}
		byDocument[documentID] = append(byDocument[documentID], chunk)
	}

	results := make([]*Result, 0, len(order))
	for _, documentID := range order {
		uri, _, err := idx.GetDocumentURI(documentID)
		if err != nil {
			return nil, err
		}
		results = append(results, newResult(idx.folderPath, documentID, uri, byDocument[documentID], idx.tokenizer))
	}

	sortResultsByScoreDesc(results)
	if len(results) > opts.MaxDocuments {
		results = results[:opts.MaxDocuments]
	}
	return results, nil
}

// batchChunks implements §4.4 step 6 / Design Note §9: reset the batch
// when cumulative tokens would exceed maxTokens, pushing the overflowing
// chunk into the next batch so chunk-to-embedding alignment is preserved.
func batchChunks(chunks []textsplitter.TextChunk, maxTokens int) [][]string {
	var batches [][]string
	var current []string
	totalTokens := 0

	for _, chunk := range chunks {
		totalTokens += len(chunk.Tokens)
		if totalTokens > maxTokens {
			if len(current) > 0 {
				batches = append(batches, current)
			}
			current = nil
			totalTokens = len(chunk.Tokens)
		}
		current = append(current, strings.ReplaceAll(chunk.Text, "\n", " "))
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}
