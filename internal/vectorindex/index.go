package vectorindex

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/vectra-go/vectra/internal/itemselector"
	"github.com/vectra-go/vectra/internal/vecerr"
)

// Option configures an Index at construction.
type Option func(*Index)

// WithIndexName overrides the default "index.json" filename.
func WithIndexName(name string) Option {
	return func(idx *Index) { idx.indexName = name }
}

// WithLogger attaches a structured logger; defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Index) { idx.logger = logger }
}

// Index is bound to a folder path and an index filename. Construction does
// not touch disk — nothing is read until the first operation that needs
// committed state.
type Index struct {
	mu         sync.Mutex
	folderPath string
	indexName  string
	logger     *slog.Logger

	state  state
	data   *Data
	update *Data
}

// New binds an Index to folderPath without touching disk.
func New(folderPath string, opts ...Option) *Index {
	idx := &Index{
		folderPath: folderPath,
		indexName:  "index.json",
		logger:     slog.Default(),
		state:      stateUnloaded,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// FolderPath returns the bound folder.
func (idx *Index) FolderPath() string { return idx.folderPath }

func (idx *Index) indexPath() string {
	return filepath.Join(idx.folderPath, idx.indexName)
}

// IsIndexCreated reports whether the index file exists on disk.
func (idx *Index) IsIndexCreated() bool {
	return fileExists(idx.indexPath())
}

// CreateIndex creates the folder (if missing) and writes an empty
// IndexData. If the index file already exists it fails unless
// DeleteIfExists is set, in which case the prior index is removed first.
// Any error mid-creation rolls back by deleting the folder.
func (idx *Index) CreateIndex(cfg CreateConfig) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.IsIndexCreated() {
		if !cfg.DeleteIfExists {
			return vecerr.New(vecerr.PreconditionViolation, "index already exists at %s", idx.indexPath())
		}
		if err := idx.deleteIndexLocked(); err != nil {
			return err
		}
	}

	if err := ensureDir(idx.folderPath); err != nil {
		_ = idx.deleteIndexLocked()
		return vecerr.Wrap(vecerr.IOError, err, "creating index folder")
	}

	data := &Data{Version: cfg.Version, MetadataConfig: cfg.MetadataConfig, Items: []Item{}}
	if err := writeJSONAtomic(idx.indexPath(), data); err != nil {
		_ = idx.deleteIndexLocked()
		return err
	}

	idx.data = data
	idx.update = nil
	idx.state = stateLoaded
	idx.logger.Info("vectorindex: created", "folder", idx.folderPath, "version", cfg.Version)
	return nil
}

// DeleteIndex removes the folder and all its files.
func (idx *Index) DeleteIndex() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.deleteIndexLocked()
}

func (idx *Index) deleteIndexLocked() error {
	idx.data = nil
	idx.update = nil
	idx.state = stateUnloaded
	if err := os.RemoveAll(idx.folderPath); err != nil {
		return vecerr.Wrap(vecerr.IOError, err, "deleting index folder %s", idx.folderPath)
	}
	return nil
}

// InitIndex is idempotent: it creates the index with cfg's defaults if the
// file is missing or syntactically invalid, and otherwise leaves the
// existing index untouched.
func (idx *Index) InitIndex(cfg CreateConfig) error {
	idx.mu.Lock()
	corrupt := false
	if idx.IsIndexCreated() {
		var probe Data
		if err := readJSON(idx.indexPath(), &probe); err != nil {
			if kind, ok := vecerr.KindOf(err); ok && kind == vecerr.DataCorruption {
				corrupt = true
			} else {
				idx.mu.Unlock()
				return err
			}
		} else {
			idx.data = &probe
			idx.update = nil
			idx.state = stateLoaded
			idx.mu.Unlock()
			return nil
		}
	}
	idx.mu.Unlock()

	createCfg := cfg
	createCfg.DeleteIfExists = corrupt || cfg.DeleteIfExists
	return idx.CreateIndex(createCfg)
}

// loadIndexData loads committed data from disk if not already loaded.
// Must be called with idx.mu held.
func (idx *Index) loadIndexData() error {
	if idx.data != nil {
		return nil
	}
	if !idx.IsIndexCreated() {
		return vecerr.New(vecerr.NotFound, "index does not exist at %s", idx.folderPath)
	}
	var data Data
	if err := readJSON(idx.indexPath(), &data); err != nil {
		return err
	}
	idx.data = &data
	idx.state = stateLoaded
	return nil
}

// BeginUpdate loads committed data if necessary and opens a transaction.
// Exactly one transaction may be in progress per instance.
func (idx *Index) BeginUpdate() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.beginUpdateLocked()
}

func (idx *Index) beginUpdateLocked() error {
	if idx.update != nil {
		return vecerr.New(vecerr.PreconditionViolation, "update already in progress")
	}
	if err := idx.loadIndexData(); err != nil {
		return err
	}
	idx.update = idx.data.clone()
	idx.state = stateUpdating
	return nil
}

// CancelUpdate drops the in-progress transaction without touching disk.
// Always side-effect-free on disk, per §7.
func (idx *Index) CancelUpdate() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.cancelUpdateLocked()
}

func (idx *Index) cancelUpdateLocked() {
	idx.update = nil
	if idx.data != nil {
		idx.state = stateLoaded
	} else {
		idx.state = stateUnloaded
	}
}

// EndUpdate serializes the in-progress transaction to disk by atomic
// replace, then commits it as the new _data. On failure, _update is left
// populated and _data unchanged.
func (idx *Index) EndUpdate() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.endUpdateLocked()
}

func (idx *Index) endUpdateLocked() error {
	if idx.update == nil {
		return vecerr.New(vecerr.PreconditionViolation, "no update in progress")
	}
	if err := writeJSONAtomic(idx.indexPath(), idx.update); err != nil {
		return err
	}
	idx.data = idx.update
	idx.update = nil
	idx.state = stateLoaded
	return nil
}

// Insert adds item, auto-wrapping a transaction if none is active. It
// fails if id already exists.
func (idx *Index) Insert(item InsertItem) (Item, error) {
	return idx.addItem(item, true)
}

// Upsert adds or replaces item by id, auto-wrapping a transaction if none
// is active.
func (idx *Index) Upsert(item InsertItem) (Item, error) {
	return idx.addItem(item, false)
}

func (idx *Index) addItem(item InsertItem, unique bool) (Item, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	autoTxn := idx.update == nil
	if autoTxn {
		if err := idx.beginUpdateLocked(); err != nil {
			return Item{}, err
		}
	}

	newItem, err := idx.addItemToUpdateLocked(item, unique)
	if err != nil {
		if autoTxn {
			idx.cancelUpdateLocked()
		}
		return Item{}, err
	}

	if autoTxn {
		if err := idx.endUpdateLocked(); err != nil {
			return Item{}, err
		}
	}
	return newItem, nil
}

func (idx *Index) addItemToUpdateLocked(item InsertItem, unique bool) (Item, error) {
	if len(item.Vector) == 0 {
		return Item{}, vecerr.New(vecerr.PreconditionViolation, "vector is required")
	}

	id := item.ID
	if id == "" {
		id = uuid.NewString()
	}

	if unique {
		for _, existing := range idx.update.Items {
			if existing.ID == id {
				return Item{}, vecerr.New(vecerr.PreconditionViolation, "item with id %s already exists", id)
			}
		}
	}

	var inline map[string]any
	var metadataFile string
	if len(item.Metadata) > 0 && len(idx.update.MetadataConfig.Indexed) > 0 {
		inline = make(map[string]any, len(idx.update.MetadataConfig.Indexed))
		for _, key := range idx.update.MetadataConfig.Indexed {
			if v, ok := item.Metadata[key]; ok {
				inline[key] = v
			}
		}
		metadataFile = uuid.NewString() + ".json"
		if err := writeJSONAtomic(filepath.Join(idx.folderPath, metadataFile), item.Metadata); err != nil {
			return Item{}, err
		}
	} else if len(item.Metadata) > 0 {
		inline = item.Metadata
	}
	if inline == nil {
		inline = map[string]any{}
	}

	newItem := Item{
		ID:           id,
		Metadata:     inline,
		Vector:       item.Vector,
		Norm:         itemselector.NormalizeFlat(item.Vector),
		MetadataFile: metadataFile,
	}

	if !unique {
		for i, existing := range idx.update.Items {
			if existing.ID == id {
				idx.update.Items[i] = newItem
				return newItem, nil
			}
		}
	}

	idx.update.Items = append(idx.update.Items, newItem)
	return newItem, nil
}

// Delete removes the item with the given id, if any, auto-wrapping a
// transaction if none is active.
func (idx *Index) Delete(id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	autoTxn := idx.update == nil
	if autoTxn {
		if err := idx.beginUpdateLocked(); err != nil {
			return err
		}
	}

	for i, item := range idx.update.Items {
		if item.ID == id {
			idx.update.Items = append(idx.update.Items[:i], idx.update.Items[i+1:]...)
			break
		}
	}

	if autoTxn {
		return idx.endUpdateLocked()
	}
	return nil
}

// GetItem returns a copy of the committed item with the given id, if any.
func (idx *Index) GetItem(id string) (*Item, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.loadIndexData(); err != nil {
		return nil, err
	}
	for _, item := range idx.data.Items {
		if item.ID == id {
			cloned := item.clone()
			return &cloned, nil
		}
	}
	return nil, nil
}

// ListItems returns a copy of all committed items; each item's metadata map
// and vector are copied too.
func (idx *Index) ListItems() ([]Item, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.loadIndexData(); err != nil {
		return nil, err
	}
	out := make([]Item, len(idx.data.Items))
	for i, it := range idx.data.Items {
		out[i] = it.clone()
	}
	return out, nil
}

// ListItemsByMetadata returns committed items passing filter, evaluated
// against each item's inline metadata (no sidecar reads).
func (idx *Index) ListItemsByMetadata(filter itemselector.Filter) ([]Item, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.loadIndexData(); err != nil {
		return nil, err
	}
	var out []Item
	for _, it := range idx.data.Items {
		if itemselector.Select(it.Metadata, filter) {
			out = append(out, it.clone())
		}
	}
	return out, nil
}

// QueryItems returns up to k {item, score} results sorted by cosine
// similarity descending, restoring any sidecar-spilled metadata on the
// returned copies only (the in-memory index is untouched).
func (idx *Index) QueryItems(vector []float64, k int, filter *itemselector.Filter) ([]QueryResult, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.loadIndexData(); err != nil {
		return nil, err
	}

	candidates := idx.data.Items
	if filter != nil {
		filtered := make([]Item, 0, len(candidates))
		for _, it := range candidates {
			if itemselector.Select(it.Metadata, *filter) {
				filtered = append(filtered, it)
			}
		}
		candidates = filtered
	}

	qn := itemselector.NormalizeFlat(vector)
	type scored struct {
		index int
		score float64
	}
	distances := make([]scored, len(candidates))
	for i, it := range candidates {
		distances[i] = scored{index: i, score: itemselector.NormalizedCosineSimilarity(vector, qn, it.Vector, it.Norm)}
	}
	sort.SliceStable(distances, func(a, b int) bool { return distances[a].score > distances[b].score })
	if k < len(distances) {
		distances = distances[:k]
	}

	results := make([]QueryResult, len(distances))
	for i, d := range distances {
		item := candidates[d.index].clone()
		if item.MetadataFile != "" {
			var full map[string]any
			if err := readJSON(filepath.Join(idx.folderPath, item.MetadataFile), &full); err != nil {
				return nil, err
			}
			item.Metadata = full
		}
		results[i] = QueryResult{Item: item, Score: d.score}
	}
	return results, nil
}

// GetIndexStats summarizes the committed index.
func (idx *Index) GetIndexStats() (Stats, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.loadIndexData(); err != nil {
		return Stats{}, err
	}
	return Stats{
		Version:        idx.data.Version,
		MetadataConfig: idx.data.MetadataConfig,
		Items:          len(idx.data.Items),
	}, nil
}
