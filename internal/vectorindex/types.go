// Package vectorindex implements the persistent vector store: item
// storage and atomic persistence to index.json, the beginUpdate/insert/
// upsert/delete/endUpdate/cancelUpdate transaction protocol, metadata
// allow-list projection with sidecar spill files, and exact top-K cosine
// search under a metadata filter.
package vectorindex

// MetadataConfig holds the allow-list of metadata keys kept inline per
// item; when non-empty, any metadata outside this set is spilled to a
// sidecar file instead of being stored in index.json.
type MetadataConfig struct {
	Indexed []string `json:"indexed,omitempty"`
}

// Item is a single persisted (id, vector, norm, metadata) record, plus an
// optional pointer to a sidecar file holding the full metadata when the
// allow-list projected it down for inline storage.
type Item struct {
	ID           string         `json:"id"`
	Metadata     map[string]any `json:"metadata"`
	Vector       []float64      `json:"vector"`
	Norm         float64        `json:"norm"`
	MetadataFile string         `json:"metadataFile,omitempty"`
}

// Data is the full contents of index.json.
type Data struct {
	Version        int            `json:"version"`
	MetadataConfig MetadataConfig `json:"metadata_config"`
	Items          []Item         `json:"items"`
}

func (d *Data) clone() *Data {
	if d == nil {
		return nil
	}
	items := make([]Item, len(d.Items))
	for i, it := range d.Items {
		items[i] = it.clone()
	}
	return &Data{Version: d.Version, MetadataConfig: d.MetadataConfig, Items: items}
}

func (it Item) clone() Item {
	meta := make(map[string]any, len(it.Metadata))
	for k, v := range it.Metadata {
		meta[k] = v
	}
	vec := make([]float64, len(it.Vector))
	copy(vec, it.Vector)
	it.Metadata = meta
	it.Vector = vec
	return it
}

// CreateConfig parameterizes CreateIndex.
type CreateConfig struct {
	Version        int
	DeleteIfExists bool
	MetadataConfig MetadataConfig
}

// InsertItem is the caller-supplied shape for Insert/Upsert: an optional
// id, a required vector, and optional metadata.
type InsertItem struct {
	ID       string
	Vector   []float64
	Metadata map[string]any
}

// QueryResult pairs a returned item (with sidecar metadata restored, if
// any) with its cosine similarity score.
type QueryResult struct {
	Item  Item
	Score float64
}

// Stats summarizes the committed index state.
type Stats struct {
	Version        int
	MetadataConfig MetadataConfig
	Items          int
}

// state is the VectorIndex lifecycle state machine from Design Note §9:
// Unloaded -> Loaded via load, Loaded -> Updating via beginUpdate,
// Updating -> Loaded via endUpdate/cancelUpdate.
type state int

const (
	stateUnloaded state = iota
	stateLoaded
	stateUpdating
)
