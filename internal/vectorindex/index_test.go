package vectorindex

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectra-go/vectra/internal/itemselector"
	"github.com/vectra-go/vectra/internal/vecerr"
)

func mustFilter(t *testing.T, raw map[string]any) itemselector.Filter {
	t.Helper()
	f, err := itemselector.Parse(raw)
	require.NoError(t, err)
	return f
}

// VI01: create / insert / query — scenario 1 from §8.
func TestCreateInsertQuery(t *testing.T) {
	dir := t.TempDir()
	idx := New(dir)
	require.NoError(t, idx.CreateIndex(CreateConfig{Version: 1}))

	_, err := idx.Insert(InsertItem{ID: "a", Vector: []float64{1, 0, 0}, Metadata: map[string]any{"t": "x"}})
	require.NoError(t, err)
	_, err = idx.Insert(InsertItem{ID: "b", Vector: []float64{0, 1, 0}, Metadata: map[string]any{"t": "y"}})
	require.NoError(t, err)
	_, err = idx.Insert(InsertItem{ID: "c", Vector: []float64{1, 1, 0}, Metadata: map[string]any{"t": "x"}})
	require.NoError(t, err)

	results, err := idx.QueryItems([]float64{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Item.ID)
	assert.Equal(t, "c", results[1].Item.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.InDelta(t, math.Sqrt2/2, results[1].Score, 1e-9)

	filter := mustFilter(t, map[string]any{"t": "y"})
	filtered, err := idx.QueryItems([]float64{1, 0, 0}, 2, &filter)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "b", filtered[0].Item.ID)
}

// VI02: allow-listed metadata spill — scenario 2 from §8.
func TestAllowListedMetadataSpill(t *testing.T) {
	dir := t.TempDir()
	idx := New(dir)
	require.NoError(t, idx.CreateIndex(CreateConfig{
		Version:        1,
		MetadataConfig: MetadataConfig{Indexed: []string{"tag"}},
	}))

	item, err := idx.Insert(InsertItem{
		Vector:   []float64{1, 0},
		Metadata: map[string]any{"tag": "hot", "body": "secret"},
	})
	require.NoError(t, err)

	// Inline stored metadata is projected to the allow-list only.
	assert.Equal(t, map[string]any{"tag": "hot"}, item.Metadata)
	require.NotEmpty(t, item.MetadataFile)
	assert.FileExists(t, filepath.Join(dir, item.MetadataFile))

	results, err := idx.QueryItems([]float64{1, 0}, 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, map[string]any{"tag": "hot", "body": "secret"}, results[0].Item.Metadata)

	hot := mustFilter(t, map[string]any{"tag": "hot"})
	matches, err := idx.ListItemsByMetadata(hot)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	secret := mustFilter(t, map[string]any{"body": "secret"})
	noMatches, err := idx.ListItemsByMetadata(secret)
	require.NoError(t, err)
	assert.Empty(t, noMatches, "body is not indexed, so it is invisible to inline filtering")
}

// VI03: transaction rollback — scenario 3 from §8.
func TestCancelUpdateIsSideEffectFree(t *testing.T) {
	dir := t.TempDir()
	idx := New(dir)
	require.NoError(t, idx.CreateIndex(CreateConfig{Version: 1}))

	before, err := os.ReadFile(filepath.Join(dir, "index.json"))
	require.NoError(t, err)

	require.NoError(t, idx.BeginUpdate())
	_, err = idx.Insert(InsertItem{ID: "x", Vector: []float64{1, 2, 3}})
	require.NoError(t, err)
	idx.CancelUpdate()

	after, err := os.ReadFile(filepath.Join(dir, "index.json"))
	require.NoError(t, err)
	assert.Equal(t, before, after)

	reloaded := New(dir)
	item, err := reloaded.GetItem("x")
	require.NoError(t, err)
	assert.Nil(t, item)
}

// VI04: idempotence — upsertItem(x); upsertItem(x) equals a single upsertItem(x).
func TestUpsertIdempotence(t *testing.T) {
	dir := t.TempDir()
	idx := New(dir)
	require.NoError(t, idx.CreateIndex(CreateConfig{Version: 1}))

	item := InsertItem{ID: "x", Vector: []float64{1, 2, 3}, Metadata: map[string]any{"v": float64(1)}}
	_, err := idx.Upsert(item)
	require.NoError(t, err)
	_, err = idx.Upsert(item)
	require.NoError(t, err)

	all, err := idx.ListItems()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "x", all[0].ID)
}

// VI05: insert with a duplicate id fails; upsert of the same id replaces in place.
func TestInsertDuplicateFailsUpsertReplaces(t *testing.T) {
	dir := t.TempDir()
	idx := New(dir)
	require.NoError(t, idx.CreateIndex(CreateConfig{Version: 1}))

	_, err := idx.Insert(InsertItem{ID: "x", Vector: []float64{1, 0}})
	require.NoError(t, err)

	_, err = idx.Insert(InsertItem{ID: "x", Vector: []float64{0, 1}})
	require.Error(t, err)
	kind, ok := vecerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, vecerr.PreconditionViolation, kind)

	_, err = idx.Upsert(InsertItem{ID: "x", Vector: []float64{0, 1}})
	require.NoError(t, err)

	item, err := idx.GetItem("x")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, []float64{0, 1}, item.Vector)
}

// VI06: empty index — queryItems returns [], stats report items: 0.
func TestEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	idx := New(dir)
	require.NoError(t, idx.CreateIndex(CreateConfig{Version: 1}))

	results, err := idx.QueryItems([]float64{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	stats, err := idx.GetIndexStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Items)
}

// VI07: round-trip — create -> insert -> endUpdate -> new instance -> listItems.
func TestRoundTripAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	idx := New(dir)
	require.NoError(t, idx.CreateIndex(CreateConfig{Version: 1}))
	_, err := idx.Insert(InsertItem{ID: "a", Vector: []float64{3, 4}})
	require.NoError(t, err)

	reloaded := New(dir)
	items, err := reloaded.ListItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)
	assert.InDelta(t, 5.0, items[0].Norm, 1e-9)
}

// VI08: createIndex on an existing index without delete_if_exists fails.
func TestCreateIndex_ExistingWithoutDeleteFails(t *testing.T) {
	dir := t.TempDir()
	idx := New(dir)
	require.NoError(t, idx.CreateIndex(CreateConfig{Version: 1}))

	err := idx.CreateIndex(CreateConfig{Version: 1})
	require.Error(t, err)
	kind, ok := vecerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, vecerr.PreconditionViolation, kind)

	require.NoError(t, idx.CreateIndex(CreateConfig{Version: 2, DeleteIfExists: true}))
	stats, err := idx.GetIndexStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Version)
}

// VI09: queryItems on an index that was never created surfaces not-found.
func TestQueryItems_UncreatedIndexIsNotFound(t *testing.T) {
	dir := t.TempDir()
	idx := New(dir)

	_, err := idx.QueryItems([]float64{1}, 1, nil)
	require.Error(t, err)
	kind, ok := vecerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, vecerr.NotFound, kind)
}

