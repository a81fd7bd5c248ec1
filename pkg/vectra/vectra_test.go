package vectra

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectra-go/vectra/pkg/embeddings"
	"github.com/vectra-go/vectra/pkg/tokenizer"
)

// VX01: end-to-end create/upsert/query through the public API.
func TestIndex_UpsertAndQuery(t *testing.T) {
	dir := t.TempDir()
	idx, err := Open(dir,
		WithTokenizer(tokenizer.New()),
		WithEmbeddings(embeddings.New(64, 1000)),
		WithoutLock(),
	)
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.CreateIndex(1, false, MetadataConfig{}))

	ctx := context.Background()
	_, err = idx.Upsert(ctx, "doc://a", "alpha alpha alpha beta", "txt", map[string]any{"tag": "x"})
	require.NoError(t, err)

	results, err := idx.Query(ctx, "alpha", DefaultQueryOptions())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc://a", results[0].URI())
}

// VX02: WithoutLock avoids touching the lock file.
func TestOpen_WithoutLockSkipsLockFile(t *testing.T) {
	dir := t.TempDir()
	idx, err := Open(dir, WithoutLock())
	require.NoError(t, err)
	defer idx.Close()
	require.NoError(t, idx.CreateIndex(1, false, MetadataConfig{}))
	assert.NoFileExists(t, dir+"/.vectra.lock")
}
