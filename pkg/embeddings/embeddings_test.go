package embeddings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectra-go/vectra/internal/document"
)

// countingEmbedder records how many CreateEmbeddings calls reach it.
type countingEmbedder struct {
	*HashingEmbedder
	calls int
}

func (c *countingEmbedder) CreateEmbeddings(ctx context.Context, inputs []string) (document.EmbeddingsResult, error) {
	c.calls++
	return c.HashingEmbedder.CreateEmbeddings(ctx, inputs)
}

// EM01: the same text always hashes to the same vector.
func TestHashingEmbedder_Deterministic(t *testing.T) {
	e := New(64, 100)
	r1, err := e.CreateEmbeddings(context.Background(), []string{"hello world"})
	require.NoError(t, err)
	r2, err := e.CreateEmbeddings(context.Background(), []string{"hello world"})
	require.NoError(t, err)
	assert.Equal(t, r1.Output[0], r2.Output[0])
}

// EM02: repeated text is served from cache without a second provider call.
func TestCachedEmbedder_ServesFromCache(t *testing.T) {
	inner := &countingEmbedder{HashingEmbedder: New(32, 100)}
	cached := NewCached(inner, 10)

	r1, err := cached.CreateEmbeddings(context.Background(), []string{"alpha beta"})
	require.NoError(t, err)

	r2, err := cached.CreateEmbeddings(context.Background(), []string{"alpha beta"})
	require.NoError(t, err)

	assert.Equal(t, r1.Output[0], r2.Output[0])
	assert.Equal(t, 1, inner.calls)
}

// EM03: a batch mixing cached and uncached texts returns results in
// original order.
func TestCachedEmbedder_MixedBatchPreservesOrder(t *testing.T) {
	inner := New(32, 100)
	cached := NewCached(inner, 10)

	_, err := cached.CreateEmbeddings(context.Background(), []string{"first"})
	require.NoError(t, err)

	batch, err := cached.CreateEmbeddings(context.Background(), []string{"first", "second", "first"})
	require.NoError(t, err)
	require.Len(t, batch.Output, 3)
	assert.Equal(t, batch.Output[0], batch.Output[2])
	assert.NotEqual(t, batch.Output[0], batch.Output[1])
}
