package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vectra-go/vectra/internal/document"
)

// DefaultCacheSize matches config.EmbeddingsConfig's default.
const DefaultCacheSize = 1000

// CachedEmbedder wraps a document.Embeddings provider with an LRU cache
// keyed by text content, avoiding redundant provider calls for repeated
// chunks (common across re-upserts of near-duplicate documents) or
// repeated queries.
type CachedEmbedder struct {
	inner document.Embeddings
	cache *lru.Cache[string, []float64]
}

// NewCached wraps inner with an LRU cache of the given size (defaulting
// to DefaultCacheSize when size <= 0).
func NewCached(inner document.Embeddings, size int) *CachedEmbedder {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, []float64](size)
	return &CachedEmbedder{inner: inner, cache: cache}
}

// MaxTokens implements document.Embeddings.
func (c *CachedEmbedder) MaxTokens() int { return c.inner.MaxTokens() }

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// CreateEmbeddings implements document.Embeddings, serving cached vectors
// where available and only forwarding cache misses to inner.
func (c *CachedEmbedder) CreateEmbeddings(ctx context.Context, inputs []string) (document.EmbeddingsResult, error) {
	results := make([][]float64, len(inputs))
	var missIndices []int
	var missInputs []string

	for i, text := range inputs {
		if vec, ok := c.cache.Get(cacheKey(text)); ok {
			results[i] = vec
			continue
		}
		missIndices = append(missIndices, i)
		missInputs = append(missInputs, text)
	}

	if len(missInputs) == 0 {
		return document.EmbeddingsResult{Status: document.StatusSuccess, Output: results}, nil
	}

	missed, err := c.inner.CreateEmbeddings(ctx, missInputs)
	if err != nil {
		return document.EmbeddingsResult{}, err
	}
	if missed.Status != document.StatusSuccess {
		return missed, nil
	}

	for j, idx := range missIndices {
		results[idx] = missed.Output[j]
		c.cache.Add(cacheKey(missInputs[j]), missed.Output[j])
	}
	return document.EmbeddingsResult{Status: document.StatusSuccess, Output: results}, nil
}
