// Package embeddings provides reference implementations of the
// document.Embeddings collaborator interface: a deterministic hashing
// embedder for tests and offline use, and an LRU-caching decorator for any
// embedder.
package embeddings

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/vectra-go/vectra/internal/document"
)

// HashingEmbedder produces deterministic, fixed-width bag-of-tokens
// vectors by hashing each whitespace token into a bucket. It has no
// external dependency, making it suitable for tests and for environments
// without network access to a real embeddings provider.
type HashingEmbedder struct {
	dimensions int
	maxTokens  int
}

// New returns a HashingEmbedder with the given vector width. maxTokens is
// the per-batch token budget reported by MaxTokens, which callers use to
// size their batches (normally taken from config.EmbeddingsConfig);
// CreateEmbeddings itself does not enforce it.
func New(dimensions, maxTokens int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = 256
	}
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &HashingEmbedder{dimensions: dimensions, maxTokens: maxTokens}
}

// MaxTokens implements document.Embeddings.
func (e *HashingEmbedder) MaxTokens() int { return e.maxTokens }

// CreateEmbeddings implements document.Embeddings.
func (e *HashingEmbedder) CreateEmbeddings(_ context.Context, inputs []string) (document.EmbeddingsResult, error) {
	out := make([][]float64, len(inputs))
	for i, input := range inputs {
		out[i] = e.embed(input)
	}
	return document.EmbeddingsResult{Status: document.StatusSuccess, Output: out}, nil
}

func (e *HashingEmbedder) embed(text string) []float64 {
	vec := make([]float64, e.dimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[int(h.Sum32())%e.dimensions]++
	}
	return vec
}
