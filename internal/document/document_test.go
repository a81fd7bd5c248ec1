package document

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectra-go/vectra/internal/vectorindex"
)

// wordTokenizer is a minimal whitespace tokenizer for tests: each distinct
// word maps to a stable integer id.
type wordTokenizer struct {
	ids map[string]int
}

func newWordTokenizer() *wordTokenizer { return &wordTokenizer{ids: map[string]int{}} }

func (w *wordTokenizer) idFor(word string) int {
	if id, ok := w.ids[word]; ok {
		return id
	}
	id := len(w.ids) + 1
	w.ids[word] = id
	return id
}

func (w *wordTokenizer) Encode(text string) []int {
	words := strings.Fields(text)
	tokens := make([]int, len(words))
	for i, word := range words {
		tokens[i] = w.idFor(word)
	}
	return tokens
}

func (w *wordTokenizer) Decode(tokens []int) string {
	byID := make(map[int]string, len(w.ids))
	for word, id := range w.ids {
		byID[id] = word
	}
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = byID[t]
	}
	return strings.Join(words, " ")
}

// bagOfWordsEmbeddings deterministically embeds each input as a fixed-width
// bag-of-words vector over a small vocabulary, so cosine similarity between
// texts sharing more words is predictably higher.
type bagOfWordsEmbeddings struct {
	vocab map[string]int
	dim   int
}

func newBagOfWordsEmbeddings(vocab ...string) *bagOfWordsEmbeddings {
	index := make(map[string]int, len(vocab))
	for i, w := range vocab {
		index[w] = i
	}
	return &bagOfWordsEmbeddings{vocab: index, dim: len(vocab)}
}

func (e *bagOfWordsEmbeddings) MaxTokens() int { return 1000 }

func (e *bagOfWordsEmbeddings) CreateEmbeddings(_ context.Context, inputs []string) (EmbeddingsResult, error) {
	out := make([][]float64, len(inputs))
	for i, in := range inputs {
		vec := make([]float64, e.dim)
		for _, word := range strings.Fields(strings.ToLower(in)) {
			if idx, ok := e.vocab[word]; ok {
				vec[idx]++
			}
		}
		out[i] = vec
	}
	return EmbeddingsResult{Status: StatusSuccess, Output: out}, nil
}

func newTestIndex(t *testing.T, embeddings Embeddings) (*Index, string) {
	t.Helper()
	dir := t.TempDir()
	idx := New(Config{
		FolderPath: dir,
		Tokenizer:  newWordTokenizer(),
		Embeddings: embeddings,
		Chunking:   DefaultChunkingConfig(),
	})
	require.NoError(t, idx.CreateIndex(vectorindex.CreateConfig{Version: 1}))
	return idx, dir
}

// DC01: upsert then re-upsert the same uri replaces the document entirely.
func TestUpsertDocument_ReplacesOnSameURI(t *testing.T) {
	embeddings := newBagOfWordsEmbeddings("alpha", "beta", "gamma")
	idx, _ := newTestIndex(t, embeddings)
	ctx := context.Background()

	doc, err := idx.UpsertDocument(ctx, "doc://one", "alpha alpha alpha beta", "txt", map[string]any{"tag": "v1"})
	require.NoError(t, err)
	firstID := doc.ID()

	stats, err := idx.GetCatalogStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)

	doc2, err := idx.UpsertDocument(ctx, "doc://one", "gamma gamma gamma", "txt", map[string]any{"tag": "v2"})
	require.NoError(t, err)
	assert.NotEqual(t, firstID, doc2.ID())

	stats, err = idx.GetCatalogStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents, "re-upsert replaces, does not add a second document")

	id, ok, err := idx.GetDocumentID("doc://one")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, doc2.ID(), id)

	meta, err := doc2.LoadMetadata()
	require.NoError(t, err)
	assert.Equal(t, "v2", meta["tag"])
}

// DC02: deleting an unknown uri is a no-op, not an error.
func TestDeleteDocument_UnknownURIIsNoop(t *testing.T) {
	idx, _ := newTestIndex(t, newBagOfWordsEmbeddings("alpha"))
	require.NoError(t, idx.DeleteDocument(context.Background(), "doc://missing"))
}

// DC03: deleting a document removes its chunks, catalog entry, and files.
func TestDeleteDocument_RemovesChunksAndFiles(t *testing.T) {
	embeddings := newBagOfWordsEmbeddings("alpha", "beta")
	idx, dir := newTestIndex(t, embeddings)
	ctx := context.Background()

	doc, err := idx.UpsertDocument(ctx, "doc://one", "alpha beta", "txt", nil)
	require.NoError(t, err)

	require.NoError(t, idx.DeleteDocument(ctx, "doc://one"))

	_, ok, err := idx.GetDocumentID("doc://one")
	require.NoError(t, err)
	assert.False(t, ok)

	viStats, err := idx.vi.GetIndexStats()
	require.NoError(t, err)
	assert.Equal(t, 0, viStats.Items)

	assert.NoFileExists(t, doc.textPath())
	_ = dir
}

// DC04: QueryDocuments ranks documents by the mean score of their matching
// chunks and groups chunks from the same document together.
func TestQueryDocuments_RanksByMeanChunkScore(t *testing.T) {
	embeddings := newBagOfWordsEmbeddings("alpha", "beta", "gamma")
	idx, _ := newTestIndex(t, embeddings)
	ctx := context.Background()

	_, err := idx.UpsertDocument(ctx, "doc://alpha-heavy", "alpha alpha alpha alpha alpha alpha", "txt", nil)
	require.NoError(t, err)
	_, err = idx.UpsertDocument(ctx, "doc://gamma-heavy", "gamma gamma gamma gamma gamma gamma", "txt", nil)
	require.NoError(t, err)

	results, err := idx.QueryDocuments(ctx, "alpha alpha alpha", DefaultQueryOptions())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "doc://alpha-heavy", results[0].URI())
	assert.Greater(t, results[0].Score(), results[1].Score())
}

// DC05: RenderSections packs matching chunks into token-bounded, scored
// excerpts and respects maxSections.
func TestRenderSections_PacksAndScores(t *testing.T) {
	embeddings := newBagOfWordsEmbeddings("alpha", "beta", "gamma", "delta")
	idx, _ := newTestIndex(t, embeddings)
	ctx := context.Background()

	text := "alpha alpha alpha. beta beta beta. gamma gamma gamma. delta delta delta."
	_, err := idx.UpsertDocument(ctx, "doc://one", text, "txt", nil)
	require.NoError(t, err)

	opts := DefaultQueryOptions()
	results, err := idx.QueryDocuments(ctx, "alpha beta gamma delta", opts)
	require.NoError(t, err)
	require.Len(t, results, 1)

	sections, err := results[0].RenderSections(1000, 5, true)
	require.NoError(t, err)
	require.NotEmpty(t, sections)
	for _, s := range sections {
		assert.NotEmpty(t, s.Text)
		assert.LessOrEqual(t, s.TokenCount, 1000)
	}
}

// DC06: RenderAllSections covers the full document, split into
// maxTokens-bounded sections, without score-based truncation. Section text
// is decoded from tokens, so the sections are joined here with the single
// space the word tokenizer decodes between words.
func TestRenderAllSections_CoversFullDocument(t *testing.T) {
	embeddings := newBagOfWordsEmbeddings("alpha", "beta")
	idx, _ := newTestIndex(t, embeddings)
	ctx := context.Background()

	text := "alpha beta alpha beta alpha beta alpha beta"
	_, err := idx.UpsertDocument(ctx, "doc://one", text, "txt", nil)
	require.NoError(t, err)

	results, err := idx.QueryDocuments(ctx, "alpha", DefaultQueryOptions())
	require.NoError(t, err)
	require.Len(t, results, 1)

	sections, err := results[0].RenderAllSections(4)
	require.NoError(t, err)
	require.NotEmpty(t, sections)

	texts := make([]string, len(sections))
	for i, s := range sections {
		texts[i] = s.Text
	}
	assert.Equal(t, text, strings.Join(texts, " "))
}
