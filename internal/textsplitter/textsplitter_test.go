package textsplitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// charTokenizer encodes text as one token per byte, so chunk_size directly
// bounds chunk length in characters — the simplest possible deterministic
// tokenizer for exercising the splitter's packing logic.
type charTokenizer struct{}

func (charTokenizer) Encode(text string) []int {
	tokens := make([]int, len(text))
	for i, b := range []byte(text) {
		tokens[i] = int(b)
	}
	return tokens
}

func (charTokenizer) Decode(tokens []int) string {
	bs := make([]byte, len(tokens))
	for i, t := range tokens {
		bs[i] = byte(t)
	}
	return string(bs)
}

// TS01: GetSeparators resolves known doc types, aliases, and the default.
func TestGetSeparators(t *testing.T) {
	assert.Equal(t, separatorTable["go"], GetSeparators("go"))
	assert.Equal(t, separatorTable["csharp"], GetSeparators("c#"))
	assert.Equal(t, separatorTable["csharp"], GetSeparators("cs"))
	assert.Equal(t, separatorTable["javascript"], GetSeparators("js"))
	assert.Equal(t, defaultSeparators, GetSeparators("totally-unknown"))
}

// TS02: Split produces contiguous chunks whose spans reconstruct the input.
func TestSplit_ContiguousSpans(t *testing.T) {
	// Given: a splitter with a small chunk size and space separator only,
	// keeping separators so each chunk's Text is exactly its span
	s, err := New(Config{
		Separators:     []string{" "},
		KeepSeparators: true,
		ChunkSize:      8,
		Tokenizer:      charTokenizer{},
	})
	require.NoError(t, err)

	text := "the quick brown fox jumps over the lazy dog"

	// When: splitting
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)

	// Then: every chunk's token count is within budget
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Tokens), 8)
		assert.Equal(t, text[c.StartPos:c.EndPos+1], c.Text, "span must match reported text")
	}
}

// TS03: chunk_overlap == 0 leaves every chunk's overlap fields empty (§8 boundary).
func TestSplit_NoOverlapWhenZero(t *testing.T) {
	s, err := New(Config{
		Separators:   []string{" "},
		ChunkSize:    4,
		ChunkOverlap: 0,
		Tokenizer:    charTokenizer{},
	})
	require.NoError(t, err)

	chunks := s.Split("aa bb cc dd ee ff")
	for _, c := range chunks {
		assert.Empty(t, c.StartOverlap)
		assert.Empty(t, c.EndOverlap)
	}
}

// TS04: with overlap > 0, interior chunks borrow tail/head tokens from neighbors.
func TestSplit_OverlapDecoratesInteriorChunks(t *testing.T) {
	s, err := New(Config{
		Separators:   []string{" "},
		ChunkSize:    4,
		ChunkOverlap: 2,
		Tokenizer:    charTokenizer{},
	})
	require.NoError(t, err)

	chunks := s.Split("aaaa bbbb cccc dddd")
	require.GreaterOrEqual(t, len(chunks), 3)

	// The first chunk never borrows a start overlap (no predecessor).
	assert.Empty(t, chunks[0].StartOverlap)
	// The last chunk never borrows an end overlap (no successor).
	assert.Empty(t, chunks[len(chunks)-1].EndOverlap)
	// An interior chunk borrows exactly chunk_overlap tokens from each side.
	mid := chunks[1]
	assert.Len(t, mid.StartOverlap, 2)
	assert.Len(t, mid.EndOverlap, 2)
}

// TS05: chunks with no alphanumeric content are dropped.
func TestSplit_DropsNonAlphanumericParts(t *testing.T) {
	s, err := New(Config{
		Separators: []string{" "},
		ChunkSize:  100,
		Tokenizer:  charTokenizer{},
	})
	require.NoError(t, err)

	chunks := s.Split("hello *** world")
	joined := ""
	for _, c := range chunks {
		joined += c.Text
	}
	assert.NotContains(t, joined, "***")
}

// TS06: falls back to a half-split once separators are exhausted, for a
// single over-sized token-dense run with no separators at all.
func TestSplit_HalfSplitFallback(t *testing.T) {
	s, err := New(Config{
		Separators: []string{},
		ChunkSize:  4,
		Tokenizer:  charTokenizer{},
	})
	require.NoError(t, err)

	chunks := s.Split(strings.Repeat("x", 16))
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Tokens), 4)
	}
}

// TS07: invalid configs are rejected at construction.
func TestNew_ValidatesConfig(t *testing.T) {
	_, err := New(Config{ChunkSize: 0, Tokenizer: charTokenizer{}})
	assert.Error(t, err)

	_, err = New(Config{ChunkSize: 10, ChunkOverlap: -1, Tokenizer: charTokenizer{}})
	assert.Error(t, err)

	_, err = New(Config{ChunkSize: 10, ChunkOverlap: 11, Tokenizer: charTokenizer{}})
	assert.Error(t, err)

	_, err = New(Config{ChunkSize: 10})
	assert.Error(t, err, "tokenizer is required")
}
