// Package textsplitter implements the recursive, language-aware chunker:
// it cuts a document's text into contiguous, token-bounded TextChunk spans
// along a doc_type-specific separator hierarchy (see separators.go), merges
// adjacent small chunks back together, and decorates each chunk with the
// token-level overlap of its neighbors (none before the first chunk, none
// after the last).
package textsplitter

import (
	"fmt"
	"strings"
)

// alphanumeric is the character set a candidate chunk must contain at
// least one of to be kept; chunks made up solely of whitespace/punctuation
// are dropped.
const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Tokenizer is the collaborator interface the splitter (and, downstream,
// the section renderer) consumes — not implemented in this package. See
// pkg/tokenizer for reference implementations.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// TextChunk is a single contiguous span of the input with its token
// sequence and the overlap token runs borrowed from its neighbors.
type TextChunk struct {
	Text         string
	Tokens       []int
	StartPos     int
	EndPos       int
	StartOverlap []int
	EndOverlap   []int
}

// Config governs one Split invocation.
type Config struct {
	Separators     []string // resolved from DocType via GetSeparators if empty
	KeepSeparators bool
	ChunkSize      int
	ChunkOverlap   int
	Tokenizer      Tokenizer
	DocType        string
}

// Splitter applies Config to produce TextChunks from input text.
type Splitter struct {
	cfg Config
}

// New validates cfg (defaulting Separators from DocType when unset) and
// returns a ready Splitter.
func New(cfg Config) (*Splitter, error) {
	if cfg.Tokenizer == nil {
		return nil, fmt.Errorf("textsplitter: tokenizer is required")
	}
	if len(cfg.Separators) == 0 {
		cfg.Separators = GetSeparators(cfg.DocType)
	}
	if cfg.ChunkSize < 1 {
		return nil, fmt.Errorf("textsplitter: chunk_size must be >= 1")
	}
	if cfg.ChunkOverlap < 0 {
		return nil, fmt.Errorf("textsplitter: chunk_overlap must be >= 0")
	}
	if cfg.ChunkOverlap > cfg.ChunkSize {
		return nil, fmt.Errorf("textsplitter: chunk_overlap must be <= chunk_size")
	}
	return &Splitter{cfg: cfg}, nil
}

// Split produces the final, overlap-decorated chunk sequence for text.
func (s *Splitter) Split(text string) []TextChunk {
	chunks := s.recursiveSplit(text, s.cfg.Separators, 0)
	if s.cfg.ChunkOverlap > 0 {
		for i := range chunks {
			if i > 0 {
				prev := chunks[i-1]
				chunks[i].StartOverlap = tailTokens(prev.Tokens, s.cfg.ChunkOverlap)
			}
			if i < len(chunks)-1 {
				next := chunks[i+1]
				chunks[i].EndOverlap = headTokens(next.Tokens, s.cfg.ChunkOverlap)
			}
		}
	}
	return chunks
}

func tailTokens(tokens []int, n int) []int {
	if len(tokens) < n {
		n = len(tokens)
	}
	out := make([]int, n)
	copy(out, tokens[len(tokens)-n:])
	return out
}

func headTokens(tokens []int, n int) []int {
	if len(tokens) < n {
		n = len(tokens)
	}
	out := make([]int, n)
	copy(out, tokens[:n])
	return out
}

// recursiveSplit implements §4.3 step 1: split text on the first
// separator, recurse into oversized or over-token parts with the
// remaining separators (or a half-cut once separators run out), and emit
// a TextChunk for every part that fits. Each level combines its own
// output before returning, matching the source's behavior of combining at
// every recursion depth.
func (s *Splitter) recursiveSplit(text string, separators []string, startPos int) []TextChunk {
	var chunks []TextChunk
	if len(text) == 0 {
		return combineChunks(chunks, s.cfg.ChunkSize, s.cfg.KeepSeparators)
	}

	var parts []string
	separator := ""
	var nextSeparators []string
	if len(separators) > 1 {
		nextSeparators = separators[1:]
	}
	if len(separators) > 0 {
		separator = separators[0]
		parts = strings.Split(text, separator)
	} else {
		half := len(text) / 2
		parts = []string{text[:half], text[half:]}
	}

	pos := startPos
	for i, part := range parts {
		lastPart := i == len(parts)-1
		chunkText := part
		endPos := pos + (len(part) - 1)
		if !lastPart {
			endPos += len(separator)
		}
		if s.cfg.KeepSeparators && !lastPart {
			chunkText += separator
		}

		if containsAlphanumeric(chunkText) {
			if float64(len(chunkText))/6.0 > float64(s.cfg.ChunkSize) {
				chunks = append(chunks, s.recursiveSplit(chunkText, nextSeparators, pos)...)
			} else {
				tokens := s.cfg.Tokenizer.Encode(chunkText)
				if len(tokens) > s.cfg.ChunkSize {
					chunks = append(chunks, s.recursiveSplit(chunkText, nextSeparators, pos)...)
				} else {
					chunks = append(chunks, TextChunk{
						Text:     chunkText,
						Tokens:   tokens,
						StartPos: pos,
						EndPos:   endPos,
					})
				}
			}
		}
		pos = endPos + 1
	}

	return combineChunks(chunks, s.cfg.ChunkSize, s.cfg.KeepSeparators)
}

// combineChunks merges adjacent chunks left to right while the combined
// token count stays within chunkSize (§4.3 step 2). The merged chunk's
// EndPos is extended to the absorbed chunk's EndPos. With keepSeparators a
// chunk's span covers exactly the text its Text field holds; without it the
// span also covers the separators that Text leaves out.
func combineChunks(chunks []TextChunk, chunkSize int, keepSeparators bool) []TextChunk {
	if len(chunks) == 0 {
		return chunks
	}
	joiner := " "
	if keepSeparators {
		joiner = ""
	}

	var combined []TextChunk
	current := chunks[0]
	for _, next := range chunks[1:] {
		if len(current.Tokens)+len(next.Tokens) > chunkSize {
			combined = append(combined, current)
			current = next
			continue
		}
		current.Text += joiner + next.Text
		current.Tokens = append(append([]int{}, current.Tokens...), next.Tokens...)
		current.EndPos = next.EndPos
	}
	combined = append(combined, current)
	return combined
}

func containsAlphanumeric(text string) bool {
	return strings.ContainsAny(text, alphanumeric)
}
