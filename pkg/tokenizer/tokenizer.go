// Package tokenizer provides reference implementations of the
// textsplitter.Tokenizer collaborator interface.
package tokenizer

import "strings"

// WhitespaceTokenizer encodes text as one token id per whitespace-delimited
// word, assigning ids on first sight and decoding back to the original
// words joined by single spaces. It has no external dependency, making it
// suitable for tests and for doc_types where a real subword tokenizer
// isn't warranted.
type WhitespaceTokenizer struct {
	idOf   map[string]int
	wordOf []string
}

// New returns an empty WhitespaceTokenizer. Vocabulary grows as Encode
// sees new words; it is not safe for concurrent use.
func New() *WhitespaceTokenizer {
	return &WhitespaceTokenizer{idOf: map[string]int{}}
}

// Encode implements textsplitter.Tokenizer.
func (w *WhitespaceTokenizer) Encode(text string) []int {
	words := strings.Fields(text)
	tokens := make([]int, len(words))
	for i, word := range words {
		tokens[i] = w.idFor(word)
	}
	return tokens
}

func (w *WhitespaceTokenizer) idFor(word string) int {
	if id, ok := w.idOf[word]; ok {
		return id
	}
	id := len(w.wordOf)
	w.idOf[word] = id
	w.wordOf = append(w.wordOf, word)
	return id
}

// Decode implements textsplitter.Tokenizer. Unknown ids are skipped.
func (w *WhitespaceTokenizer) Decode(tokens []int) string {
	words := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t >= 0 && t < len(w.wordOf) {
			words = append(words, w.wordOf[t])
		}
	}
	return strings.Join(words, " ")
}
