package document

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vectra-go/vectra/internal/textsplitter"
	"github.com/vectra-go/vectra/internal/vectorindex"
)

// overlapConnector is spliced between two chunks folded into the same
// section whose spans don't touch, when RenderSections is asked for
// overlapping chunks.
const overlapConnector = "\n\n...\n\n"

// adjacentTextMinBudget is the minimum leftover token budget a section
// needs before it's padded with surrounding document text.
const adjacentTextMinBudget = 40

// matchedChunk is one chunk matched by a query, in the order QueryItems
// returned it (score descending) — unhydrated, just its span and score.
type matchedChunk struct {
	StartPos int
	EndPos   int
	Score    float64
}

// sectionChunk is a matched chunk (or a synthetic connector/padding chunk,
// marked by StartPos/EndPos of -1) once its text and token count are known.
type sectionChunk struct {
	Text     string
	Tokens   int
	StartPos int
	EndPos   int
	Score    float64
}

// Section is one rendered, token-bounded excerpt of a document.
type Section struct {
	Text       string
	TokenCount int
	Score      float64
}

// assembledSection is a Section still under construction: its chunks stay
// separate so combine/overlap/padding can still operate on them before the
// final text is joined.
type assembledSection struct {
	chunks     []sectionChunk
	tokenCount int
	score      float64
}

// Result groups a document's top-matching chunks (from one query) behind
// its uri/documentId, ready for section rendering.
type Result struct {
	folderPath string
	documentID string
	uri        string
	tokenizer  textsplitter.Tokenizer
	chunks     []matchedChunk // query order: score descending
	meanScore  float64
}

func newResult(folderPath, documentID, uri string, results []vectorindex.QueryResult, tokenizer textsplitter.Tokenizer) *Result {
	chunks := make([]matchedChunk, 0, len(results))
	var scoreSum float64
	for _, r := range results {
		chunks = append(chunks, matchedChunk{
			StartPos: intFromMetadata(r.Item.Metadata["start_pos"]),
			EndPos:   intFromMetadata(r.Item.Metadata["end_pos"]),
			Score:    r.Score,
		})
		scoreSum += r.Score
	}
	var mean float64
	if len(chunks) > 0 {
		mean = scoreSum / float64(len(chunks))
	}
	return &Result{
		folderPath: folderPath,
		documentID: documentID,
		uri:        uri,
		tokenizer:  tokenizer,
		chunks:     chunks,
		meanScore:  mean,
	}
}

func intFromMetadata(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

// DocumentID returns the matched document's identifier.
func (r *Result) DocumentID() string { return r.documentID }

// URI returns the matched document's source uri.
func (r *Result) URI() string { return r.uri }

// Score returns the mean similarity score across the document's matching
// chunks.
func (r *Result) Score() float64 { return r.meanScore }

func sortResultsByScoreDesc(results []*Result) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].meanScore > results[j].meanScore })
}

func (r *Result) loadText() (string, error) {
	raw, err := os.ReadFile(filepath.Join(r.folderPath, r.documentID+".txt"))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// span returns text[start:end+1], clamped to text's bounds.
func span(text string, start, end int) string {
	if start < 0 {
		start = 0
	}
	last := end + 1
	if last > len(text) {
		last = len(text)
	}
	if start > last {
		start = last
	}
	return text[start:last]
}

func joinChunkText(chunks []sectionChunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
	}
	return b.String()
}

func sumTokens(chunks []sectionChunk) int {
	total := 0
	for _, c := range chunks {
		total += c.Tokens
	}
	return total
}

// splitChunks turns every matched chunk into one or more maxTokens-bounded
// pieces — a chunk longer than maxTokens is cut into consecutive pieces —
// for RenderAllSections' full-coverage view.
func (r *Result) splitChunks(text string, maxTokens int) []sectionChunk {
	var out []sectionChunk
	for _, c := range r.chunks {
		tokens := r.tokenizer.Encode(span(text, c.StartPos, c.EndPos))
		offset := 0
		for offset < len(tokens) {
			length := maxTokens
			if len(tokens)-offset < length {
				length = len(tokens) - offset
			}
			out = append(out, sectionChunk{
				Text:     r.tokenizer.Decode(tokens[offset : offset+length]),
				StartPos: c.StartPos + offset,
				EndPos:   c.StartPos + offset + length - 1,
				Score:    c.Score,
				Tokens:   length,
			})
			offset += length
		}
	}
	return out
}

// assembleSections greedily packs chunks (already in position order) into
// contiguous maxTokens-bounded sections. A section's score is fixed here,
// as the mean of the scores of the chunks folded into it — later stages
// (combine/overlap/padding) only reshape a section's text, not its score.
func assembleSections(chunks []sectionChunk, maxTokens int) []assembledSection {
	var sections []assembledSection
	var current []sectionChunk
	tokenCount := 0
	scoreSum := 0.0

	flush := func() {
		if len(current) == 0 {
			return
		}
		sections = append(sections, assembledSection{
			chunks:     current,
			tokenCount: tokenCount,
			score:      scoreSum / float64(len(current)),
		})
		current = nil
		tokenCount = 0
		scoreSum = 0
	}

	for _, c := range chunks {
		if len(current) > 0 && tokenCount+c.Tokens > maxTokens {
			flush()
		}
		current = append(current, c)
		tokenCount += c.Tokens
		scoreSum += c.Score
	}
	flush()
	return sections
}

// combineAdjacentChunks merges a section's consecutive chunks whose spans
// touch (chunk[i].EndPos+1 == chunk[i+1].StartPos) into one. The surviving
// chunk keeps its own score; this only reshapes text, the section's score
// was already fixed by assembleSections.
func combineAdjacentChunks(chunks []sectionChunk) []sectionChunk {
	if len(chunks) == 0 {
		return chunks
	}
	out := append([]sectionChunk(nil), chunks...)
	i := 0
	for i < len(out)-1 {
		if out[i].EndPos+1 == out[i+1].StartPos {
			out[i].Text += out[i+1].Text
			out[i].EndPos = out[i+1].EndPos
			out[i].Tokens += out[i+1].Tokens
			out = append(out[:i+1], out[i+2:]...)
			continue
		}
		i++
	}
	return out
}

// insertOverlapConnectors splices an overlapConnector chunk between every
// pair of a section's chunks, so RenderSections renders a visible break
// between chunks pulled from different parts of the document.
func insertOverlapConnectors(chunks []sectionChunk, tokenizer textsplitter.Tokenizer) []sectionChunk {
	if len(chunks) <= 1 {
		return chunks
	}
	connectorTokens := len(tokenizer.Encode(overlapConnector))
	out := make([]sectionChunk, 0, len(chunks)*2-1)
	for i, c := range chunks {
		if i > 0 {
			out = append(out, sectionChunk{
				Text:     overlapConnector,
				Tokens:   connectorTokens,
				StartPos: -1,
				EndPos:   -1,
			})
		}
		out = append(out, c)
	}
	return out
}

// addAdjacentText expands a section with the document text immediately
// before and after it, splitting the leftover token budget between the
// two sides.
func addAdjacentText(sec *assembledSection, text string, budget int, tokenizer textsplitter.Tokenizer) {
	sectionStart := sec.chunks[0].StartPos
	sectionEnd := sec.chunks[len(sec.chunks)-1].EndPos

	if sectionStart > 0 {
		beforeTokens := tokenizer.Encode(text[:sectionStart])
		beforeBudget := budget / 2
		if beforeBudget > len(beforeTokens) {
			beforeBudget = len(beforeTokens)
		}
		prefix := sectionChunk{
			Text:     tokenizer.Decode(beforeTokens[len(beforeTokens)-beforeBudget:]),
			StartPos: sectionStart - beforeBudget,
			EndPos:   sectionStart - 1,
			Tokens:   beforeBudget,
		}
		sec.chunks = append([]sectionChunk{prefix}, sec.chunks...)
		sec.tokenCount += beforeBudget
		budget -= beforeBudget
	}

	if sectionEnd < len(text)-1 && budget > 0 {
		afterTokens := tokenizer.Encode(text[sectionEnd+1:])
		afterBudget := budget
		if afterBudget > len(afterTokens) {
			afterBudget = len(afterTokens)
		}
		suffix := sectionChunk{
			Text:     tokenizer.Decode(afterTokens[:afterBudget]),
			StartPos: sectionEnd + 1,
			EndPos:   sectionEnd + afterBudget,
			Tokens:   afterBudget,
		}
		sec.chunks = append(sec.chunks, suffix)
		sec.tokenCount += afterBudget
	}
}

// RenderAllSections packs every matching chunk, in document order, into as
// many maxTokens-bounded sections as needed. All chunks are covered; no
// score-based selection, combination, or adjacent-text expansion is
// applied.
func (r *Result) RenderAllSections(maxTokens int) ([]Section, error) {
	text, err := r.loadText()
	if err != nil {
		return nil, err
	}
	chunks := r.splitChunks(text, maxTokens)
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].StartPos < chunks[j].StartPos })

	assembled := assembleSections(chunks, maxTokens)
	out := make([]Section, len(assembled))
	for i, a := range assembled {
		out[i] = Section{Text: joinChunkText(a.chunks), TokenCount: a.tokenCount, Score: a.score}
	}
	return out, nil
}

// RenderSections implements the scored excerpt view: if the whole document
// already fits in maxTokens it's returned as a single section; otherwise
// chunks too large to fit on their own are dropped, the rest are packed
// into maxTokens-bounded sections, only the maxSections highest-scoring
// ones are kept, adjacent chunks within a kept section are merged,
// non-adjacent ones are optionally stitched together with overlapConnector,
// and each section is padded with surrounding document text up to its
// token budget. If no chunk fits at all, the single best-scoring match is
// truncated to maxTokens instead.
func (r *Result) RenderSections(maxTokens, maxSections int, overlappingChunks bool) ([]Section, error) {
	text, err := r.loadText()
	if err != nil {
		return nil, err
	}
	if length := estimateLength(text, r.tokenizer); length <= maxTokens {
		return []Section{{Text: text, TokenCount: length, Score: 1.0}}, nil
	}

	var candidates []sectionChunk
	for _, c := range r.chunks {
		chunkText := span(text, c.StartPos, c.EndPos)
		tokens := r.tokenizer.Encode(chunkText)
		if len(tokens) > maxTokens {
			continue
		}
		candidates = append(candidates, sectionChunk{
			Text:     chunkText,
			StartPos: c.StartPos,
			EndPos:   c.EndPos,
			Score:    c.Score,
			Tokens:   len(tokens),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].StartPos < candidates[j].StartPos })

	if len(candidates) == 0 {
		top := r.chunks[0]
		tokens := r.tokenizer.Encode(span(text, top.StartPos, top.EndPos))
		if len(tokens) > maxTokens {
			tokens = tokens[:maxTokens]
		}
		return []Section{{Text: r.tokenizer.Decode(tokens), TokenCount: maxTokens, Score: top.Score}}, nil
	}

	sections := assembleSections(candidates, maxTokens)
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].score > sections[j].score })
	if len(sections) > maxSections {
		sections = sections[:maxSections]
	}

	out := make([]Section, len(sections))
	for i, sec := range sections {
		sec.chunks = combineAdjacentChunks(sec.chunks)
		if overlappingChunks {
			sec.chunks = insertOverlapConnectors(sec.chunks, r.tokenizer)
			sec.tokenCount = sumTokens(sec.chunks)
		}
		if budget := maxTokens - sec.tokenCount; budget > adjacentTextMinBudget {
			addAdjacentText(&sec, text, budget, r.tokenizer)
		}
		out[i] = Section{Text: joinChunkText(sec.chunks), TokenCount: sec.tokenCount, Score: sec.score}
	}
	return out, nil
}
