package document

import (
	"os"
	"path/filepath"

	"github.com/vectra-go/vectra/internal/textsplitter"
	"github.com/vectra-go/vectra/internal/vecerr"
)

// lengthEstimateDivisor estimates token count for very long documents without
// paying the cost of a full tokenizer pass, matching the source's
// 40000-character threshold and length/4 approximation.
const (
	lengthEstimateThreshold = 40000
	lengthEstimateDivisor   = 4
)

// Document is a handle onto one uploaded document's backing files:
// <folderPath>/<id>.txt holds its text, <folderPath>/<id>.json (if
// present) its caller-supplied metadata.
type Document struct {
	folderPath string
	tokenizer  textsplitter.Tokenizer
	id         string
	uri        string
}

// ID returns the document's generated identifier.
func (d *Document) ID() string { return d.id }

// URI returns the document's source uri.
func (d *Document) URI() string { return d.uri }

func (d *Document) textPath() string     { return filepath.Join(d.folderPath, d.id+".txt") }
func (d *Document) metadataPath() string { return filepath.Join(d.folderPath, d.id+".json") }

// LoadText reads the document's full text from disk.
func (d *Document) LoadText() (string, error) {
	raw, err := os.ReadFile(d.textPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", vecerr.Wrap(vecerr.NotFound, err, "document text for %s not found", d.id)
		}
		return "", vecerr.Wrap(vecerr.IOError, err, "reading document text for %s", d.id)
	}
	return string(raw), nil
}

// HasMetadata reports whether a metadata sidecar file exists for this
// document.
func (d *Document) HasMetadata() bool {
	_, err := os.Stat(d.metadataPath())
	return err == nil
}

// LoadMetadata reads the document's caller-supplied metadata, returning an
// empty map when no sidecar file was written (no metadata was given at
// upsert time).
func (d *Document) LoadMetadata() (map[string]any, error) {
	if !d.HasMetadata() {
		return map[string]any{}, nil
	}
	var metadata map[string]any
	if err := readJSON(d.metadataPath(), &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

// GetLength returns the document's length in tokens. For very long
// documents it falls back to a length/4 character-count estimate rather
// than paying for a full tokenizer pass, mirroring the source's behavior.
func (d *Document) GetLength() (int, error) {
	text, err := d.LoadText()
	if err != nil {
		return 0, err
	}
	return estimateLength(text, d.tokenizer), nil
}

// estimateLength returns text's length in tokens, shared by Document and
// Result so both fall back the same way for long documents or a missing
// tokenizer.
func estimateLength(text string, tokenizer textsplitter.Tokenizer) int {
	if len(text) > lengthEstimateThreshold {
		return len(text) / lengthEstimateDivisor
	}
	if tokenizer == nil {
		return len(text) / lengthEstimateDivisor
	}
	return len(tokenizer.Encode(text))
}
