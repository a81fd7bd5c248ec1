package document

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/vectra-go/vectra/internal/vecerr"
)

// writeJSONAtomic mirrors vectorindex's write-temp-then-rename helper
// (itself grounded on internal/store/hnsw.go's Save/saveMetadata): the
// catalog gets the same crash-safety guarantee as the item index it sits
// beside.
func writeJSONAtomic(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return vecerr.Wrap(vecerr.IOError, err, "marshaling %s", filepath.Base(path))
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return vecerr.Wrap(vecerr.IOError, err, "writing %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return vecerr.Wrap(vecerr.IOError, err, "renaming %s into place", path)
	}
	return nil
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return vecerr.Wrap(vecerr.NotFound, err, "%s does not exist", filepath.Base(path))
		}
		return vecerr.Wrap(vecerr.IOError, err, "reading %s", path)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return vecerr.Wrap(vecerr.DataCorruption, err, "parsing %s", filepath.Base(path))
	}
	return nil
}
