package vectorindex

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vectra-go/vectra/internal/vecerr"
)

// writeJSONAtomic serializes v to path via the same write-temp-then-rename
// pattern the teacher's store layer uses for its own index file (see
// internal/store/hnsw.go's Save/saveMetadata): a crash can leave either the
// previous or the new file, never a half-written one.
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

// readJSON loads and parses path, classifying a missing file as NotFound
// and a malformed file as DataCorruption per §7.
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

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	return nil
}
