package fetcher

import (
	"fmt"
	"path/filepath"
	"strings"
)

func relativeTo(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("fetcher: %s is outside %s", path, root)
	}
	return rel, nil
}
