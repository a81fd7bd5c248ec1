package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CF01: Save then Load round-trips a config, including a partial override.
func TestSaveLoad_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectra.yaml")

	cfg := Default()
	cfg.Folder = "/data/index"
	cfg.Chunking.ChunkSize = 256

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/index", loaded.Folder)
	assert.Equal(t, 256, loaded.Chunking.ChunkSize)
	assert.Equal(t, 0, loaded.Chunking.ChunkOverlap)
	assert.Equal(t, 2048, loaded.Embeddings.MaxTokens)
}

// CF02: Load on a missing file surfaces an error rather than panicking.
func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
