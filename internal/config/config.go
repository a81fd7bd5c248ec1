// Package config loads the YAML configuration consumed by the CLI and MCP
// front-ends. The embeddable library (pkg/vectra) never depends on this
// package — it is constructed from plain Go options — but a standalone
// binary needs a file format, and the teacher's stack favors YAML
// (gopkg.in/yaml.v3) over ad-hoc flag parsing for anything with more than a
// couple of fields.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ChunkingConfig mirrors the document layer's per-index chunking defaults.
type ChunkingConfig struct {
	ChunkSize      int    `yaml:"chunkSize" json:"chunkSize"`
	ChunkOverlap   int    `yaml:"chunkOverlap" json:"chunkOverlap"`
	KeepSeparators bool   `yaml:"keepSeparators" json:"keepSeparators"`
	DocType        string `yaml:"docType,omitempty" json:"docType,omitempty"`
}

// DefaultChunkingConfig matches the document index's built-in defaults
// (§4.4: keep_separators=true, chunk_size=512, chunk_overlap=0).
func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{
		ChunkSize:      512,
		ChunkOverlap:   0,
		KeepSeparators: true,
	}
}

// EmbeddingsConfig selects and bounds the embeddings collaborator used by
// the CLI/MCP front-ends.
type EmbeddingsConfig struct {
	MaxTokens int    `yaml:"maxTokens" json:"maxTokens"`
	CacheSize int    `yaml:"cacheSize" json:"cacheSize"`
	Model     string `yaml:"model,omitempty" json:"model,omitempty"`
}

// DefaultEmbeddingsConfig returns a conservative default batch budget.
func DefaultEmbeddingsConfig() EmbeddingsConfig {
	return EmbeddingsConfig{MaxTokens: 2048, CacheSize: 1000, Model: "hashing-v1"}
}

// LoggingConfig controls the shared slog logger.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	JSON  bool   `yaml:"json" json:"json"`
}

// Config is the top-level shape loaded from a `vectra.yaml` file.
type Config struct {
	Folder     string           `yaml:"folder" json:"folder"`
	Chunking   ChunkingConfig   `yaml:"chunking" json:"chunking"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// Default returns a Config with every section at its spec-aligned default.
func Default() Config {
	return Config{
		Chunking:   DefaultChunkingConfig(),
		Embeddings: DefaultEmbeddingsConfig(),
		Logging:    LoggingConfig{Level: "info"},
	}
}

// Load reads and parses a YAML config file, filling unset sections with
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
