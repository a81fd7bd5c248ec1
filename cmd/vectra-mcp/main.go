// Command vectra-mcp runs a document index as an MCP stdio server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vectra-go/vectra/internal/config"
	"github.com/vectra-go/vectra/internal/logging"
	"github.com/vectra-go/vectra/internal/mcpserver"
	"github.com/vectra-go/vectra/pkg/embeddings"
	"github.com/vectra-go/vectra/pkg/tokenizer"
	"github.com/vectra-go/vectra/pkg/vectra"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to a vectra.yaml config file")
	folderFlag := flag.String("folder", "", "index folder, overrides config")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *folderFlag != "" {
		cfg.Folder = *folderFlag
	}
	if cfg.Folder == "" {
		cfg.Folder = ".vectra"
	}

	logger := logging.SetupDefault(logging.Config{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON, Output: os.Stderr})

	idx, err := vectra.Open(cfg.Folder,
		vectra.WithTokenizer(tokenizer.New()),
		vectra.WithEmbeddings(embeddings.NewCached(embeddings.New(256, cfg.Embeddings.MaxTokens), cfg.Embeddings.CacheSize)),
		vectra.WithChunking(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap),
		vectra.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer idx.Close()

	if err := idx.InitIndex(1); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcpserver.New(idx, version, logger)
	if err := server.Serve(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
