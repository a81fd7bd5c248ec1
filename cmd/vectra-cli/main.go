// Command vectra-cli is a scriptable command-line front end for a
// folder-backed document index: create/inspect an index, upsert/delete/
// query documents, and sync or watch a directory of source files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vectra-go/vectra/internal/config"
	"github.com/vectra-go/vectra/internal/document"
	"github.com/vectra-go/vectra/pkg/embeddings"
	"github.com/vectra-go/vectra/pkg/fetcher"
	"github.com/vectra-go/vectra/pkg/tokenizer"
	"github.com/vectra-go/vectra/pkg/vectra"
)

var (
	configFlag    string
	folderFlag    string
	chunkSizeFlag int
	docTypeFlag   string

	headingStyle = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func styled(s lipgloss.Style, text string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return text
	}
	return s.Render(text)
}

// resolveConfig loads configFlag (if set), falling back to defaults, then
// layers the --folder/--chunk-size overrides on top when given.
func resolveConfig() (config.Config, error) {
	cfg := config.Default()
	if configFlag != "" {
		loaded, err := config.Load(configFlag)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if folderFlag != "" {
		cfg.Folder = folderFlag
	}
	if cfg.Folder == "" {
		cfg.Folder = ".vectra"
	}
	if chunkSizeFlag > 0 {
		cfg.Chunking.ChunkSize = chunkSizeFlag
	}
	return cfg, nil
}

func openIndex(opts ...vectra.Option) (*vectra.Index, error) {
	cfg, err := resolveConfig()
	if err != nil {
		return nil, err
	}
	base := []vectra.Option{
		vectra.WithTokenizer(tokenizer.New()),
		vectra.WithEmbeddings(embeddings.NewCached(embeddings.New(256, cfg.Embeddings.MaxTokens), cfg.Embeddings.CacheSize)),
		vectra.WithChunking(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap),
	}
	return vectra.Open(cfg.Folder, append(base, opts...)...)
}

func main() {
	root := &cobra.Command{Use: "vectra-cli", Short: "Manage a local vectra document index"}
	root.PersistentFlags().StringVar(&configFlag, "config", "", "path to a vectra.yaml config file")
	root.PersistentFlags().StringVar(&folderFlag, "folder", "", "index folder, overrides config")
	root.PersistentFlags().IntVar(&chunkSizeFlag, "chunk-size", 0, "chunk size in tokens, overrides config")

	root.AddCommand(indexCmd(), docCmd(), syncCmd(), watchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styled(errorStyle, err.Error()))
		os.Exit(1)
	}
}

func indexCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "index", Short: "Manage the index itself"}

	var deleteIfExists bool
	var version int
	var indexed string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a new index",
		RunE: func(*cobra.Command, []string) error {
			idx, err := openIndex(vectra.WithoutLock())
			if err != nil {
				return err
			}
			defer idx.Close()
			metadataConfig := vectra.MetadataConfig{Indexed: splitCommaList(indexed)}
			if err := idx.CreateIndex(version, deleteIfExists, metadataConfig); err != nil {
				return err
			}
			fmt.Println(styled(headingStyle, "index created"), folderFlag)
			return nil
		},
	}
	create.Flags().BoolVar(&deleteIfExists, "delete-if-exists", false, "replace an existing index")
	create.Flags().IntVar(&version, "version", 1, "index schema version")
	create.Flags().StringVar(&indexed, "indexed", "", "comma-separated metadata keys kept inline/filterable; others spill to a sidecar file")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog stats",
		RunE: func(*cobra.Command, []string) error {
			idx, err := openIndex(vectra.WithoutLock())
			if err != nil {
				return err
			}
			defer idx.Close()
			s, err := idx.Stats()
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"version": s.Version, "documents": s.Documents, "chunks": s.Chunks})
		},
	}

	cmd.AddCommand(create, stats)
	return cmd
}

func docCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "doc", Short: "Manage documents"}

	var uri, textFile, metadataFlag string
	upsert := &cobra.Command{
		Use:   "upsert",
		Short: "Upsert a document's text",
		RunE: func(*cobra.Command, []string) error {
			raw, err := os.ReadFile(textFile)
			if err != nil {
				return err
			}
			metadata, err := parseMetadataFlag(metadataFlag)
			if err != nil {
				return err
			}
			idx, err := openIndex()
			if err != nil {
				return err
			}
			defer idx.Close()
			doc, err := idx.Upsert(context.Background(), uri, string(raw), docTypeFlag, metadata)
			if err != nil {
				return err
			}
			fmt.Println(styled(headingStyle, "upserted"), doc.ID())
			return nil
		},
	}
	upsert.Flags().StringVar(&uri, "uri", "", "document uri (required)")
	upsert.Flags().StringVar(&textFile, "file", "", "path to the document's text (required)")
	upsert.Flags().StringVar(&docTypeFlag, "doc-type", "", "override doc_type inference from the uri's extension")
	upsert.Flags().StringVar(&metadataFlag, "metadata", "", "comma-separated k=v pairs attached to every chunk")
	_ = upsert.MarkFlagRequired("uri")
	_ = upsert.MarkFlagRequired("file")

	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete a document by uri",
		RunE: func(*cobra.Command, []string) error {
			idx, err := openIndex()
			if err != nil {
				return err
			}
			defer idx.Close()
			if err := idx.Delete(context.Background(), uri); err != nil {
				return err
			}
			fmt.Println(styled(headingStyle, "deleted"), uri)
			return nil
		},
	}
	del.Flags().StringVar(&uri, "uri", "", "document uri (required)")
	_ = del.MarkFlagRequired("uri")

	var maxDocuments, maxChunks, maxTokens, maxSections int
	var filterFlag string
	query := &cobra.Command{
		Use:   "query [text]",
		Short: "Query documents by similarity",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			idx, err := openIndex(vectra.WithoutLock())
			if err != nil {
				return err
			}
			defer idx.Close()

			opts := vectra.DefaultQueryOptions()
			if maxDocuments > 0 {
				opts.MaxDocuments = maxDocuments
			}
			if maxChunks > 0 {
				opts.MaxChunks = maxChunks
			}
			if filterFlag != "" {
				filter, err := parseFilterFlag(filterFlag)
				if err != nil {
					return err
				}
				opts.Filter = &filter
			}

			results, err := idx.Query(context.Background(), args[0], opts)
			if err != nil {
				return err
			}

			out := make([]map[string]any, len(results))
			for i, r := range results {
				entry := map[string]any{"uri": r.URI(), "score": r.Score()}
				if maxTokens > 0 {
					sections, err := r.RenderSections(maxTokens, maxSections, true)
					if err != nil {
						return err
					}
					entry["sections"] = sections
				}
				out[i] = entry
			}
			return printJSON(out)
		},
	}
	query.Flags().IntVar(&maxDocuments, "max-documents", 0, "override max documents returned")
	query.Flags().IntVar(&maxChunks, "max-chunks", 0, "override max chunks fetched before grouping into documents")
	query.Flags().StringVar(&filterFlag, "filter", "", "MongoDB-subset metadata filter as JSON")
	query.Flags().IntVar(&maxTokens, "max-tokens", 0, "render token-bounded sections per document, instead of just uri/score")
	query.Flags().IntVar(&maxSections, "max-sections", 5, "max sections rendered per document (with --max-tokens)")

	cmd.AddCommand(upsert, del, query)
	return cmd
}

func syncCmd() *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Upsert every file under a directory",
		RunE: func(*cobra.Command, []string) error {
			dirFetcher := fetcher.NewDirectoryFetcher(root)
			idx, err := openIndex(vectra.WithTextFetcher(dirFetcher))
			if err != nil {
				return err
			}
			defer idx.Close()

			uris, err := dirFetcher.ListURIs()
			if err != nil {
				return err
			}
			ctx := context.Background()
			for _, uri := range uris {
				if _, err := idx.Sync(ctx, uri, nil); err != nil {
					fmt.Fprintln(os.Stderr, styled(errorStyle, fmt.Sprintf("%s: %v", uri, err)))
					continue
				}
				fmt.Println(styled(headingStyle, "synced"), uri)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "directory to sync")
	return cmd
}

func watchCmd() *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the index in sync with a directory's changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dirFetcher := fetcher.NewDirectoryFetcher(root)
			idx, err := openIndex(vectra.WithTextFetcher(dirFetcher))
			if err != nil {
				return err
			}
			defer idx.Close()

			w, err := fetcher.New(dirFetcher, syncAdapter{idx}, nil)
			if err != nil {
				return err
			}
			defer w.Close()

			fmt.Println(styled(headingStyle, "watching"), root)
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "directory to watch")
	return cmd
}

// syncAdapter bridges vectra.Index's signature (which returns the richer
// *document.Document) to the Watcher's narrower sync interface.
type syncAdapter struct{ idx *vectra.Index }

func (s syncAdapter) UpsertDocument(ctx context.Context, uri, text, docType string, metadata map[string]any) (*document.Document, error) {
	return s.idx.Upsert(ctx, uri, text, docType, metadata)
}

func (s syncAdapter) DeleteDocument(ctx context.Context, uri string) error {
	return s.idx.Delete(ctx, uri)
}

// splitCommaList splits a comma-separated flag value, dropping empty
// entries, for flags like --indexed that take a key list.
func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseMetadataFlag parses a comma-separated k=v list into a metadata map,
// for flags like --metadata.
func parseMetadataFlag(s string) (map[string]any, error) {
	if s == "" {
		return nil, nil
	}
	metadata := map[string]any{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --metadata entry %q, want k=v", pair)
		}
		metadata[key] = value
	}
	return metadata, nil
}

// parseFilterFlag decodes a --filter flag's JSON into a vectra.Filter.
func parseFilterFlag(s string) (vectra.Filter, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return vectra.Filter{}, fmt.Errorf("parsing --filter: %w", err)
	}
	return vectra.ParseFilter(raw)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
