// Package mcpserver exposes a document index over MCP: upsert_document,
// delete_document, query_documents, and index_stats tools, so an AI
// client can manage and search a vectra index directly.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vectra-go/vectra/pkg/vectra"
)

// Server is the MCP server wrapping one vectra.Index.
type Server struct {
	mcp    *mcp.Server
	index  *vectra.Index
	logger *slog.Logger
}

// New builds a Server exposing index's documents over MCP.
func New(index *vectra.Index, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		index:  index,
		logger: logger,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    "vectra",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server { return s.mcp }

// Serve runs the server over stdio until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "upsert_document",
		Description: "Chunk, embed, and insert a document's text under a uri, replacing any prior document at the same uri.",
	}, s.upsertDocument)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete the document at a uri, if present.",
	}, s.deleteDocument)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_documents",
		Description: "Find documents whose content is most similar to a query string, ranked by mean matching-chunk score.",
	}, s.queryDocuments)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_stats",
		Description: "Report the index's document and chunk counts.",
	}, s.indexStats)

	s.logger.Debug("mcpserver: registered tools", "count", 4)
}
