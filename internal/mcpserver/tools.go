package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vectra-go/vectra/pkg/vectra"
)

// UpsertDocumentInput is the input schema for upsert_document.
type UpsertDocumentInput struct {
	URI      string         `json:"uri" jsonschema:"the document's source identifier"`
	Text     string         `json:"text" jsonschema:"the document's full text"`
	DocType  string         `json:"doc_type,omitempty" jsonschema:"overrides the separator table selected for chunking, e.g. 'go', 'md', 'python'"`
	Metadata map[string]any `json:"metadata,omitempty" jsonschema:"caller metadata attached to every chunk and stored alongside the document"`
}

// UpsertDocumentOutput is the output schema for upsert_document.
type UpsertDocumentOutput struct {
	DocumentID string `json:"document_id"`
}

func (s *Server) upsertDocument(ctx context.Context, _ *mcp.CallToolRequest, input UpsertDocumentInput) (*mcp.CallToolResult, UpsertDocumentOutput, error) {
	if input.URI == "" {
		return nil, UpsertDocumentOutput{}, newInvalidParamsError("uri is required")
	}
	doc, err := s.index.Upsert(ctx, input.URI, input.Text, input.DocType, input.Metadata)
	if err != nil {
		return nil, UpsertDocumentOutput{}, mapError(err)
	}
	return nil, UpsertDocumentOutput{DocumentID: doc.ID()}, nil
}

// DeleteDocumentInput is the input schema for delete_document.
type DeleteDocumentInput struct {
	URI string `json:"uri" jsonschema:"the document's source identifier"`
}

// DeleteDocumentOutput is the output schema for delete_document.
type DeleteDocumentOutput struct {
	Deleted bool `json:"deleted"`
}

func (s *Server) deleteDocument(ctx context.Context, _ *mcp.CallToolRequest, input DeleteDocumentInput) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	if input.URI == "" {
		return nil, DeleteDocumentOutput{}, newInvalidParamsError("uri is required")
	}
	if err := s.index.Delete(ctx, input.URI); err != nil {
		return nil, DeleteDocumentOutput{}, mapError(err)
	}
	return nil, DeleteDocumentOutput{Deleted: true}, nil
}

// QueryDocumentsInput is the input schema for query_documents.
type QueryDocumentsInput struct {
	Query        string         `json:"query" jsonschema:"the text to search for"`
	MaxDocuments int            `json:"max_documents,omitempty" jsonschema:"maximum number of documents to return, default 10"`
	MaxChunks    int            `json:"max_chunks,omitempty" jsonschema:"maximum number of matching chunks fetched before grouping into documents, default 50"`
	Filter       map[string]any `json:"filter,omitempty" jsonschema:"a MongoDB-subset metadata filter (e.g. {\"tag\": {\"$eq\": \"v1\"}})"`
}

// QueryDocumentMatch is one matching document in QueryDocumentsOutput.
type QueryDocumentMatch struct {
	URI   string  `json:"uri"`
	Score float64 `json:"score"`
}

// QueryDocumentsOutput is the output schema for query_documents.
type QueryDocumentsOutput struct {
	Matches []QueryDocumentMatch `json:"matches"`
}

func (s *Server) queryDocuments(ctx context.Context, _ *mcp.CallToolRequest, input QueryDocumentsInput) (*mcp.CallToolResult, QueryDocumentsOutput, error) {
	if input.Query == "" {
		return nil, QueryDocumentsOutput{}, newInvalidParamsError("query is required")
	}
	opts := vectra.DefaultQueryOptions()
	if input.MaxDocuments > 0 {
		opts.MaxDocuments = input.MaxDocuments
	}
	if input.MaxChunks > 0 {
		opts.MaxChunks = input.MaxChunks
	}
	if input.Filter != nil {
		filter, err := vectra.ParseFilter(input.Filter)
		if err != nil {
			return nil, QueryDocumentsOutput{}, newInvalidParamsError(err.Error())
		}
		opts.Filter = &filter
	}
	results, err := s.index.Query(ctx, input.Query, opts)
	if err != nil {
		return nil, QueryDocumentsOutput{}, mapError(err)
	}
	matches := make([]QueryDocumentMatch, len(results))
	for i, r := range results {
		matches[i] = QueryDocumentMatch{URI: r.URI(), Score: r.Score()}
	}
	return nil, QueryDocumentsOutput{Matches: matches}, nil
}

// IndexStatsInput is the input schema for index_stats (no parameters).
type IndexStatsInput struct{}

// IndexStatsOutput is the output schema for index_stats.
type IndexStatsOutput struct {
	Version   int `json:"version"`
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

func (s *Server) indexStats(_ context.Context, _ *mcp.CallToolRequest, _ IndexStatsInput) (*mcp.CallToolResult, IndexStatsOutput, error) {
	stats, err := s.index.Stats()
	if err != nil {
		return nil, IndexStatsOutput{}, mapError(err)
	}
	return nil, IndexStatsOutput{Version: stats.Version, Documents: stats.Documents, Chunks: stats.Chunks}, nil
}
