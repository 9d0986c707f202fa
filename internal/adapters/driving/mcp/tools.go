package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/resumerag/internal/core/domain"
)

// QueryInput is the input schema for the query_resume tool.
type QueryInput struct {
	Question string `json:"question" jsonschema:"the question to answer about the resume"`
	Model    string `json:"model,omitempty" jsonschema:"generation model, defaults to the configured model"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks used as context"`
}

// QueryOutput is the output schema for the query_resume tool.
type QueryOutput struct {
	Answer  string   `json:"answer"`
	Model   string   `json:"model"`
	Sources []string `json:"sources"`
	Warning string   `json:"warning,omitempty"`
}

// SearchInput is the input schema for the search_resume tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to match against resume chunks"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return"`
}

// SearchOutput is the output schema for the search_resume tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved chunk.
type SearchResultOutput struct {
	Source   string  `json:"source"`
	Page     int     `json:"page,omitempty"`
	Position int     `json:"position"`
	Score    float64 `json:"score"`
	Content  string  `json:"content"`
}

// EmptyInput is the input schema for tools without arguments.
type EmptyInput struct{}

// IndexOutput is the output schema for the index_documents tool.
type IndexOutput struct {
	Chunks   int      `json:"chunks"`
	Warnings []string `json:"warnings,omitempty"`
}

// ModelsOutput is the output schema for the list_models tool.
type ModelsOutput struct {
	Models  []domain.ModelInfo `json:"models"`
	Default string             `json:"default"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_resume",
		Description: "Answer a question about the resume using the indexed documents as context",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_resume",
		Description: "Return the resume passages most similar to a query, without generating an answer",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_documents",
		Description: "Rebuild the vector index from the documents directory",
	}, s.handleIndex)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resume_stats",
		Description: "Report indexed documents, chunk count and index state",
	}, s.handleStats)

	if s.ports.Models != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_models",
			Description: "List generation models and whether the backend has them",
		}, s.handleListModels)
	}

	if s.ports.Health != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "health",
			Description: "Check generation and embedding backend connectivity",
		}, s.handleHealth)
	}
}

// handleQuery handles the query_resume tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	answer, err := s.ports.RAG.Query(ctx, input.Question, input.Model, input.TopK)
	if err != nil {
		return nil, QueryOutput{}, toolError("query", err)
	}

	return nil, QueryOutput{
		Answer:  answer.Text,
		Model:   answer.Model,
		Sources: answer.Sources,
		Warning: answer.Warning,
	}, nil
}

// handleSearch handles the search_resume tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	hits, err := s.ports.RAG.Search(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, SearchOutput{}, toolError("search", err)
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(hits)),
		Count:   len(hits),
	}

	for i := range hits {
		output.Results[i] = SearchResultOutput{
			Source:   hits[i].Chunk.Metadata.Source,
			Page:     hits[i].Chunk.Metadata.Page,
			Position: hits[i].Chunk.Position,
			Score:    hits[i].Score,
			Content:  hits[i].Chunk.Text,
		}
	}

	return nil, output, nil
}

// handleIndex handles the index_documents tool invocation.
func (s *Server) handleIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, IndexOutput, error) {
	n, err := s.ports.RAG.IndexDocuments(ctx)
	if err != nil {
		return nil, IndexOutput{}, toolError("index documents", err)
	}
	return nil, IndexOutput{
		Chunks:   n,
		Warnings: s.ports.RAG.Stats(ctx).Warnings,
	}, nil
}

// handleStats handles the resume_stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, domain.Stats, error) {
	return nil, s.ports.RAG.Stats(ctx), nil
}

// handleListModels handles the list_models tool invocation.
func (s *Server) handleListModels(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, ModelsOutput, error) {
	if s.ports.Models == nil {
		return nil, ModelsOutput{}, toolError("list models", ErrServiceUnavailable)
	}

	models, err := s.ports.Models.List(ctx)
	if err != nil {
		return nil, ModelsOutput{}, toolError("list models", err)
	}
	return nil, ModelsOutput{Models: models, Default: s.ports.Models.Default()}, nil
}

// handleHealth handles the health tool invocation.
func (s *Server) handleHealth(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, domain.Health, error) {
	if s.ports.Health == nil {
		return nil, domain.Health{}, toolError("health", ErrServiceUnavailable)
	}
	return nil, s.ports.Health.Check(ctx), nil
}
