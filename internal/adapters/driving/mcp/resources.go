package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for resumerag resources.
	uriScheme = "resumerag://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the documents list.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Resume files in the documents directory",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Static resource for pipeline statistics.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Index state, chunk count and ingestion warnings",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	// Template for similarity search.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "search/{query}",
		Name:        "search",
		Description: "Resume passages most similar to a query",
		MIMEType:    "application/json",
	}, s.handleSearchResource)
}

// handleDocumentsResource returns the documents list.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	var docs []string
	if s.ports.Documents != nil {
		docs = s.ports.Documents.List()
	} else {
		docs = s.ports.RAG.Stats(ctx).Documents
	}
	if docs == nil {
		docs = []string{}
	}
	return jsonResource(req.Params.URI, docs)
}

// handleStatsResource returns pipeline statistics.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.RAG.Stats(ctx))
}

// handleSearchResource returns the hits for the query in the URI.
func (s *Server) handleSearchResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract query from URI: resumerag://search/{query}
	query := extractSearchQuery(req.Params.URI)
	if query == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	_, output, err := s.handleSearch(ctx, nil, SearchInput{Query: query})
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, output)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSearchQuery extracts the query from a URI like resumerag://search/{query}.
// Percent-encoded queries are decoded.
func extractSearchQuery(uri string) string {
	const prefix = uriScheme + "search/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	query := strings.TrimPrefix(uri, prefix)
	if decoded, err := url.PathUnescape(query); err == nil {
		query = decoded
	}
	return strings.TrimSpace(query)
}
