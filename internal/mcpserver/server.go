// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the template catalog for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/norland/catena/internal/catalogservice"
)

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcp *server.MCPServer
	svc *catalogservice.Service
}

// New creates a new MCP server with all catalog tools registered.
func New(svc *catalogservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Catena",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_templates",
		mcp.WithDescription("Search the merged template catalog by title, description, or category."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchTemplates)

	s.mcp.AddTool(mcp.NewTool("get_template",
		mcp.WithDescription("Read one template from the catalog as canonical JSON. "+
			"The title match is forgiving: case and docker-/container- affixes are ignored."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Template title (e.g. Nginx)")),
	), s.getTemplate)

	s.mcp.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List catalog template titles, optionally filtered by category."),
		mcp.WithString("category", mcp.Description("Optional category filter (empty for all)")),
	), s.listTemplates)

	s.mcp.AddTool(mcp.NewTool("merge_catalog",
		mcp.WithDescription("Re-fetch every configured source and rebuild the deduplicated catalog. "+
			"Returns the merge report including per-source status."),
	), s.mergeCatalog)

	// Resource: canonical template format.
	s.mcp.AddResource(
		mcp.NewResource("catena://template-format", "Template Format",
			mcp.WithResourceDescription("Canonical template record format produced by the catalog."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTemplateFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.svc.GetTemplate(ctx, title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", title)), nil
	}
	out, _ := json.MarshalIndent(t, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := ""
	if c, err := req.RequireString("category"); err == nil {
		category = c
	}

	templates, _, err := s.svc.ListTemplates(ctx, 500, 0, category)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var titles []string
	for _, t := range templates {
		titles = append(titles, t.Title)
	}
	return mcp.NewToolResultText(strings.Join(titles, "\n")), nil
}

func (s *Server) mergeCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.svc.Refresh(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readTemplateFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "catena://template-format",
			MIMEType: "text/markdown",
			Text:     TemplateFormatContract,
		},
	}, nil
}
