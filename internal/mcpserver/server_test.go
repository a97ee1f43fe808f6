package mcpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/norland/catena/internal/catalogservice"
	"github.com/norland/catena/internal/fetch"
	"github.com/norland/catena/internal/testutil"
)

const sourceDocument = `{
  "version": "2",
  "templates": [
    {"title": "Nginx", "image": "nginx:latest", "description": "Web server", "categories": ["webserver"]},
    {"title": "Postgres", "image": "postgres:16", "description": "Relational database", "categories": ["database"]}
  ]
}`

func testServer(t *testing.T) *Server {
	t.Helper()

	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sourceDocument))
	}))
	t.Cleanup(src.Close)

	db := testutil.TestDB(t)
	_, store := testutil.TestDataDir(t)
	svc := catalogservice.New(db, store, fetch.NewClient(5*time.Second), catalogservice.Options{
		Sources:    []string{src.URL},
		OutputFile: "catalog.json",
		Threshold:  0.70,
	}, nil)
	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("seed refresh: %v", err)
	}

	return New(svc)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error
	switch name {
	case "search_templates":
		result, err = srv.searchTemplates(ctx, req)
	case "get_template":
		result, err = srv.getTemplate(ctx, req)
	case "list_templates":
		result, err = srv.listTemplates(ctx, req)
	case "merge_catalog":
		result, err = srv.mergeCatalog(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSearchTemplatesTool(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "search_templates", map[string]interface{}{"query": "database"})
	if r.IsError {
		t.Fatalf("search failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "Postgres") {
		t.Errorf("result = %q", resultText(r))
	}
}

func TestGetTemplateTool(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_template", map[string]interface{}{"title": "Nginx"})
	if r.IsError {
		t.Fatalf("get failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "nginx:latest") {
		t.Errorf("result = %q", resultText(r))
	}

	// Forgiving title resolution.
	r = callTool(t, srv, "get_template", map[string]interface{}{"title": "docker-nginx"})
	if r.IsError {
		t.Errorf("normalized lookup failed: %s", resultText(r))
	}

	r = callTool(t, srv, "get_template", map[string]interface{}{"title": "nothing"})
	if !r.IsError {
		t.Error("expected error result for missing template")
	}
}

func TestListTemplatesTool(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_templates", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Nginx") || !strings.Contains(text, "Postgres") {
		t.Errorf("list = %q", text)
	}

	r = callTool(t, srv, "list_templates", map[string]interface{}{"category": "database"})
	text = resultText(r)
	if strings.Contains(text, "Nginx") || !strings.Contains(text, "Postgres") {
		t.Errorf("filtered list = %q", text)
	}
}

func TestMergeCatalogTool(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "merge_catalog", nil)
	if r.IsError {
		t.Fatalf("merge failed: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, "run_id") || !strings.Contains(text, `"final_count": 2`) {
		t.Errorf("report = %q", text)
	}
}

func TestTemplateFormatResource(t *testing.T) {
	srv := testServer(t)

	contents, err := srv.readTemplateFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("resource: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents[0] = %T", contents[0])
	}
	if !strings.Contains(tc.Text, "title") {
		t.Error("contract text looks empty")
	}
}
