package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/laguz/internal/registry"
	"github.com/starford/laguz/internal/testutil"
)

func testServer(t *testing.T) (*Server, *registry.Registry) {
	t.Helper()
	reg := registry.New(testutil.Logger())
	nb, err := reg.Add("main", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := nb.InitData(context.Background()); err != nil {
		t.Fatal(err)
	}
	return New(reg), reg
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we call the handler
	// functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notebooks":
		result, err = srv.listNotebooks(ctx, req)
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "write_note":
		result, err = srv.writeNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "get_note_contract":
		result, err = srv.getNoteContract(ctx, req)
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

func TestWriteAndReadNote(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "write_note", map[string]interface{}{
		"path": "test.md",
		"body": "# Test\nHello",
		"tags": "work/urgent, ideas",
	})
	if text := resultText(r); text != "written: test.md" {
		t.Errorf("write result = %q", text)
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{"path": "test.md"})
	if text := resultText(r); text != "# Test\nHello" {
		t.Errorf("read result = %q", text)
	}

	r = callTool(t, srv, "list_notes", map[string]interface{}{"section": "Tag", "path": "work"})
	if text := resultText(r); text != "test.md" {
		t.Errorf("tag listing = %q", text)
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestWriteNoteRejectsNonMarkdown(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "write_note", map[string]interface{}{
		"path": "file.txt",
		"body": "x",
	})
	if !r.IsError {
		t.Error("expected error for non-.md path")
	}
}

func TestCreateAndDeleteNote(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"section": "Directory",
		"path":    "inbox",
	})
	text := resultText(r)
	if !strings.HasPrefix(text, "created: inbox/unnamed_") {
		t.Fatalf("create result = %q", text)
	}
	created := strings.TrimPrefix(text, "created: ")

	r = callTool(t, srv, "delete_note", map[string]interface{}{"path": created})
	if text := resultText(r); text != "deleted: "+created {
		t.Errorf("delete result = %q", text)
	}
	r = callTool(t, srv, "delete_note", map[string]interface{}{"path": created})
	if !r.IsError {
		t.Error("expected error deleting twice")
	}
}

func TestSearchNotes(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "write_note", map[string]interface{}{
		"path": "a.md",
		"body": "# Grocery List\nbuy milk",
	})

	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "milk"})
	if text := resultText(r); !strings.Contains(text, "a.md") {
		t.Errorf("search result = %q", text)
	}

	r = callTool(t, srv, "search_notes", map[string]interface{}{"query": "zzz"})
	if text := resultText(r); text != "no matches" {
		t.Errorf("empty search = %q", text)
	}
}

func TestListNotebooks(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_notebooks", map[string]interface{}{})
	if text := resultText(r); !strings.Contains(text, "main") {
		t.Errorf("notebooks = %q", text)
	}
}

func TestNoteContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_note_contract", map[string]interface{}{})
	if text := resultText(r); !strings.Contains(text, "note") || !strings.Contains(text, "tags") {
		t.Errorf("contract missing expected sections")
	}
}
