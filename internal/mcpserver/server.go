// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes notebook tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/note"
	"github.com/starford/laguz/internal/notebook"
	"github.com/starford/laguz/internal/registry"
	"github.com/starford/laguz/internal/section"
)

// Server wraps the MCP server with notebook tools.
type Server struct {
	mcp *server.MCPServer
	reg *registry.Registry
}

// New creates a new MCP server with all tools registered.
func New(reg *registry.Registry) *Server {
	s := &Server{reg: reg}

	s.mcp = server.NewMCPServer(
		"Laguz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notebooks",
		mcp.WithDescription("List the registered notebook root directories."),
	), s.listNotebooks)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes in a notebook, optionally filtered by a section "+
			"(Notes, Today, Todo, Tagged, Untagged, Encrypted, Tag, Directory)."),
		mcp.WithString("notebook", mcp.Description("Notebook name (optional when only one notebook is registered)")),
		mcp.WithString("section", mcp.Description("Section type to filter by (default Notes)")),
		mcp.WithString("path", mcp.Description("Tag path for Tag sections or directory path for Directory sections")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a Markdown note. Pass password to decrypt an encrypted note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. folder/note.md)")),
		mcp.WithString("notebook", mcp.Description("Notebook name")),
		mcp.WithString("password", mcp.Description("Decryption password for encrypted notes")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("write_note",
		mcp.WithDescription("Write a Markdown note at the given path, creating it if needed. "+
			"Content MUST follow the canonical note format (optional YAML front-matter; the "+
			"reserved 'note' block is managed by the engine). Read the contract first via the "+
			"get_note_contract tool or the laguz://note-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the note (must end with .md)")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Markdown body following the note format contract")),
		mcp.WithString("tags", mcp.Description("Comma-separated tag paths (e.g. work/urgent,ideas)")),
		mcp.WithString("notebook", mcp.Description("Notebook name")),
	), s.writeNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new empty note from a section context: at the notebook "+
			"root, under a directory, or pre-tagged for a Tag section."),
		mcp.WithString("section", mcp.Description("Section type (Notes, Tag, Directory); default Notes")),
		mcp.WithString("path", mcp.Description("Tag path or directory path for Tag/Directory sections")),
		mcp.WithString("notebook", mcp.Description("Notebook name")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a Markdown note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the note to delete")),
		mcp.WithString("notebook", mcp.Description("Notebook name")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Case-insensitive substring search through note titles and plaintext bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithString("notebook", mcp.Description("Notebook name")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the canonical note format contract. "+
			"Call this before creating or updating notes to ensure correct structure."),
	), s.getNoteContract)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource("laguz://note-format", "Note Format Contract",
			mcp.WithResourceDescription("Canonical Markdown note format that all notes must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
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

// notebookArg picks the notebook named by the optional "notebook" argument,
// defaulting to the sole registered notebook.
func (s *Server) notebookArg(req mcp.CallToolRequest) (*notebook.Notebook, error) {
	if name, err := req.RequireString("notebook"); err == nil && name != "" {
		return s.reg.GetByName(name)
	}
	all := s.reg.List()
	if len(all) == 1 {
		return all[0], nil
	}
	return nil, fmt.Errorf("notebook is required when multiple notebooks are registered")
}

func (s *Server) listNotebooks(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type info struct {
		Name      string `json:"name"`
		RootPath  string `json:"rootPath"`
		NoteCount int    `json:"noteCount"`
	}
	var infos []info
	for _, nb := range s.reg.List() {
		infos = append(infos, info{Name: nb.Name, RootPath: nb.Root(), NoteCount: len(nb.Notes())})
	}
	out, _ := json.MarshalIndent(infos, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nb, err := s.notebookArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sel := section.Selected{Type: section.Notes, NotebookRootPath: nb.Root()}
	if t, tErr := req.RequireString("section"); tErr == nil && t != "" {
		sel.Type = section.Type(t)
	}
	if p, pErr := req.RequireString("path"); pErr == nil {
		sel.Path = p
	}

	var lines []string
	for _, n := range nb.FilterNotes(sel) {
		lines = append(lines, n.RelativeFilePath)
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nb, err := s.notebookArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	n, err := nb.GetNote(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}

	body := n.Body
	if n.Config.Encryption != nil {
		password, _ := req.RequireString("password")
		body, err = note.DecryptBody(n.Body, password)
		if err != nil {
			return mcp.NewToolResultError("decryption failed (wrong password?)"), nil
		}
	}
	return mcp.NewToolResultText(body), nil
}

func (s *Server) writeNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nb, err := s.notebookArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg := note.Config{}
	if existing, getErr := nb.GetNote(ctx, path); getErr == nil {
		cfg = existing.Config
	}
	if rawTags, tagErr := req.RequireString("tags"); tagErr == nil && rawTags != "" {
		var tags []string
		for _, t := range strings.Split(rawTags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		cfg.Tags = tags
	}

	if _, err := nb.WriteNote(ctx, path, body, cfg, "", ""); err != nil {
		if errors.Is(err, apperr.ErrNotMarkdown) {
			return mcp.NewToolResultError("path must end with .md"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("written: %s", path)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nb, err := s.notebookArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sel := section.Selected{Type: section.Notes, NotebookRootPath: nb.Root()}
	if t, tErr := req.RequireString("section"); tErr == nil && t != "" {
		sel.Type = section.Type(t)
	}
	if p, pErr := req.RequireString("path"); pErr == nil {
		sel.Path = p
	}

	n, err := nb.CreateNewNote(ctx, sel)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", n.RelativeFilePath)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nb, err := s.notebookArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := nb.DeleteNote(ctx, path); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", path)), nil
}

func (s *Server) searchNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nb, err := s.notebookArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for _, n := range nb.SearchNotes(query) {
		lines = append(lines, fmt.Sprintf("%s\t%s", n.RelativeFilePath, n.Title()))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getNoteContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "laguz://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
