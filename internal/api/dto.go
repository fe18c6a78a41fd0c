package api

import (
	"time"

	"github.com/starford/laguz/internal/note"
	"github.com/starford/laguz/internal/notebook"
	"github.com/starford/laguz/internal/section"
)

// NotebookInfo describes one registered notebook.
type NotebookInfo struct {
	Name      string `json:"name"`
	RootPath  string `json:"rootPath"`
	NoteCount int    `json:"noteCount"`
}

// NoteListItem is a lightweight note representation for listings. The body
// never travels in a list response; Summary stands in for it.
type NoteListItem struct {
	Path       string    `json:"path"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	Images     []string  `json:"images,omitempty"`
	Tags       []string  `json:"tags"`
	Pinned     bool      `json:"pinned,omitempty"`
	Encrypted  bool      `json:"encrypted,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Checksum   string    `json:"checksum"`
}

// NoteDetail is the full note response.
type NoteDetail struct {
	Path      string      `json:"path"`
	Title     string      `json:"title"`
	Body      string      `json:"body"`
	Config    note.Config `json:"config"`
	Checksum  string      `json:"checksum"`
	Encrypted bool        `json:"encrypted,omitempty"`
}

// WriteNoteRequest is the request body for PUT /notes/*.
type WriteNoteRequest struct {
	Body     string      `json:"body"`
	Config   note.Config `json:"config"`
	Password string      `json:"password,omitempty"`
}

// CreateNoteRequest is the request body for POST /notes.
type CreateNoteRequest struct {
	Section section.Selected `json:"section"`
}

// MoveNoteRequest is the request body for POST /notes-move.
type MoveNoteRequest struct {
	Path    string `json:"path"`
	NewPath string `json:"newPath"`
}

// DuplicateNoteRequest is the request body for POST /notes-duplicate.
type DuplicateNoteRequest struct {
	Path string `json:"path"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes"`
	Total int            `json:"total"`
}

func toListItem(n *note.Note) NoteListItem {
	item := NoteListItem{
		Path:       n.RelativeFilePath,
		Title:      n.Title(),
		Tags:       n.Config.Tags,
		Pinned:     n.Config.Pinned,
		Encrypted:  n.Config.Encryption != nil,
		CreatedAt:  n.Config.CreatedAt,
		ModifiedAt: n.Config.ModifiedAt,
		Checksum:   n.Checksum,
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if !item.Encrypted {
		s := note.GenerateSummary(n.Body)
		item.Summary = s.Text
		item.Images = s.Images
	}
	return item
}

func toDetail(n *note.Note, body string) NoteDetail {
	return NoteDetail{
		Path:      n.RelativeFilePath,
		Title:     n.Title(),
		Body:      body,
		Config:    n.Config,
		Checksum:  n.Checksum,
		Encrypted: n.Config.Encryption != nil,
	}
}

func toNotebookInfo(nb *notebook.Notebook) NotebookInfo {
	return NotebookInfo{
		Name:      nb.Name,
		RootPath:  nb.Root(),
		NoteCount: len(nb.Notes()),
	}
}
