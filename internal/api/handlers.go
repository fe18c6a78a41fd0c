package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/note"
	"github.com/starford/laguz/internal/notebook"
	"github.com/starford/laguz/internal/registry"
	"github.com/starford/laguz/internal/section"
)

// Handler holds API route handlers over the notebook registry.
type Handler struct {
	reg *registry.Registry
}

// NewHandler creates a new Handler.
func NewHandler(reg *registry.Registry) *Handler {
	return &Handler{reg: reg}
}

// notePath extracts the note path from the URL (everything after the route
// prefix). Supports encoded slashes (e.g. topics%2Fnote.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// resolveNotebook picks the notebook named by the "nb" query parameter
// (the registered notebook name), falling back to the sole registered
// notebook.
func (h *Handler) resolveNotebook(r *http.Request) (*notebook.Notebook, error) {
	name := r.URL.Query().Get("nb")
	if name != "" {
		return h.reg.GetByName(name)
	}
	all := h.reg.List()
	if len(all) == 1 {
		return all[0], nil
	}
	return nil, apperr.ErrNotFound
}

// ListNotebooks handles GET /notebooks.
func (h *Handler) ListNotebooks(w http.ResponseWriter, _ *http.Request) {
	all := h.reg.List()
	infos := make([]NotebookInfo, len(all))
	for i, nb := range all {
		infos[i] = toNotebookInfo(nb)
	}
	writeJSON(w, http.StatusOK, map[string]any{"notebooks": infos})
}

// RefreshNotebook handles POST /notebooks/refresh.
func (h *Handler) RefreshNotebook(w http.ResponseWriter, r *http.Request) {
	nb, err := h.resolveNotebook(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("notebook not found"))
		return
	}
	if err := nb.Refresh(r.Context()); err != nil {
		slog.Error("refresh failed", slog.String("root", nb.Root()), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, toNotebookInfo(nb))
}

// ListNotes handles GET /notes with an optional section filter.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	nb, err := h.resolveNotebook(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("notebook not found"))
		return
	}

	q := r.URL.Query()
	sel := section.Selected{
		Type:             section.Type(q.Get("section")),
		Path:             q.Get("path"),
		NotebookRootPath: nb.Root(),
	}
	if sel.Type == "" {
		sel.Type = section.Notes
	}

	notes := nb.FilterNotes(sel)
	items := make([]NoteListItem, len(notes))
	for i, n := range notes {
		items[i] = toListItem(n)
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

// GetNote handles GET /notes/*. A "password" query parameter requests
// decryption of an encrypted body.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	nb, err := h.resolveNotebook(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("notebook not found"))
		return
	}
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}

	n, err := nb.GetNote(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrNotMarkdown) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get note failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	body := n.Body
	if _, wantsDecrypt := r.URL.Query()["password"]; wantsDecrypt && n.Config.Encryption != nil {
		body, err = note.DecryptBody(n.Body, r.URL.Query().Get("password"))
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody("decryption failed"))
			return
		}
	}
	writeJSON(w, http.StatusOK, toDetail(n, body))
}

// WriteNote handles PUT /notes/*. The If-Match header, when set, is checked
// against the current on-disk checksum before writing.
func (h *Handler) WriteNote(w http.ResponseWriter, r *http.Request) {
	nb, err := h.resolveNotebook(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("notebook not found"))
		return
	}
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req WriteNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	_, statErr := nb.Store().Stat(path)
	created := statErr != nil

	cfg, err := nb.WriteNote(r.Context(), path, req.Body, req.Config, req.Password, ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotMarkdown):
			writeJSON(w, http.StatusBadRequest, errorBody("path must end in .md"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		default:
			slog.Error("write note failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"path": path, "config": cfg})
}

// CreateNote handles POST /notes: a new empty note derived from a section.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	nb, err := h.resolveNotebook(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("notebook not found"))
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	n, err := nb.CreateNewNote(r.Context(), req.Section)
	if err != nil {
		slog.Error("create note failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, toDetail(n, n.Body))
}

// DuplicateNote handles POST /notes-duplicate.
func (h *Handler) DuplicateNote(w http.ResponseWriter, r *http.Request) {
	nb, err := h.resolveNotebook(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("notebook not found"))
		return
	}

	var req DuplicateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}

	n, err := nb.DuplicateNote(r.Context(), req.Path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("duplicate failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, toDetail(n, n.Body))
}

// MoveNote handles POST /notes-move.
func (h *Handler) MoveNote(w http.ResponseWriter, r *http.Request) {
	nb, err := h.resolveNotebook(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("notebook not found"))
		return
	}

	var req MoveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" || req.NewPath == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and newPath are required"))
		return
	}

	n, err := nb.ChangeNoteFilePath(r.Context(), req.Path, req.NewPath)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrPathConflict):
			writeJSON(w, http.StatusConflict, errorBody("destination already exists"))
		case errors.Is(err, apperr.ErrNotMarkdown):
			writeJSON(w, http.StatusBadRequest, errorBody("newPath must end in .md"))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		default:
			slog.Error("move failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, toDetail(n, n.Body))
}

// DeleteNote handles DELETE /notes/*.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	nb, err := h.resolveNotebook(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("notebook not found"))
		return
	}
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := nb.DeleteNote(r.Context(), path); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DirectoryTree handles GET /tree/directories.
func (h *Handler) DirectoryTree(w http.ResponseWriter, r *http.Request) {
	nb, err := h.resolveNotebook(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("notebook not found"))
		return
	}
	writeJSON(w, http.StatusOK, nb.DirectoryTree())
}

// TagTree handles GET /tree/tags.
func (h *Handler) TagTree(w http.ResponseWriter, r *http.Request) {
	nb, err := h.resolveNotebook(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("notebook not found"))
		return
	}
	writeJSON(w, http.StatusOK, nb.TagTree())
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	nb, err := h.resolveNotebook(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("notebook not found"))
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	notes := nb.SearchNotes(q)
	items := make([]NoteListItem, len(notes))
	for i, n := range notes {
		items[i] = toListItem(n)
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}
