package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/laguz/internal/notebook"
	"github.com/starford/laguz/internal/registry"
)

const (
	attachDir      = "attachments"
	maxUploadBytes = 50 << 20 // 50 MB
)

// AttachmentHandler accepts and serves image attachments stored under a
// notebook's attachments/ directory.
type AttachmentHandler struct {
	reg *registry.Registry
}

// NewAttachmentHandler creates a handler over the notebook registry.
func NewAttachmentHandler(reg *registry.Registry) *AttachmentHandler {
	return &AttachmentHandler{reg: reg}
}

// safeName validates that the filename is a plain name (no path separators,
// no traversal) and returns the attachment-relative path.
func safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	return attachDir + "/" + cleaned, nil
}

func (h *AttachmentHandler) notebook(r *http.Request) (*notebook.Notebook, error) {
	name := r.URL.Query().Get("nb")
	if name != "" {
		return h.reg.GetByName(name)
	}
	all := h.reg.List()
	if len(all) == 1 {
		return all[0], nil
	}
	return nil, errors.New("notebook not found")
}

// ServeFile handles GET /attachments/{filename}.
func (h *AttachmentHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	nb, err := h.notebook(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("notebook not found"))
		return
	}
	rel, err := safeName(chi.URLParam(r, "filename"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	abs := filepath.Join(nb.Root(), filepath.FromSlash(rel))
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

// Upload handles POST /attachments (multipart/form-data, field "file").
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	nb, err := h.notebook(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("notebook not found"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	rel, err := safeName(header.Filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to read upload"))
		return
	}
	if err := nb.Store().Write(rel, content); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to write file"))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"filename": header.Filename,
		"size":     len(content),
		"url":      "/" + rel,
	})
}
