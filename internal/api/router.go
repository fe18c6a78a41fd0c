package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/laguz/internal/registry"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(reg *registry.Registry, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(reg)
	ah := NewAttachmentHandler(reg)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notebooks.
	r.Get("/notebooks", h.ListNotebooks)
	r.Post("/notebooks/refresh", h.RefreshNotebook)

	// Notes CRUD plus move/duplicate actions.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Post("/notes-duplicate", h.DuplicateNote)
	r.Post("/notes-move", h.MoveNote)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.WriteNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Derived trees.
	r.Get("/tree/directories", h.DirectoryTree)
	r.Get("/tree/tags", h.TagTree)

	// Search.
	r.Get("/search", h.Search)

	// Attachments upload (auth-protected).
	r.Post("/attachments", ah.Upload)
	r.Get("/attachments/{filename}", ah.ServeFile)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
