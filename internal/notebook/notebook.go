// Package notebook owns one root directory of Markdown notes: the in-memory
// note cache, the derived directory and tag trees, and every mutation that
// keeps them consistent with the filesystem.
package notebook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/note"
	"github.com/starford/laguz/internal/section"
	"github.com/starford/laguz/internal/storage"
)

// EventKind classifies a notebook change.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventUpdated   EventKind = "updated"
	EventDeleted   EventKind = "deleted"
	EventRenamed   EventKind = "renamed"
	EventRefreshed EventKind = "refreshed"
)

// timeNow is swapped out by tests that pin "now".
var timeNow = time.Now

// Event is delivered synchronously to observers after a mutation.
type Event struct {
	Kind             EventKind `json:"kind"`
	RelPath          string    `json:"relPath"`
	NotebookRootPath string    `json:"notebookRootPath"`
}

// Notebook manages one root directory. Construction is cheap; InitData does
// the indexing and must be called (and may be re-called) explicitly.
type Notebook struct {
	Name string

	store  storage.Provider
	logger *slog.Logger

	mu      sync.RWMutex
	notes   []*note.Note
	dirTree *Directory
	tagTree *TagNode

	obsMu     sync.Mutex
	observers []func(Event)
}

// New creates a Notebook over root. The root must be an existing directory.
func New(name, root string, logger *slog.Logger) (*Notebook, error) {
	store, err := storage.NewFS(root)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notebook{Name: name, store: store, logger: logger}, nil
}

// Root returns the absolute, canonical notebook root path.
func (nb *Notebook) Root() string {
	return nb.store.Root()
}

// Store exposes the underlying filesystem provider.
func (nb *Notebook) Store() storage.Provider {
	return nb.store
}

// OnChanged registers an observer invoked synchronously after any mutation
// that changes the index.
func (nb *Notebook) OnChanged(fn func(Event)) {
	nb.obsMu.Lock()
	nb.observers = append(nb.observers, fn)
	nb.obsMu.Unlock()
}

func (nb *Notebook) notify(kind EventKind, relPath string) {
	ev := Event{Kind: kind, RelPath: relPath, NotebookRootPath: nb.Root()}
	nb.obsMu.Lock()
	obs := make([]func(Event), len(nb.observers))
	copy(obs, nb.observers)
	nb.obsMu.Unlock()
	for _, fn := range obs {
		fn(ev)
	}
}

// InitData rebuilds the note cache and both trees from disk. It is
// idempotent and safe to re-run for a manual refresh.
func (nb *Notebook) InitData(ctx context.Context) error {
	notes := nb.listNotes(ctx, ".", true)

	var (
		dirTree *Directory
		tagTree *TagNode
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		dirTree = buildDirectoryTree(notes)
		return nil
	})
	g.Go(func() error {
		tagTree = buildTagTree(notes)
		return nil
	})
	_ = g.Wait()

	nb.mu.Lock()
	nb.notes = notes
	nb.dirTree = dirTree
	nb.tagTree = tagTree
	nb.mu.Unlock()

	nb.logger.Debug("notebook: indexed",
		slog.String("root", nb.Root()),
		slog.Int("notes", len(notes)))
	return nil
}

// Notes returns a snapshot of the cached notes. Order is not significant.
func (nb *Notebook) Notes() []*note.Note {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	out := make([]*note.Note, len(nb.notes))
	copy(out, nb.notes)
	return out
}

// DirectoryTree returns the cached directory hierarchy, rebuilding it
// lazily after an invalidation.
func (nb *Notebook) DirectoryTree() *Directory {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	if nb.dirTree == nil {
		nb.dirTree = buildDirectoryTree(nb.notes)
	}
	return nb.dirTree
}

// TagTree returns the cached tag hierarchy, rebuilding it lazily after an
// invalidation.
func (nb *Notebook) TagTree() *TagNode {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	if nb.tagTree == nil {
		nb.tagTree = buildTagTree(nb.notes)
	}
	return nb.tagTree
}

// FilterNotes projects the cached notes for one section.
func (nb *Notebook) FilterNotes(sel section.Selected) []*note.Note {
	return section.Filter(nb.Notes(), sel, timeNow())
}

// GetNote reads a note straight from disk, bypassing the cache, so it
// reflects concurrent external edits. Missing files yield ErrNotFound;
// non-Markdown paths yield ErrNotMarkdown.
func (nb *Notebook) GetNote(_ context.Context, relPath string) (*note.Note, error) {
	info, err := nb.store.Stat(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() || !strings.HasSuffix(relPath, ".md") {
		return nil, apperr.ErrNotMarkdown
	}
	raw, err := nb.store.Read(relPath)
	if err != nil {
		return nil, err
	}
	return note.Decode(nb.Root(), relPath, raw, info)
}

// WriteNote encodes and persists a note as a full-file overwrite, then
// reconciles the cache. ifMatch, when non-empty, is an advisory staleness
// check against the current on-disk checksum; a mismatch fails with
// ErrConflict and writes nothing. The finalized config (with refreshed
// ModifiedAt) is returned.
func (nb *Notebook) WriteNote(ctx context.Context, relPath, body string, cfg note.Config, password, ifMatch string) (note.Config, error) {
	if !strings.HasSuffix(relPath, ".md") {
		return cfg, apperr.ErrNotMarkdown
	}

	if ifMatch != "" {
		existing, err := nb.store.Read(relPath)
		if err == nil && !checksum.Matches(ifMatch, existing) {
			return cfg, apperr.ErrConflict
		}
	}

	// A caller omitting createdAt must not reset an existing note's.
	if cfg.CreatedAt.IsZero() {
		if prev, err := nb.GetNote(ctx, relPath); err == nil {
			cfg.CreatedAt = prev.Config.CreatedAt
		}
	}

	data, finalCfg, err := note.Encode(body, cfg, password)
	if err != nil {
		return cfg, err
	}
	if err := nb.store.Write(relPath, data); err != nil {
		return cfg, err
	}

	n, err := nb.GetNote(ctx, relPath)
	if err != nil {
		return finalCfg, err
	}
	nb.reconcileNote(n)
	return finalCfg, nil
}

// DeleteNote removes the note's file and prunes the cache.
func (nb *Notebook) DeleteNote(_ context.Context, relPath string) error {
	if err := nb.store.Remove(relPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	nb.dropNote(relPath)
	nb.notify(EventDeleted, relPath)
	return nil
}

// ChangeNoteFilePath moves a note on disk and returns it re-read from the
// new location. An existing destination fails with ErrPathConflict; the
// source stays untouched.
func (nb *Notebook) ChangeNoteFilePath(ctx context.Context, oldRelPath, newRelPath string) (*note.Note, error) {
	if !strings.HasSuffix(newRelPath, ".md") {
		return nil, apperr.ErrNotMarkdown
	}
	if _, err := nb.store.Stat(newRelPath); err == nil {
		return nil, fmt.Errorf("notebook: move %s to %s: %w", oldRelPath, newRelPath, apperr.ErrPathConflict)
	}
	if err := nb.store.Rename(oldRelPath, newRelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	n, err := nb.GetNote(ctx, newRelPath)
	if err != nil {
		return nil, err
	}

	nb.mu.Lock()
	nb.removeLocked(oldRelPath)
	nb.notes = append(nb.notes, n)
	nb.dirTree = nil
	nb.tagTree = nil
	nb.mu.Unlock()

	nb.notify(EventRenamed, newRelPath)
	return n, nil
}

// DuplicateNote copies a note byte-for-byte to a generated filename in the
// same directory and returns the new note.
func (nb *Notebook) DuplicateNote(ctx context.Context, relPath string) (*note.Note, error) {
	raw, err := nb.store.Read(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	newRelPath := generatedName(path.Dir(relPath))
	if err := nb.store.Write(newRelPath, raw); err != nil {
		return nil, err
	}

	n, err := nb.GetNote(ctx, newRelPath)
	if err != nil {
		return nil, err
	}
	nb.insertNote(n)
	nb.notify(EventCreated, newRelPath)
	return n, nil
}

// CreateNewNote writes an empty note into the location implied by the
// target section: the section's directory for Directory sections, else the
// notebook root; Tag sections pre-seed the new note's tags.
func (nb *Notebook) CreateNewNote(ctx context.Context, sel section.Selected) (*note.Note, error) {
	dir := "."
	if sel.Type == section.Directory && sel.Path != "" {
		dir = sel.Path
	}
	var tags []string
	if sel.Type == section.Tag && sel.Path != "" {
		tags = []string{sel.Path}
	}

	relPath := generatedName(dir)
	now := timeNow()
	cfg := note.Config{CreatedAt: now, ModifiedAt: now, Tags: tags}

	data, _, err := note.Encode("", cfg, "")
	if err != nil {
		return nil, err
	}
	if err := nb.store.Write(relPath, data); err != nil {
		return nil, err
	}

	n, err := nb.GetNote(ctx, relPath)
	if err != nil {
		return nil, err
	}
	nb.insertNote(n)
	nb.notify(EventCreated, relPath)
	return n, nil
}

// SearchNotes scans titles and plaintext bodies for a case-insensitive
// substring match. Encrypted bodies are skipped; their cached titles still
// match.
func (nb *Notebook) SearchNotes(query string) []*note.Note {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []*note.Note
	for _, n := range nb.Notes() {
		if strings.Contains(strings.ToLower(n.Title()), q) {
			out = append(out, n)
			continue
		}
		if n.Config.Encryption == nil && strings.Contains(strings.ToLower(n.Body), q) {
			out = append(out, n)
		}
	}
	return out
}

// reconcileNote folds a freshly read note into the cache, invalidating the
// trees only when the mutation changed structure: a previously unknown file
// invalidates both trees, a tag-set change invalidates the tag tree, and
// pinned/encryption/body-only changes touch neither.
func (nb *Notebook) reconcileNote(n *note.Note) {
	nb.mu.Lock()
	var old *note.Note
	for _, cached := range nb.notes {
		if cached.RelativeFilePath == n.RelativeFilePath {
			old = cached
			break
		}
	}

	kind := EventUpdated
	switch {
	case old == nil:
		nb.notes = append(nb.notes, n)
		nb.dirTree = nil
		nb.tagTree = nil
		kind = EventCreated
	case strings.Join(old.Config.Tags, "\x00") != strings.Join(n.Config.Tags, "\x00"):
		nb.replaceLocked(n)
		nb.tagTree = nil
	default:
		nb.replaceLocked(n)
	}
	nb.mu.Unlock()

	nb.notify(kind, n.RelativeFilePath)
}

func (nb *Notebook) insertNote(n *note.Note) {
	nb.mu.Lock()
	nb.removeLocked(n.RelativeFilePath)
	nb.notes = append(nb.notes, n)
	nb.dirTree = nil
	nb.tagTree = nil
	nb.mu.Unlock()
}

func (nb *Notebook) dropNote(relPath string) {
	nb.mu.Lock()
	nb.removeLocked(relPath)
	nb.dirTree = nil
	nb.tagTree = nil
	nb.mu.Unlock()
}

// findNote returns the cached note at relPath, or nil.
func (nb *Notebook) findNote(relPath string) *note.Note {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	for _, cached := range nb.notes {
		if cached.RelativeFilePath == relPath {
			return cached
		}
	}
	return nil
}

// removeLocked deletes a cache entry by path. Caller holds mu.
func (nb *Notebook) removeLocked(relPath string) {
	for i, cached := range nb.notes {
		if cached.RelativeFilePath == relPath {
			nb.notes = append(nb.notes[:i], nb.notes[i+1:]...)
			return
		}
	}
}

// replaceLocked swaps the cache entry matching n's path. Caller holds mu.
func (nb *Notebook) replaceLocked(n *note.Note) {
	for i, cached := range nb.notes {
		if cached.RelativeFilePath == n.RelativeFilePath {
			nb.notes[i] = n
			return
		}
	}
	nb.notes = append(nb.notes, n)
}

// generatedName builds a fresh unnamed_<id>.md path under dir.
func generatedName(dir string) string {
	name := "unnamed_" + xid.New().String() + ".md"
	if dir == "" || dir == "." {
		return name
	}
	return path.Join(dir, name)
}
