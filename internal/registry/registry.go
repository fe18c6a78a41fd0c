// Package registry owns the set of open notebooks, keyed by canonical root
// path, and resolves absolute file paths to their owning notebook.
package registry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/notebook"
)

// Registry is an explicit instance owned by whatever composes the system;
// there is no ambient singleton.
type Registry struct {
	logger *slog.Logger

	mu        sync.RWMutex
	notebooks []*notebook.Notebook
}

// New creates an empty registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Add registers a notebook rooted at rootPath, returning the existing
// instance when the path is already registered. InitData is NOT called;
// construction is cheap, indexing is the caller's move.
func (r *Registry) Add(name, rootPath string) (*notebook.Notebook, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("registry: resolve root: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, nb := range r.notebooks {
		if nb.Root() == abs {
			return nb, nil
		}
	}

	nb, err := notebook.New(name, abs, r.logger)
	if err != nil {
		return nil, err
	}
	r.notebooks = append(r.notebooks, nb)
	return nb, nil
}

// Remove drops the notebook registered at rootPath. Disk is untouched.
func (r *Registry) Remove(rootPath string) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, nb := range r.notebooks {
		if nb.Root() == abs {
			r.notebooks = append(r.notebooks[:i], r.notebooks[i+1:]...)
			return
		}
	}
}

// Get returns the notebook registered at rootPath, or ErrNotFound.
func (r *Registry) Get(rootPath string) (*notebook.Notebook, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("registry: resolve root: %w", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, nb := range r.notebooks {
		if nb.Root() == abs {
			return nb, nil
		}
	}
	return nil, fmt.Errorf("registry: notebook %s: %w", rootPath, apperr.ErrNotFound)
}

// GetByName returns the notebook registered under name, or ErrNotFound.
func (r *Registry) GetByName(name string) (*notebook.Notebook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, nb := range r.notebooks {
		if nb.Name == name {
			return nb, nil
		}
	}
	return nil, fmt.Errorf("registry: notebook %s: %w", name, apperr.ErrNotFound)
}

// List returns a snapshot of the registered notebooks.
func (r *Registry) List() []*notebook.Notebook {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*notebook.Notebook, len(r.notebooks))
	copy(out, r.notebooks)
	return out
}

// ResolveAbsolutePath finds the first notebook whose root contains absPath
// and returns it with the slash-separated relative path. A path outside
// every registered notebook is a user-facing ErrNotFound.
func (r *Registry) ResolveAbsolutePath(absPath string) (*notebook.Notebook, string, error) {
	abs, err := filepath.Abs(absPath)
	if err != nil {
		return nil, "", fmt.Errorf("registry: resolve path: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, nb := range r.notebooks {
		root := nb.Root()
		if abs == root {
			return nb, ".", nil
		}
		if strings.HasPrefix(abs, root+string(os.PathSeparator)) {
			rel, relErr := filepath.Rel(root, abs)
			if relErr != nil {
				continue
			}
			return nb, filepath.ToSlash(rel), nil
		}
	}
	return nil, "", fmt.Errorf("registry: no notebook contains %s: %w", absPath, apperr.ErrNotFound)
}
