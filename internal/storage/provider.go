// Package storage defines the notebook file-system abstraction.
package storage

import "io/fs"

// Provider is the interface for notebook file operations. All paths are
// relative to the notebook root; implementations must reject paths that
// escape it.
type Provider interface {
	// Root returns the absolute, canonical notebook root.
	Root() string
	// Stat returns file metadata for the entry at rel.
	Stat(rel string) (fs.FileInfo, error)
	// ReadDir lists the entries of the directory at rel.
	ReadDir(rel string) ([]fs.DirEntry, error)
	// Read returns the raw bytes of the file at rel.
	Read(rel string) ([]byte, error)
	// Write atomically replaces the content of the file at rel, creating
	// parent directories as needed.
	Write(rel string, content []byte) error
	// Rename moves oldRel to newRel.
	Rename(oldRel, newRel string) error
	// Remove deletes the file at rel.
	Remove(rel string) error
}
