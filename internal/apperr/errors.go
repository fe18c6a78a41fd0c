// Package apperr defines the sentinel errors shared across the engine.
package apperr

import "errors"

var (
	// ErrNotFound means a path does not resolve to a registered notebook,
	// or a note does not exist on disk.
	ErrNotFound = errors.New("not found")
	// ErrNotMarkdown means a path fails the ".md regular file" check.
	// Read paths treat it as "no note here"; write and rename paths treat
	// it as a validation failure.
	ErrNotMarkdown = errors.New("not a markdown file")
	// ErrPathConflict means a rename or move target already exists.
	ErrPathConflict = errors.New("destination already exists")
	// ErrConflict means an advisory staleness check failed: the on-disk
	// content no longer matches the checksum the caller last saw.
	ErrConflict = errors.New("conflict")
	// ErrDecryptionFailed means a wrong password or a corrupted envelope.
	// Retryable; never fatal.
	ErrDecryptionFailed = errors.New("decryption failed")
)
