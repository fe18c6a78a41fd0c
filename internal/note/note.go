// Package note defines the note model and the codec between on-disk
// Markdown files and in-memory values.
package note

import "time"

// Encryption marks a note body as encrypted. Title caches the last known
// plaintext header so listings can show something without decrypting.
type Encryption struct {
	Title string `yaml:"title" json:"title"`
}

// Config is the structured metadata stored in the reserved "note" block of
// a file's front-matter.
type Config struct {
	CreatedAt  time.Time   `yaml:"createdAt" json:"createdAt"`
	ModifiedAt time.Time   `yaml:"modifiedAt" json:"modifiedAt"`
	Tags       []string    `yaml:"tags" json:"tags"`
	Pinned     bool        `yaml:"pinned,omitempty" json:"pinned,omitempty"`
	Encryption *Encryption `yaml:"encryption,omitempty" json:"encryption,omitempty"`
}

// Encrypted reports whether the note body is an encryption envelope.
func (c Config) Encrypted() bool {
	return c.Encryption != nil
}

// Note is one Markdown file. It is a value, not an identity: two reads of
// the same file at different times produce independent Note values.
type Note struct {
	// NotebookRootPath is the absolute root of the owning notebook.
	NotebookRootPath string `json:"notebookRootPath"`
	// RelativeFilePath is the slash-separated path under the root; it is
	// the note's unique key within a notebook and always ends in ".md".
	RelativeFilePath string `json:"relativeFilePath"`
	// Body is the Markdown content without the reserved note block. For an
	// encrypted note this is the cipher envelope, otherwise plaintext.
	Body   string `json:"body"`
	Config Config `json:"config"`
	// Checksum is the SHA-256 of the raw file bytes, used for advisory
	// staleness checks.
	Checksum string `json:"checksum"`
}

// Title returns the display title: the cached encrypted title when the body
// is sealed, otherwise the extracted header.
func (n *Note) Title() string {
	if n.Config.Encryption != nil {
		return n.Config.Encryption.Title
	}
	return ExtractHeader(n.Body)
}
