// Package section defines the note-listing query descriptors and the
// filtering predicate projecting a notebook's notes for one section.
package section

import (
	"regexp"
	"strings"
	"time"

	"github.com/starford/laguz/internal/note"
)

// Type enumerates the selectable sections.
type Type string

const (
	Notebook   Type = "Notebook"
	Notes      Type = "Notes"
	Today      Type = "Today"
	Todo       Type = "Todo"
	Tagged     Type = "Tagged"
	Untagged   Type = "Untagged"
	Conflicted Type = "Conflicted" // reserved
	Encrypted  Type = "Encrypted"
	Wiki       Type = "Wiki" // reserved
	Error      Type = "Error"
	Tag        Type = "Tag"
	Directory  Type = "Directory"
)

// Selected describes one section query. It is not persisted.
type Selected struct {
	Type Type `json:"type"`
	// Path is the tag path for Tag sections and the directory path for
	// Directory sections; unused otherwise.
	Path string `json:"path"`
	// NotebookRootPath identifies the notebook the query targets.
	NotebookRootPath string `json:"notebookRootPath"`
}

const oneDay = 24 * time.Hour

// todoRe matches checkbox list items: *, - or "N." followed by a box.
var todoRe = regexp.MustCompile(`(\*|-|\d+\.)\s\[(\s+|x|X)\]\s`)

// Filter projects notes for sel. It is a pure function of (notes, sel, now);
// input order is preserved.
func Filter(notes []*note.Note, sel Selected, now time.Time) []*note.Note {
	switch sel.Type {
	case Notebook, Notes, Wiki:
		return notes
	case Today:
		return filter(notes, func(n *note.Note) bool {
			return now.Sub(n.Config.ModifiedAt) <= oneDay
		})
	case Todo:
		return filter(notes, func(n *note.Note) bool {
			return todoRe.MatchString(n.Body)
		})
	case Tagged:
		return filter(notes, func(n *note.Note) bool {
			return len(n.Config.Tags) > 0
		})
	case Untagged:
		return filter(notes, func(n *note.Note) bool {
			return len(n.Config.Tags) == 0
		})
	case Tag:
		prefix := sel.Path + "/"
		return filter(notes, func(n *note.Note) bool {
			for _, tag := range n.Config.Tags {
				if strings.HasPrefix(strings.ToLower(tag)+"/", prefix) {
					return true
				}
			}
			return false
		})
	case Encrypted:
		return filter(notes, func(n *note.Note) bool {
			return n.Config.Encryption != nil
		})
	default: // Directory and reserved types
		prefix := sel.Path + "/"
		return filter(notes, func(n *note.Note) bool {
			return strings.HasPrefix(n.RelativeFilePath, prefix)
		})
	}
}

func filter(notes []*note.Note, keep func(*note.Note) bool) []*note.Note {
	out := make([]*note.Note, 0, len(notes))
	for _, n := range notes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}
