package notebook

import (
	"context"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/starford/laguz/internal/note"
)

// walkLimit bounds the concurrent stat/read fan-out of a directory walk.
const walkLimit = 16

// listNotes enumerates the .md notes under dir, recursing into
// subdirectories (except .git) when recursive is set. Sibling entries are
// processed concurrently; each goroutine writes a disjoint result slot, so
// aggregation is race-free. Unreadable directories yield an empty subtree
// instead of failing the walk, and files that do not decode are skipped.
//
// The resulting order is a multiset property: callers that need a stable
// sequence must sort explicitly.
func (nb *Notebook) listNotes(ctx context.Context, dir string, recursive bool) []*note.Note {
	entries, err := nb.store.ReadDir(dir)
	if err != nil {
		return nil
	}

	results := make([][]*note.Note, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(walkLimit)

	for i, entry := range entries {
		rel := entry.Name()
		if dir != "." && dir != "" {
			rel = path.Join(dir, entry.Name())
		}

		if entry.IsDir() {
			if !recursive || entry.Name() == ".git" {
				continue
			}
			g.Go(func() error {
				results[i] = nb.listNotes(ctx, rel, recursive)
				return nil
			})
			continue
		}

		g.Go(func() error {
			n, err := nb.readNote(rel)
			if err == nil {
				results[i] = []*note.Note{n}
			}
			return nil
		})
	}
	_ = g.Wait()

	var notes []*note.Note
	for _, sub := range results {
		notes = append(notes, sub...)
	}
	return notes
}

// readNote stats and decodes a single note from disk.
func (nb *Notebook) readNote(rel string) (*note.Note, error) {
	info, err := nb.store.Stat(rel)
	if err != nil {
		return nil, err
	}
	raw, err := nb.store.Read(rel)
	if err != nil {
		return nil, err
	}
	return note.Decode(nb.store.Root(), rel, raw, info)
}
