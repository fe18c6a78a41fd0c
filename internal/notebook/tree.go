package notebook

import (
	"path"
	"sort"
	"strings"

	"github.com/starford/laguz/internal/note"
)

// Directory is one folder under the notebook root. The root node has name
// and path "."; only folders that (directly or transitively) contain notes
// are represented.
type Directory struct {
	Name     string       `json:"name"`
	Path     string       `json:"path"`
	Children []*Directory `json:"children"`
}

// TagNode is one segment of a normalized tag path. Children are sorted by
// name at every level.
type TagNode struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Children []*TagNode `json:"children"`
}

// buildDirectoryTree derives the directory hierarchy from the set of
// distinct parent directories of all notes.
func buildDirectoryTree(notes []*note.Note) *Directory {
	root := &Directory{Name: ".", Path: ".", Children: []*Directory{}}

	parents := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		parents[path.Dir(n.RelativeFilePath)] = struct{}{}
	}

	for parent := range parents {
		if parent == "." {
			continue
		}
		dir := root
		segments := strings.Split(parent, "/")
		for i, seg := range segments {
			child := findDirectory(dir.Children, seg)
			if child == nil {
				child = &Directory{
					Name:     seg,
					Path:     strings.Join(segments[:i+1], "/"),
					Children: []*Directory{},
				}
				dir.Children = append(dir.Children, child)
			}
			dir = child
		}
	}

	return root
}

func findDirectory(dirs []*Directory, name string) *Directory {
	for _, d := range dirs {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// buildTagTree explodes every note's tag list on "/" and merges the
// normalized segments into a tree. Each parent's children are re-sorted as
// soon as a node is inserted.
func buildTagTree(notes []*note.Note) *TagNode {
	root := &TagNode{Name: ".", Path: ".", Children: []*TagNode{}}

	for _, n := range notes {
		for _, tag := range n.Config.Tags {
			node := root
			for _, seg := range strings.Split(tag, "/") {
				seg = normalizeTagSegment(seg)
				child := findTagNode(node.Children, seg)
				if child == nil {
					p := seg
					if node.Name != "." {
						p = node.Path + "/" + seg
					}
					child = &TagNode{Name: seg, Path: p, Children: []*TagNode{}}
					node.Children = append(node.Children, child)
					sort.Slice(node.Children, func(i, j int) bool {
						return node.Children[i].Name < node.Children[j].Name
					})
				}
				node = child
			}
		}
	}

	return root
}

func findTagNode(nodes []*TagNode, name string) *TagNode {
	for _, n := range nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

var spaceRun = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// normalizeTagSegment lowercases a segment, collapses whitespace runs to
// single spaces and trims the edges.
func normalizeTagSegment(seg string) string {
	seg = strings.ToLower(spaceRun.Replace(seg))
	for strings.Contains(seg, "  ") {
		seg = strings.ReplaceAll(seg, "  ", " ")
	}
	return strings.TrimSpace(seg)
}
