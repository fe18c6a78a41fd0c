package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFS(t *testing.T) (*FS, string) {
	t.Helper()
	root := t.TempDir()
	f, err := NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return f, root
}

func TestNewFSRejectsMissingRoot(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	f, _ := newTestFS(t)
	if err := f.Write("sub/dir/note.md", []byte("# hi\n")); err != nil {
		t.Fatal(err)
	}
	data, err := f.Read("sub/dir/note.md")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# hi\n" {
		t.Errorf("read = %q", data)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	f, root := newTestFS(t)
	if err := f.Write("a.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".laguz-tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSafePathRejectsEscape(t *testing.T) {
	f, _ := newTestFS(t)
	for _, rel := range []string{"../outside.md", "a/../../outside.md", "/etc/passwd"} {
		if _, err := f.Read(rel); err == nil {
			t.Errorf("Read(%q) should fail", rel)
		}
		if err := f.Write(rel, []byte("x")); err == nil {
			t.Errorf("Write(%q) should fail", rel)
		}
	}
}

func TestRenameCreatesParents(t *testing.T) {
	f, _ := newTestFS(t)
	if err := f.Write("a.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := f.Rename("a.md", "deep/nested/b.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Read("a.md"); err == nil {
		t.Error("old path still readable")
	}
	if _, err := f.Read("deep/nested/b.md"); err != nil {
		t.Errorf("new path unreadable: %v", err)
	}
}

func TestStatAndRemove(t *testing.T) {
	f, _ := newTestFS(t)
	if err := f.Write("a.md", []byte("xyz")); err != nil {
		t.Fatal(err)
	}
	info, err := f.Stat("a.md")
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 3 {
		t.Errorf("size = %d", info.Size())
	}
	if err := f.Remove("a.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Stat("a.md"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stat after remove = %v, want ErrNotExist", err)
	}
}

func TestReadDir(t *testing.T) {
	f, _ := newTestFS(t)
	for _, p := range []string{"a.md", "sub/b.md"} {
		if err := f.Write(p, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := f.ReadDir(".")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %d, want file + dir", len(entries))
	}
}
