package registry

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/testutil"
)

func newTestRegistry() *Registry {
	return New(testutil.Logger())
}

func TestAddIsIdempotentByRoot(t *testing.T) {
	r := newTestRegistry()
	root := t.TempDir()

	a, err := r.Add("first", root)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Add("second", root)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("same root registered twice")
	}
	if len(r.List()) != 1 {
		t.Errorf("list = %d, want 1", len(r.List()))
	}
}

func TestAddMissingRoot(t *testing.T) {
	r := newTestRegistry()
	if _, err := r.Add("x", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for nonexistent root")
	}
}

func TestGetAndRemove(t *testing.T) {
	r := newTestRegistry()
	root := t.TempDir()
	if _, err := r.Add("nb", root); err != nil {
		t.Fatal(err)
	}

	nb, err := r.Get(root)
	if err != nil {
		t.Fatal(err)
	}
	if nb.Name != "nb" {
		t.Errorf("name = %q", nb.Name)
	}

	r.Remove(root)
	if _, err := r.Get(root); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("after remove err = %v, want ErrNotFound", err)
	}
	if _, err := r.Get(t.TempDir()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown root err = %v, want ErrNotFound", err)
	}
}

func TestGetByName(t *testing.T) {
	r := newTestRegistry()
	if _, err := r.Add("work", t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Add("home", t.TempDir()); err != nil {
		t.Fatal(err)
	}

	nb, err := r.GetByName("home")
	if err != nil {
		t.Fatal(err)
	}
	if nb.Name != "home" {
		t.Errorf("name = %q", nb.Name)
	}
	if _, err := r.GetByName("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown name err = %v, want ErrNotFound", err)
	}
}

func TestResolveAbsolutePath(t *testing.T) {
	r := newTestRegistry()
	rootA := t.TempDir()
	rootB := t.TempDir()
	if _, err := r.Add("a", rootA); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Add("b", rootB); err != nil {
		t.Fatal(err)
	}

	nb, rel, err := r.ResolveAbsolutePath(filepath.Join(rootB, "sub", "x.md"))
	if err != nil {
		t.Fatal(err)
	}
	if nb.Name != "b" || rel != "sub/x.md" {
		t.Errorf("resolved %q in %q", rel, nb.Name)
	}

	nb, rel, err = r.ResolveAbsolutePath(rootA)
	if err != nil {
		t.Fatal(err)
	}
	if nb.Name != "a" || rel != "." {
		t.Errorf("root resolves to %q in %q", rel, nb.Name)
	}

	// A sibling directory sharing a name prefix must not match.
	if _, _, err := r.ResolveAbsolutePath(rootA + "xtra/file.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("prefix sibling err = %v, want ErrNotFound", err)
	}
}
