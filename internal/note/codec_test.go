package note

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/crypt"
)

func statFor(t *testing.T, content string) fs.FileInfo {
	t.Helper()
	path := filepath.Join(t.TempDir(), "note.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return info
}

func TestDecodePlainFile(t *testing.T) {
	raw := "# Hello\n\nworld\n"
	info := statFor(t, raw)

	n, err := Decode("/nb", "a.md", []byte(raw), info)
	if err != nil {
		t.Fatal(err)
	}
	if n.Body != raw {
		t.Errorf("body = %q", n.Body)
	}
	if !n.Config.CreatedAt.Equal(info.ModTime()) || !n.Config.ModifiedAt.Equal(info.ModTime()) {
		t.Errorf("timestamps should default to mtime: %+v", n.Config)
	}
	if n.Config.Tags == nil || len(n.Config.Tags) != 0 {
		t.Errorf("tags = %#v, want empty non-nil slice", n.Config.Tags)
	}
	if n.Checksum == "" {
		t.Error("checksum not set")
	}
	if n.Title() != "Hello" {
		t.Errorf("title = %q", n.Title())
	}
}

func TestDecodeNoteBlock(t *testing.T) {
	raw := "---\nnote:\n  tags: [work, ideas]\n  pinned: true\n  createdAt: 2025-01-02T03:04:05Z\n  modifiedAt: 2025-01-02T03:04:05Z\n---\nbody\n"
	n, err := Decode("/nb", "a.md", []byte(raw), statFor(t, raw))
	if err != nil {
		t.Fatal(err)
	}
	if n.Body != "body\n" {
		t.Errorf("body = %q, note block should be stripped", n.Body)
	}
	if len(n.Config.Tags) != 2 || n.Config.Tags[0] != "work" {
		t.Errorf("tags = %v", n.Config.Tags)
	}
	if !n.Config.Pinned {
		t.Error("pinned not decoded")
	}
	want := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if !n.Config.CreatedAt.Equal(want) {
		t.Errorf("createdAt = %v, want %v", n.Config.CreatedAt, want)
	}
}

func TestDecodePartialNoteBlockKeepsDefaults(t *testing.T) {
	raw := "---\nnote:\n  tags: [only]\n---\nbody\n"
	info := statFor(t, raw)
	n, err := Decode("/nb", "a.md", []byte(raw), info)
	if err != nil {
		t.Fatal(err)
	}
	if len(n.Config.Tags) != 1 || n.Config.Tags[0] != "only" {
		t.Errorf("tags = %v", n.Config.Tags)
	}
	if !n.Config.CreatedAt.Equal(info.ModTime()) {
		t.Errorf("createdAt = %v, want stat default %v", n.Config.CreatedAt, info.ModTime())
	}
}

func TestDecodeKeepsIncidentalFrontMatter(t *testing.T) {
	raw := "---\ntitle: Mine\nnote:\n  tags: [x]\n---\nbody\n"
	n, err := Decode("/nb", "a.md", []byte(raw), statFor(t, raw))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(n.Body, "title: Mine") {
		t.Errorf("incidental front-matter lost: %q", n.Body)
	}
	if strings.Contains(n.Body, "note:") {
		t.Errorf("reserved block leaked into body: %q", n.Body)
	}
	if !strings.HasSuffix(n.Body, "body\n") {
		t.Errorf("content lost: %q", n.Body)
	}
}

func TestDecodeRejectsNonMarkdown(t *testing.T) {
	info := statFor(t, "x")
	if _, err := Decode("/nb", "a.txt", []byte("x"), info); !errors.Is(err, apperr.ErrNotMarkdown) {
		t.Errorf("err = %v, want ErrNotMarkdown", err)
	}
	dir, err := os.Stat(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode("/nb", "a.md", nil, dir); !errors.Is(err, apperr.ErrNotMarkdown) {
		t.Errorf("err for dir = %v, want ErrNotMarkdown", err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cfg := Config{
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Tags:      []string{"a/b"},
		Pinned:    true,
	}
	raw, outCfg, err := Encode("# Title\n\ncontent\n", cfg, "")
	if err != nil {
		t.Fatal(err)
	}
	if outCfg.ModifiedAt.IsZero() {
		t.Error("ModifiedAt not refreshed")
	}

	n, err := Decode("/nb", "a.md", raw, statFor(t, string(raw)))
	if err != nil {
		t.Fatal(err)
	}
	if n.Body != "# Title\n\ncontent\n" {
		t.Errorf("body = %q", n.Body)
	}
	if len(n.Config.Tags) != 1 || n.Config.Tags[0] != "a/b" || !n.Config.Pinned {
		t.Errorf("config = %+v", n.Config)
	}
	if !n.Config.CreatedAt.Equal(cfg.CreatedAt) {
		t.Errorf("createdAt = %v", n.Config.CreatedAt)
	}
}

func TestEncodeZeroConfigDefaultsCreatedAt(t *testing.T) {
	raw, cfg, err := Encode("# New\n\nbody\n", Config{}, "")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "0001-01-01") {
		t.Fatalf("zero time persisted: %q", raw)
	}
	if cfg.CreatedAt.IsZero() || !cfg.CreatedAt.Equal(cfg.ModifiedAt) {
		t.Errorf("createdAt = %v, want the write instant", cfg.CreatedAt)
	}

	n, err := Decode("/nb", "a.md", raw, statFor(t, string(raw)))
	if err != nil {
		t.Fatal(err)
	}
	if n.Config.CreatedAt.IsZero() {
		t.Error("decoded createdAt is the zero time")
	}
}

func TestEncodeInlineBlockWins(t *testing.T) {
	body := "---\nnote:\n  tags: [inline]\n---\ncontent\n"
	raw, outCfg, err := Encode(body, Config{Tags: []string{"outer"}}, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(outCfg.Tags) != 1 || outCfg.Tags[0] != "inline" {
		t.Errorf("tags = %v, want inline block to win", outCfg.Tags)
	}
	if !strings.Contains(string(raw), "inline") {
		t.Errorf("persisted bytes missing inline tag: %s", raw)
	}
}

func TestEncodeEncrypted(t *testing.T) {
	cfg := Config{Tags: []string{}, Encryption: &Encryption{}}
	raw, outCfg, err := Encode("# Secret note\n\nhidden\n", cfg, "pw")
	if err != nil {
		t.Fatal(err)
	}
	if outCfg.Encryption == nil || outCfg.Encryption.Title != "Secret note" {
		t.Errorf("encryption title = %+v", outCfg.Encryption)
	}
	if strings.Contains(string(raw), "hidden") {
		t.Errorf("plaintext leaked into file: %s", raw)
	}

	n, err := Decode("/nb", "a.md", raw, statFor(t, string(raw)))
	if err != nil {
		t.Fatal(err)
	}
	if !n.Config.Encrypted() {
		t.Fatal("decoded note not marked encrypted")
	}
	if !crypt.IsEnvelope(n.Body) {
		t.Fatalf("body is not an envelope: %q", n.Body)
	}
	if n.Title() != "Secret note" {
		t.Errorf("title = %q, want cached plaintext header", n.Title())
	}

	plain, err := DecryptBody(n.Body, "pw")
	if err != nil {
		t.Fatal(err)
	}
	if plain != "# Secret note\n\nhidden\n" {
		t.Errorf("decrypted = %q", plain)
	}
	if _, err := DecryptBody(n.Body, "bad"); !errors.Is(err, apperr.ErrDecryptionFailed) {
		t.Errorf("wrong password err = %v", err)
	}
}

func TestDecryptBodyPlaintextPassthrough(t *testing.T) {
	got, err := DecryptBody("just text", "whatever")
	if err != nil {
		t.Fatal(err)
	}
	if got != "just text" {
		t.Errorf("got %q", got)
	}
}
