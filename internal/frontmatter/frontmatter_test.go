package frontmatter

import (
	"strings"
	"testing"
)

func TestDecodeNoFrontMatter(t *testing.T) {
	fields, body := Decode("# Hello\n\nworld\n")
	if len(fields) != 0 {
		t.Errorf("fields = %v, want empty", fields)
	}
	if body != "# Hello\n\nworld\n" {
		t.Errorf("body = %q, want unchanged input", body)
	}
}

func TestDecodeSimple(t *testing.T) {
	fields, body := Decode("---\ntitle: Test\ncount: 3\n---\nbody text\n")
	if fields["title"] != "Test" {
		t.Errorf("title = %v", fields["title"])
	}
	if fields["count"] != 3 {
		t.Errorf("count = %v", fields["count"])
	}
	if body != "body text\n" {
		t.Errorf("body = %q", body)
	}
}

func TestDecodeUnterminatedBlock(t *testing.T) {
	in := "---\ntitle: Test\nno closing delimiter\n"
	fields, body := Decode(in)
	if len(fields) != 0 {
		t.Errorf("fields = %v, want empty", fields)
	}
	if body != in {
		t.Errorf("body = %q, want unchanged input", body)
	}
}

func TestDecodeMalformedYAML(t *testing.T) {
	in := "---\ntitle: [unclosed\n---\nbody\n"
	fields, body := Decode(in)
	if len(fields) != 0 {
		t.Errorf("fields = %v, want empty", fields)
	}
	if !strings.HasPrefix(body, Warning) {
		t.Fatalf("body missing warning prefix: %q", body)
	}
	if body != Warning+in {
		t.Errorf("body = %q, want warning + original input", body)
	}
}

func TestDecodeStripsOneBlankLineAfterDelimiter(t *testing.T) {
	_, body := Decode("---\na: 1\n---\n\n\nbody\n")
	if body != "\nbody\n" {
		t.Errorf("body = %q, want exactly one blank line stripped", body)
	}
}

func TestDecodeDashRuleIsNotFrontMatter(t *testing.T) {
	// A horizontal rule deeper in the document must not start a block.
	in := "intro\n---\nmore\n"
	fields, body := Decode(in)
	if len(fields) != 0 || body != in {
		t.Errorf("Decode(%q) = %v, %q", in, fields, body)
	}
}

func TestEncodeEmptyFields(t *testing.T) {
	if got := Encode("body\n", Fields{}); got != "body\n" {
		t.Errorf("got %q, want body unchanged", got)
	}
	if got := Encode("body\n", nil); got != "body\n" {
		t.Errorf("got %q, want body unchanged for nil fields", got)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	fields := Fields{"title": "Note", "draft": true}
	doc := Encode("content\n", fields)
	if !strings.HasPrefix(doc, "---\n") {
		t.Fatalf("missing opening delimiter: %q", doc)
	}

	got, body := Decode(doc)
	if body != "content\n" {
		t.Errorf("body = %q", body)
	}
	if got["title"] != "Note" || got["draft"] != true {
		t.Errorf("fields = %v", got)
	}
}
