// Package frontmatter encodes and decodes the YAML front-matter block
// delimited by --- markers at the top of a Markdown document.
package frontmatter

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Fields is the parsed front-matter mapping. Values carry yaml.v3's untyped
// decoding (string, int, float64, bool, []any, map[string]any); consumers
// only need structural access.
type Fields = map[string]any

// Warning is prepended to the body when the front-matter block fails to
// parse. The malformed block stays in the body so nothing is silently lost.
const Warning = "Please fix the front-matter. (Don't forget to delete this line)\n\n"

// Decode splits markdown into front-matter fields and body.
//
// A front-matter block exists when the document starts with "---" and a
// "\n---" delimiter follows after offset 3. Without one, fields are empty
// and the body is the input unchanged. When the block exists but is not
// valid YAML, the fields are empty and the body is the ORIGINAL unstripped
// input with Warning prepended.
func Decode(markdown string) (Fields, string) {
	if !strings.HasPrefix(markdown, "---") {
		return Fields{}, markdown
	}
	idx := strings.Index(markdown[3:], "\n---")
	if idx < 0 {
		return Fields{}, markdown
	}
	end := idx + 3

	block := markdown[3:end]
	fields := Fields{}
	if err := yaml.Unmarshal([]byte(block), &fields); err != nil {
		return Fields{}, Warning + markdown
	}
	if fields == nil {
		fields = Fields{}
	}

	body := markdown[end+4:]
	body = stripLeadingBlankLine(body)
	return fields, body
}

// Encode wraps body with a serialized front-matter block. Empty fields emit
// the body unchanged so files without metadata never grow an empty
// ---\n--- wrapper.
func Encode(body string, fields Fields) string {
	if len(fields) == 0 {
		return body
	}
	out, err := yaml.Marshal(fields)
	if err != nil {
		return body
	}
	block := strings.TrimSpace(string(out))
	if block == "" || block == "{}" {
		return body
	}
	return "---\n" + block + "\n---\n" + body
}

// stripLeadingBlankLine removes one whitespace-only line directly after the
// closing delimiter.
func stripLeadingBlankLine(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if i < len(s) && s[i] == '\n' {
		return s[i+1:]
	}
	return s
}
