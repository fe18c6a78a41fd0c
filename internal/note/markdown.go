package note

import (
	"regexp"
	"strings"

	"github.com/starford/laguz/internal/frontmatter"
)

var (
	imageRe    = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)[^)]*\)`)
	linkRe     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	fenceRe    = regexp.MustCompile("(?s)```.*?(```|$)")
	inlineRe   = regexp.MustCompile("[`*_~]+")
	headingRe  = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	spaceRunRe = regexp.MustCompile(`\s+`)
)

const (
	summaryLength = 200
	maxImages     = 3
)

// Summary is the short listing excerpt for a note.
type Summary struct {
	Text   string   `json:"text"`
	Images []string `json:"images"`
}

// ExtractHeader returns the note title: the first non-empty line with any
// leading #-characters stripped and trimmed; empty for a blank document.
func ExtractHeader(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		header := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		if header == "" {
			return trimmed
		}
		return header
	}
	return ""
}

// GenerateSummary produces a plaintext excerpt and the first referenced
// image URLs, for list rendering only.
func GenerateSummary(markdown string) Summary {
	_, body := frontmatter.Decode(markdown)

	var images []string
	for _, m := range imageRe.FindAllStringSubmatch(body, -1) {
		if len(images) >= maxImages {
			break
		}
		images = append(images, m[1])
	}

	text := imageRe.ReplaceAllString(body, " ")
	text = fenceRe.ReplaceAllString(text, " ")
	text = linkRe.ReplaceAllString(text, "$1")
	text = headingRe.ReplaceAllString(text, "")
	text = inlineRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(spaceRunRe.ReplaceAllString(text, " "))

	runes := []rune(text)
	if len(runes) > summaryLength {
		text = string(runes[:summaryLength])
	}

	return Summary{Text: text, Images: images}
}
