package note

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/crypt"
	"github.com/starford/laguz/internal/frontmatter"
)

// configKey is the reserved front-matter key holding the note Config.
const configKey = "note"

// Decode builds a Note from raw file bytes and stat metadata.
//
// The reserved "note" front-matter key is merged over stat-derived defaults
// and stripped; any remaining front-matter is re-encoded with the content
// into Body, so the editable text keeps incidental user front-matter but
// never the bookkeeping block.
func Decode(notebookRoot, relPath string, raw []byte, info fs.FileInfo) (*Note, error) {
	if info == nil || info.IsDir() || !strings.HasSuffix(relPath, ".md") {
		return nil, apperr.ErrNotMarkdown
	}

	cfg := Config{
		CreatedAt:  info.ModTime(),
		ModifiedAt: info.ModTime(),
		Tags:       []string{},
	}

	fields, body := frontmatter.Decode(string(raw))
	if block, ok := fields[configKey].(map[string]any); ok {
		cfg = mergeConfig(cfg, block)
	}
	delete(fields, configKey)
	body = frontmatter.Encode(body, fields)

	return &Note{
		NotebookRootPath: notebookRoot,
		RelativeFilePath: filepath.ToSlash(relPath),
		Body:             body,
		Config:           cfg,
		Checksum:         checksum.Sum(raw),
	}, nil
}

// Encode produces the bytes to persist for a note write. ModifiedAt is
// always refreshed; a zero CreatedAt defaults to the same instant so a
// bare Config never persists the zero time. An inline "note" block in the
// inbound body takes precedence over cfg, so raw-mode edits to the
// bookkeeping block stick.
// When cfg carries encryption the content is sealed under password and the
// plaintext header is cached in cfg.Encryption.Title.
func Encode(body string, cfg Config, password string) ([]byte, Config, error) {
	cfg.ModifiedAt = time.Now()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = cfg.ModifiedAt
	}
	if cfg.Tags == nil {
		cfg.Tags = []string{}
	}

	fields, content := frontmatter.Decode(body)
	if block, ok := fields[configKey].(map[string]any); ok {
		cfg = mergeConfig(cfg, block)
		cfg.ModifiedAt = time.Now()
	}

	if cfg.Encryption != nil {
		cfg.Encryption.Title = ExtractHeader(content)
		sealed, err := crypt.Encrypt(content, password)
		if err != nil {
			return nil, cfg, fmt.Errorf("note: encrypt: %w", err)
		}
		content = sealed
	}

	fields[configKey] = cfg
	return []byte(frontmatter.Encode(content, fields)), cfg, nil
}

// DecryptBody opens an encrypted note body with password. A plaintext body
// is returned unchanged.
func DecryptBody(body, password string) (string, error) {
	if !crypt.IsEnvelope(body) {
		return body, nil
	}
	return crypt.Decrypt(strings.TrimSpace(body), password)
}

// mergeConfig overlays a raw front-matter mapping onto base, field by
// field; fields absent from the mapping keep base values. A mapping that
// cannot be interpreted leaves base untouched.
func mergeConfig(base Config, raw map[string]any) Config {
	out, err := yaml.Marshal(raw)
	if err != nil {
		return base
	}
	merged := base
	if err := yaml.Unmarshal(out, &merged); err != nil {
		return base
	}
	if merged.Tags == nil {
		merged.Tags = []string{}
	}
	return merged
}
