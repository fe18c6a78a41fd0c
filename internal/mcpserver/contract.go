package mcpserver

// NoteFormatContract describes the canonical Markdown note format that
// LLM consumers should follow when creating or updating notes.
const NoteFormatContract = `# Laguz Note Format Contract

Every Markdown note managed by Laguz follows this structure.

## Structure

` + "```" + `markdown
---
title: Incidental front-matter is preserved   # OPTIONAL, round-trips untouched
note:
  tags: [work/urgent, ideas]                  # OPTIONAL - list of tag paths
  pinned: true                                # OPTIONAL
  createdAt: 2025-01-15T09:30:00Z             # managed by the engine
  modifiedAt: 2025-01-15T09:30:00Z            # refreshed on every write
  encryption:                                 # present only for encrypted notes
    title: Cached plaintext header
---
Body text in standard Markdown.
` + "```" + `

## Rules

1. **Front-matter is optional.** A plain Markdown file with no front-matter
   is a valid note; its metadata defaults from filesystem timestamps.
2. **The ` + "`" + `note` + "`" + ` block is reserved.** The engine owns it: timestamps are
   refreshed automatically and the block never appears in the editable body.
   Other front-matter keys round-trip untouched.
3. **Tags are paths.** ` + "`" + `work/urgent` + "`" + ` nests ` + "`" + `urgent` + "`" + ` under ` + "`" + `work` + "`" + ` in the tag
   tree. Segments are normalized to lowercase with collapsed whitespace.
4. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes. Anything else is
   not a note and never appears in an index.
5. **Encrypted bodies** are self-describing envelopes
   (` + "`" + `laguz:aes256gcm:...` + "`" + `); tags, pin state and timestamps stay readable
   in plaintext, the body does not.
6. **Encoding** is UTF-8 with a trailing newline.

## Images

- Upload via POST /attachments; files land in the shared ` + "`" + `attachments/` + "`" + `
  directory under the notebook root.
- Reference in notes as ` + "`" + `![description](/attachments/filename.png)` + "`" + `.
- The first three image references feed a note's listing summary.

## Example

` + "```" + `markdown
---
note:
  tags: [meetings/weekly]
---
# Weekly standup

- [ ] collect updates
- [x] book the room
` + "```" + `
`
