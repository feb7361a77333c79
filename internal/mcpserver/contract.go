package mcpserver

// NoteFormatContract describes the note header fields and how they shape
// the file name, for LLM clients creating or editing notes.
const NoteFormatContract = `# Note Format Contract

A note is a UTF-8 text file whose extension is registered for a markup
family (Markdown ` + "`.md`" + ` by default). It may start with a YAML header.

## Structure

` + "```" + `markdown
---
title:      "Weekly standup"   # REQUIRED - first part of the file name
subtitle:   "Note"             # OPTIONAL - appended after "--"
author:     "Ann"
date:       "2025-01-20"
lang:       "en-US"
sort_tag:   "20250120"         # OPTIONAL - file name prefix
file_ext:   "md"               # OPTIONAL - must be a registered extension
filename_sync: true            # OPTIONAL - false pins the current name
---

Body text in the note's markup.
` + "```" + `

## Rules

1. The header opens with ` + "`---`" + ` on the first line and closes with ` + "`---`" + `
   or ` + "`...`" + `. Without it the file is plain text and gets a header on
   the next run.
2. ` + "`title`" + ` is compulsory and must not be empty.
3. ` + "`sort_tag`" + ` may only contain digits, ` + "`_`" + ` and ` + "`-`" + `; it is prepended
   to the file name as given.
4. File names are derived, never chosen: ` + "`<sort_tag>-<title>--<subtitle>.<file_ext>`" + `.
   Characters unsafe in file names are replaced.
5. When the derived name is taken, a copy counter is appended:
   ` + "`<stem>--1.md`" + `, ` + "`<stem>--2.md`" + `, ... A counter already present is kept
   as long as the rest of the name still matches.

## Tools

- ` + "`create_note`" + ` creates a note in a directory, optionally from text.
- ` + "`sync_filename`" + ` renames a note after editing its header.
- ` + "`split_note`" + ` shows how text splits into header and body.
- ` + "`render_html`" + ` renders a note to HTML.
- ` + "`get_note_contract`" + ` returns this document.
`
