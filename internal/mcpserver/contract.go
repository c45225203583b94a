package mcpserver

// EntryFormatContract describes the entry file format LLM clients should
// follow when reading or writing entries.
const EntryFormatContract = `# Entry Format Contract

Every entry is one Markdown file with a YAML front matter block.

## Structure

` + "```" + `markdown
---
id: "k3f9a0x2"          # REQUIRED - 1-8 chars of [0-9a-z]
title: Human-readable   # REQUIRED - non-empty
type: q-and-a           # REQUIRED - q-and-a | guide | pattern | note
tags: [python, import]  # REQUIRED - list, may be empty; lowercase
created: 2024-01-15     # REQUIRED - calendar date YYYY-MM-DD
updated: 2024-02-01     # optional
status: draft           # optional - draft | reviewed | outdated
difficulty: beginner    # optional
author: Jane            # optional
related: [ab12cd34]     # optional - list of entry ids
source:                 # optional - free-form mapping
  url: https://example.com
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **Front matter is mandatory** and must open the file with ` + "`---`" + `.
2. **Storage path is derived from the id:** entry ` + "`k3f9a0x2`" + ` lives at
   ` + "`entries/k3/k3f9a0x2.md`" + `. The file name must equal the id and the
   directory must equal its first two characters.
3. **Ids are unique** across the repository.
4. **related** may only name ids that exist.
5. Unknown front matter keys are ignored.
6. Drafts older than 30 days and entries without ` + "`updated`" + ` older than
   180 days are reported as warnings, never errors.

Use the create_entry tool to get a fresh id and the body template for a type.
`
