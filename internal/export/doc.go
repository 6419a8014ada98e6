// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a conversation, with each answer's sources, to a
// Markdown or JSON file. Export is one-way: nothing here is read back.
//
// # Formats
//
//   - Markdown: YAML frontmatter, one section per message, and after each
//     answer its confidence and numbered sources with excerpts
//   - JSON: the full message list with snapshots
//
// # Usage
//
//	t := export.Transcript{Conversation: sess.Conversation(), Filter: sess.Filter()}
//	path, err := export.ToFile(t, export.ForPath(out, nil), out)
package export
