// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the UI, CLI and export code.
//
//   - TruncateRunes, TruncateWidth, PadWidth: cell-aware truncation
//   - WrapWidth, Excerpt: word wrapping and fixed-height excerpts for cards
//   - AtomicWriteFile: crash-safe file writes with fsync
package util
