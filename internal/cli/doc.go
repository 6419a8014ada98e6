// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the regnav command tree.
//
// # Commands
//
//   - regnav [tui]       multi-pane terminal UI (default)
//   - regnav ask Q       stream one answer to stdout
//   - regnav chat        line-oriented REPL with slash commands
//   - regnav health      probe the Assistant Backend
//   - regnav config      show, locate or write the config file
//   - regnav serve-fixture  local stand-in backend
//   - regnav version
//
// Every command returns its error to cobra. Execute maps it to an exit code.
package cli
