// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package graph lays out and rasterises the citation graph, and maps graph
// nodes back to retrieved references.
//
// Layout is radial and deterministic: retrieved nodes on an inner ring of
// radius 100, cited nodes on an outer ring of radius 250, both centred on
// (250, 250).
//
// Resolve is an ordered matcher. For a node id it tries, across all
// references in turn:
//
//  1. exact node_id
//  2. the constructed id "<regulation>_<article_number>"
//  3. node id containing the article number (empty article numbers never match)
//
// Rasterize projects the layout onto a terminal-sized Canvas of cells.
package graph
