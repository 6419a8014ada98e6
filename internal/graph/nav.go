// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import "github.com/jeranaias/regnav/internal/model"

// Step moves the keyboard selection delta nodes from current, wrapping
// around. An unknown or empty current selects the first node (or the last
// when stepping backwards).
func Step(g *model.Graph, current string, delta int) string {
	if g.IsEmpty() {
		return ""
	}
	n := len(g.Nodes)
	idx := -1
	for i, node := range g.Nodes {
		if node.ID == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		if delta < 0 {
			return g.Nodes[n-1].ID
		}
		return g.Nodes[0].ID
	}
	idx = ((idx+delta)%n + n) % n
	return g.Nodes[idx].ID
}
