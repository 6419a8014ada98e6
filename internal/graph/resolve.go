// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import (
	"strings"

	"github.com/jeranaias/regnav/internal/model"
)

// Tier records which rule matched a node to a reference.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierConstructed
	TierSubstring
)

// String returns the tier name for logs.
func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierConstructed:
		return "constructed"
	case TierSubstring:
		return "substring"
	default:
		return "none"
	}
}

// Match is a resolved reference.
type Match struct {
	Index     int
	Reference model.Reference
	Tier      Tier
}

// tiers are tried in order. Each tier scans every reference before the
// next tier runs, so an exact match later in the list beats a substring
// match earlier in it.
var tiers = []struct {
	tier  Tier
	match func(nodeID string, ref model.Reference) bool
}{
	{TierExact, func(id string, ref model.Reference) bool {
		return ref.NodeID != "" && ref.NodeID == id
	}},
	{TierConstructed, func(id string, ref model.Reference) bool {
		c := ref.ConstructedID()
		return c != "" && c == id
	}},
	{TierSubstring, func(id string, ref model.Reference) bool {
		art := ref.Metadata.ArticleNumber
		return art != "" && strings.Contains(id, art)
	}},
}

// Resolve maps a graph node id to a retrieved reference. A miss returns
// false; nodes for passages that were only cited have no reference.
func Resolve(nodeID string, refs []model.Reference) (Match, bool) {
	if nodeID == "" {
		return Match{}, false
	}
	for _, t := range tiers {
		for i, ref := range refs {
			if t.match(nodeID, ref) {
				return Match{Index: i, Reference: ref, Tier: t.tier}, true
			}
		}
	}
	return Match{}, false
}
