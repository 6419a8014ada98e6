// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// DefaultSource is shown when a reference carries no source label.
const DefaultSource = "Official Text"

// =============================================================================
// REFERENCE TYPE
// =============================================================================

// ReferenceMetadata is the attribution block of a retrieved passage.
type ReferenceMetadata struct {
	Title         string `json:"title"`
	ArticleNumber string `json:"article_number"`
	Regulation    string `json:"regulation"`
	Source        string `json:"source,omitempty"`
}

// Reference is a retrieved regulatory passage as supplied by the backend.
type Reference struct {
	Text     string            `json:"text"`
	Metadata ReferenceMetadata `json:"metadata"`
	Score    *float64          `json:"score,omitempty"`
	NodeID   string            `json:"node_id,omitempty"`
}

// CardLabel returns the short label used on reference cards ("GDPR Art. 5").
func (r Reference) CardLabel() string {
	return fmt.Sprintf("%s Art. %s", r.Metadata.Regulation, r.Metadata.ArticleNumber)
}

// Heading returns the detail view heading ("GDPR - Article 5").
func (r Reference) Heading() string {
	return fmt.Sprintf("%s - Article %s", r.Metadata.Regulation, r.Metadata.ArticleNumber)
}

// ConstructedID returns the synthesized graph id "<regulation>_<article>".
// Returns "" when either part is missing.
func (r Reference) ConstructedID() string {
	if r.Metadata.Regulation == "" || r.Metadata.ArticleNumber == "" {
		return ""
	}
	return r.Metadata.Regulation + "_" + r.Metadata.ArticleNumber
}

// ScoreText formats the relevance score as a percentage.
// A missing or zero score renders as "N/A".
func (r Reference) ScoreText() string {
	if r.Score == nil || *r.Score == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *r.Score*100)
}

// SourceLabel returns the source, defaulting to DefaultSource.
func (r Reference) SourceLabel() string {
	if strings.TrimSpace(r.Metadata.Source) == "" {
		return DefaultSource
	}
	return r.Metadata.Source
}

// =============================================================================
// GRAPH TYPES
// =============================================================================

// NodeType distinguishes passages the retriever returned from ones they cite.
type NodeType string

const (
	NodeRetrieved NodeType = "retrieved"
	NodeCited     NodeType = "cited"
)

// Node is one vertex of the citation graph.
type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Title string   `json:"title"`
	Type  NodeType `json:"type"`
}

// Edge is one citation between two nodes.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the backend-supplied citation graph. Treated as opaque display data.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// IsEmpty reports whether the graph has nothing to draw.
func (g *Graph) IsEmpty() bool {
	return g == nil || len(g.Nodes) == 0
}

// NodeByID returns the node with the given id.
func (g *Graph) NodeByID(id string) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// =============================================================================
// SNAPSHOT TYPE
// =============================================================================

// Snapshot is the retrieval metadata of one answer. It is never mutated
// after construction; holders share it by pointer.
type Snapshot struct {
	Confidence float64     `json:"confidence"`
	References []Reference `json:"context"`
	Graph      *Graph      `json:"graph_data,omitempty"`
}

// NewSnapshot builds a snapshot, copying the slices it is given so later
// changes by the caller cannot leak in.
func NewSnapshot(confidence float64, refs []Reference, g *Graph) *Snapshot {
	snap := &Snapshot{
		Confidence: confidence,
		References: append([]Reference(nil), refs...),
	}
	if g != nil {
		snap.Graph = &Graph{
			Nodes: append([]Node(nil), g.Nodes...),
			Edges: append([]Edge(nil), g.Edges...),
		}
	}
	return snap
}

// Reference returns the i-th reference.
func (s *Snapshot) Reference(i int) (Reference, bool) {
	if s == nil || i < 0 || i >= len(s.References) {
		return Reference{}, false
	}
	return s.References[i], true
}
