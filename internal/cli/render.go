// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/regnav/internal/graph"
	"github.com/jeranaias/regnav/internal/model"
	"github.com/jeranaias/regnav/internal/session"
	"github.com/jeranaias/regnav/internal/util"
)

// =============================================================================
// PLAIN-TEXT RENDERING OF RETRIEVAL DATA
// =============================================================================

// graphCanvasHeight is the row count of the /graph drawing.
const graphCanvasHeight = 16

// printSources writes the confidence and the numbered reference list.
func printSources(w io.Writer, snap *model.Snapshot, styled bool) {
	if snap == nil {
		fmt.Fprintln(w, style(MutedStyle, "No sources were returned.", styled))
		return
	}

	fmt.Fprintf(w, "\n%s %.0f%%\n", style(TitleStyle, "Confidence:", styled), snap.Confidence)
	if len(snap.References) == 0 {
		fmt.Fprintln(w, style(MutedStyle, "No references.", styled))
		return
	}

	fmt.Fprintln(w, style(TitleStyle, "References:", styled))
	for i, ref := range snap.References {
		fmt.Fprintf(w, "  %d. %s  %s\n", i+1, style(LabelStyle, ref.CardLabel(), styled), ref.Metadata.Title)
		fmt.Fprintf(w, "     %s\n", style(MutedStyle,
			fmt.Sprintf("Score: %s  Source: %s", ref.ScoreText(), ref.SourceLabel()), styled))
	}
}

// printDetail writes the full text of one reference.
func printDetail(w io.Writer, d session.Detail, styled bool, width int) {
	ref := d.Reference
	fmt.Fprintln(w, style(TitleStyle, ref.Heading(), styled))
	if ref.Metadata.Title != "" {
		fmt.Fprintln(w, ref.Metadata.Title)
	}
	fmt.Fprintln(w, style(MutedStyle,
		fmt.Sprintf("Score: %s  Source: %s", ref.ScoreText(), ref.SourceLabel()), styled))
	fmt.Fprintln(w)
	if styled {
		fmt.Fprint(w, renderMarkdown(newMarkdownRenderer(width), ref.Text))
		return
	}
	fmt.Fprintln(w, ref.Text)
}

// printGraph draws the citation graph and lists its nodes and edges.
func printGraph(w io.Writer, g *model.Graph, selected string, width int) {
	if g.IsEmpty() {
		fmt.Fprintln(w, "No citation graph for the current answer.")
		return
	}

	fmt.Fprintln(w, graph.Rasterize(g, width, graphCanvasHeight, selected).String())
	fmt.Fprintln(w)
	for _, n := range g.Nodes {
		marker := " "
		if n.ID == selected {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-12s %-9s %s\n", marker, n.ID, n.Type, util.TruncateWidth(n.Title, maxInt(width-26, 10)))
	}
	if len(g.Edges) > 0 {
		edges := make([]string, 0, len(g.Edges))
		for _, e := range g.Edges {
			edges = append(edges, e.Source+" -> "+e.Target)
		}
		fmt.Fprintln(w, "Citations: "+strings.Join(edges, ", "))
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
