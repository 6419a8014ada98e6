// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/regnav/internal/graph"
	"github.com/jeranaias/regnav/internal/model"
	"github.com/jeranaias/regnav/internal/ui/styles"
)

// =============================================================================
// GRAPH VIEW COMPONENT - Citation graph pane
// =============================================================================

// EmptyGraphText is shown before any graph data arrives.
const EmptyGraphText = "No citation graph yet."

// GraphView renders the active citation graph with a node cursor.
type GraphView struct {
	graph  *model.Graph
	cursor string

	Width   int
	Height  int
	Focused bool
	theme   *styles.Theme
}

// NewGraphView creates an empty graph pane.
func NewGraphView(theme *styles.Theme) *GraphView {
	return &GraphView{Width: 40, Height: 16, theme: theme}
}

// SetSize updates the pane dimensions.
func (gv *GraphView) SetSize(width, height int) {
	gv.Width = width
	gv.Height = height
}

// SetGraph replaces the graph. The cursor survives if its node still exists.
func (gv *GraphView) SetGraph(g *model.Graph) {
	gv.graph = g
	if _, ok := g.NodeByID(gv.cursor); !ok {
		gv.cursor = ""
	}
}

// Graph returns the graph on display.
func (gv *GraphView) Graph() *model.Graph {
	return gv.graph
}

// Cursor returns the highlighted node id, or "".
func (gv *GraphView) Cursor() string {
	return gv.cursor
}

// SetCursor highlights nodeID if it exists.
func (gv *GraphView) SetCursor(nodeID string) {
	if _, ok := gv.graph.NodeByID(nodeID); ok {
		gv.cursor = nodeID
	}
}

// Move steps the cursor through the nodes in layout order.
func (gv *GraphView) Move(delta int) {
	gv.cursor = graph.Step(gv.graph, gv.cursor, delta)
}

// View renders the pane contents (without the pane border).
func (gv *GraphView) View() string {
	t := gv.theme

	title := "Citation Graph"
	if !gv.graph.IsEmpty() {
		title = fmt.Sprintf("Citation Graph (%d nodes, %d edges)", len(gv.graph.Nodes), len(gv.graph.Edges))
	}
	lines := []string{t.PaneTitle.Render(title)}

	if gv.graph.IsEmpty() {
		lines = append(lines, t.PaneEmpty.Render(EmptyGraphText))
		return strings.Join(lines, "\n")
	}

	// title, legend, selection line
	canvasHeight := maxInt(gv.Height-3, 3)
	canvas := graph.Rasterize(gv.graph, maxInt(gv.Width, 3), canvasHeight, gv.cursor)
	lines = append(lines, gv.renderCanvas(canvas))

	legend := t.GraphRetrieved.Render(string(graph.GlyphRetrieved)) + " retrieved  " +
		t.GraphCited.Render(string(graph.GlyphCited)) + " cited"
	lines = append(lines, t.ModalHint.Render(legend))

	if n, ok := gv.graph.NodeByID(gv.cursor); ok {
		label := n.Title
		if label == "" {
			label = n.Label
		}
		lines = append(lines, t.GraphLabelSelected.Render(truncateCells(label, gv.Width)))
	}
	return strings.Join(lines, "\n")
}

// renderCanvas styles runs of same-kind cells.
func (gv *GraphView) renderCanvas(c *graph.Canvas) string {
	rows := make([]string, 0, c.Height)
	for _, row := range c.Cells {
		var sb strings.Builder
		var run strings.Builder
		kind := graph.CellEmpty

		flush := func() {
			if run.Len() == 0 {
				return
			}
			sb.WriteString(gv.cellStyle(kind).Render(run.String()))
			run.Reset()
		}

		for _, cell := range row {
			if cell.Ch == 0 {
				continue
			}
			if cell.Kind != kind {
				flush()
				kind = cell.Kind
			}
			run.WriteRune(cell.Ch)
		}
		flush()
		rows = append(rows, sb.String())
	}
	return strings.Join(rows, "\n")
}

func (gv *GraphView) cellStyle(kind graph.CellKind) lipgloss.Style {
	t := gv.theme
	switch kind {
	case graph.CellEdge:
		return t.GraphEdge
	case graph.CellRetrieved:
		return t.GraphRetrieved
	case graph.CellCited:
		return t.GraphCited
	case graph.CellSelected:
		return t.GraphSelected
	case graph.CellLabel:
		return t.GraphLabel
	case graph.CellSelectedLabel:
		return t.GraphLabelSelected
	default:
		return lipgloss.NewStyle()
	}
}

func truncateCells(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
