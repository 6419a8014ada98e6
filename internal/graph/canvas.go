// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/regnav/internal/model"
)

// Glyphs used by the rasteriser.
const (
	GlyphEdge      = '·'
	GlyphRetrieved = '●'
	GlyphCited     = '○'
	GlyphSelected  = '◉'
)

// CellKind tells the renderer how to style a cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellEdge
	CellRetrieved
	CellCited
	CellSelected
	CellLabel
	CellSelectedLabel
)

// Cell is one terminal cell. Ch is 0 for the right half of a wide rune.
type Cell struct {
	Ch   rune
	Kind CellKind
}

// Canvas is a rasterised graph sized to a terminal pane.
type Canvas struct {
	Width  int
	Height int
	Cells  [][]Cell
}

// Rasterize scales the radial layout of g into a width x height grid.
// Edges are drawn first, then labels, then node markers, so markers are
// never hidden. The node whose id equals selected is highlighted.
func Rasterize(g *model.Graph, width, height int, selected string) *Canvas {
	c := newCanvas(width, height)
	if width < 3 || height < 3 {
		return c
	}

	placed := Layout(g)
	if len(placed) == 0 {
		return c
	}

	cells := make(map[string][2]int, len(placed))
	for _, p := range placed {
		cells[p.Node.ID] = c.project(p.Pos)
	}

	for _, e := range g.Edges {
		from, okFrom := cells[e.Source]
		to, okTo := cells[e.Target]
		if !okFrom || !okTo {
			continue
		}
		c.line(from, to)
	}

	for _, p := range placed {
		pos := cells[p.Node.ID]
		kind := CellLabel
		if p.Node.ID == selected {
			kind = CellSelectedLabel
		}
		c.label(pos, labelFor(p.Node), kind)
	}

	for _, p := range placed {
		pos := cells[p.Node.ID]
		ch, kind := GlyphCited, CellCited
		switch {
		case p.Node.ID == selected:
			ch, kind = GlyphSelected, CellSelected
		case p.Node.Type == model.NodeRetrieved:
			ch, kind = GlyphRetrieved, CellRetrieved
		}
		c.set(pos[0], pos[1], Cell{Ch: ch, Kind: kind})
	}

	return c
}

// String renders the canvas without styling.
func (c *Canvas) String() string {
	var b strings.Builder
	for y, row := range c.Cells {
		for _, cell := range row {
			if cell.Ch != 0 {
				b.WriteRune(cell.Ch)
			}
		}
		if y < len(c.Cells)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func newCanvas(width, height int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c := &Canvas{Width: width, Height: height, Cells: make([][]Cell, height)}
	for y := range c.Cells {
		row := make([]Cell, width)
		for x := range row {
			row[x] = Cell{Ch: ' '}
		}
		c.Cells[y] = row
	}
	return c
}

// project maps layout units onto cell coordinates.
func (c *Canvas) project(p Point) [2]int {
	x := int(math.Round(p.X / Extent * float64(c.Width-1)))
	y := int(math.Round(p.Y / Extent * float64(c.Height-1)))
	return [2]int{clamp(x, 0, c.Width-1), clamp(y, 0, c.Height-1)}
}

func (c *Canvas) set(x, y int, cell Cell) {
	if y < 0 || y >= c.Height || x < 0 || x >= c.Width {
		return
	}
	// Overwriting half of a wide rune would shift the row; blank the other half.
	old := c.Cells[y][x]
	if old.Ch == 0 && x > 0 {
		c.Cells[y][x-1] = Cell{Ch: ' '}
	}
	if runewidth.RuneWidth(old.Ch) == 2 && cell.Ch != 0 && x+1 < c.Width {
		c.Cells[y][x+1] = Cell{Ch: ' '}
	}
	c.Cells[y][x] = cell
}

// line draws a Bresenham line between two cells, excluding the endpoints.
func (c *Canvas) line(from, to [2]int) {
	x0, y0 := from[0], from[1]
	x1, y1 := to[0], to[1]
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if (x0 != from[0] || y0 != from[1]) && (x0 != x1 || y0 != y1) {
			if c.Cells[y0][x0].Kind == CellEmpty {
				c.set(x0, y0, Cell{Ch: GlyphEdge, Kind: CellEdge})
			}
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// label writes text beside a marker: to the right when it fits, otherwise
// ending just left of it.
func (c *Canvas) label(pos [2]int, text string, kind CellKind) {
	if text == "" {
		return
	}
	x, y := pos[0]+2, pos[1]
	room := c.Width - x
	if room < runewidth.StringWidth(text) && pos[0] > c.Width/2 {
		left := pos[0] - 1
		if left <= 0 {
			return
		}
		text = runewidth.Truncate(text, left, "")
		x = left - runewidth.StringWidth(text)
	} else {
		if room <= 0 {
			return
		}
		text = runewidth.Truncate(text, room, "")
	}
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > c.Width {
			return
		}
		c.set(x, y, Cell{Ch: r, Kind: kind})
		if w == 2 {
			c.set(x+1, y, Cell{Ch: 0, Kind: kind})
		}
		x += w
	}
}

func labelFor(n model.Node) string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
