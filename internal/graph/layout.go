// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import (
	"math"

	"github.com/jeranaias/regnav/internal/model"
)

// Layout geometry in abstract units. Retrieved passages sit on the inner
// ring, everything they cite on the outer ring.
const (
	CenterX     = 250.0
	CenterY     = 250.0
	InnerRadius = 100.0
	OuterRadius = 250.0

	// Extent is the side of the square the layout fits in.
	Extent = CenterX + OuterRadius
)

// Point is a position in layout units.
type Point struct {
	X, Y float64
}

// Placed is a node with its layout position.
type Placed struct {
	Node model.Node
	Pos  Point
}

// Layout places every node on a ring around (CenterX, CenterY). Node i of n
// is at angle i/n * 2π; the radius depends only on its type. There is no
// force simulation, so the result is a pure function of the node order.
func Layout(g *model.Graph) []Placed {
	if g.IsEmpty() {
		return nil
	}
	n := float64(len(g.Nodes))
	placed := make([]Placed, len(g.Nodes))
	for i, node := range g.Nodes {
		angle := float64(i) / n * 2 * math.Pi
		r := RadiusFor(node.Type)
		placed[i] = Placed{
			Node: node,
			Pos: Point{
				X: CenterX + r*math.Cos(angle),
				Y: CenterY + r*math.Sin(angle),
			},
		}
	}
	return placed
}

// RadiusFor returns the ring radius for a node type.
func RadiusFor(t model.NodeType) float64 {
	if t == model.NodeRetrieved {
		return InnerRadius
	}
	return OuterRadius
}
