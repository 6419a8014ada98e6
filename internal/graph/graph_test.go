// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/regnav/internal/model"
)

func ref(reg, art, nodeID string) model.Reference {
	return model.Reference{
		Text:     reg + " article " + art,
		Metadata: model.ReferenceMetadata{Regulation: reg, ArticleNumber: art, Title: "t"},
		NodeID:   nodeID,
	}
}

// =============================================================================
// LAYOUT TESTS
// =============================================================================

func TestLayout_RadiiAndAngles(t *testing.T) {
	g := &model.Graph{Nodes: []model.Node{
		{ID: "a", Type: model.NodeRetrieved},
		{ID: "b", Type: model.NodeCited},
		{ID: "c", Type: model.NodeRetrieved},
		{ID: "d", Type: "unknown"},
	}}

	placed := Layout(g)
	require.Len(t, placed, 4)

	for i, p := range placed {
		dx, dy := p.Pos.X-CenterX, p.Pos.Y-CenterY
		wantR := OuterRadius
		if p.Node.Type == model.NodeRetrieved {
			wantR = InnerRadius
		}
		assert.InDelta(t, wantR, math.Hypot(dx, dy), 1e-9, "radius of %s", p.Node.ID)

		wantAngle := float64(i) / 4 * 2 * math.Pi
		gotAngle := math.Atan2(dy, dx)
		if gotAngle < 0 {
			gotAngle += 2 * math.Pi
		}
		assert.InDelta(t, wantAngle, gotAngle, 1e-9, "angle of %s", p.Node.ID)
	}

	// Node 0 sits on the positive x axis.
	assert.InDelta(t, CenterX+InnerRadius, placed[0].Pos.X, 1e-9)
	assert.InDelta(t, CenterY, placed[0].Pos.Y, 1e-9)
}

func TestLayout_Empty(t *testing.T) {
	assert.Nil(t, Layout(nil))
	assert.Nil(t, Layout(&model.Graph{}))
}

// =============================================================================
// RESOLVER TESTS
// =============================================================================

func TestResolve_Tiers(t *testing.T) {
	tests := []struct {
		name      string
		nodeID    string
		refs      []model.Reference
		wantIndex int
		wantTier  Tier
	}{
		{
			name:      "exact node id",
			nodeID:    "GDPR_5",
			refs:      []model.Reference{ref("GDPR", "6", ""), ref("GDPR", "5", "GDPR_5")},
			wantIndex: 1,
			wantTier:  TierExact,
		},
		{
			name:      "exact beats earlier constructed match",
			nodeID:    "GDPR_5",
			refs:      []model.Reference{ref("GDPR", "5", ""), ref("GDPR", "9", "GDPR_5")},
			wantIndex: 1,
			wantTier:  TierExact,
		},
		{
			name:      "constructed id",
			nodeID:    "AI Act_6",
			refs:      []model.Reference{ref("GDPR", "6", ""), ref("AI Act", "6", "")},
			wantIndex: 1,
			wantTier:  TierConstructed,
		},
		{
			name:      "constructed beats earlier substring match",
			nodeID:    "GDPR_15",
			refs:      []model.Reference{ref("GDPR", "1", ""), ref("GDPR", "15", "")},
			wantIndex: 1,
			wantTier:  TierConstructed,
		},
		{
			name:      "substring on article number",
			nodeID:    "gdpr-art-17-erasure",
			refs:      []model.Reference{ref("GDPR", "5", ""), ref("GDPR", "17", "")},
			wantIndex: 1,
			wantTier:  TierSubstring,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, ok := Resolve(tc.nodeID, tc.refs)
			require.True(t, ok)
			assert.Equal(t, tc.wantIndex, m.Index)
			assert.Equal(t, tc.wantTier, m.Tier)
			assert.Equal(t, tc.refs[tc.wantIndex], m.Reference)
		})
	}
}

func TestResolve_NoMatch(t *testing.T) {
	refs := []model.Reference{ref("GDPR", "", ""), ref("GDPR", "5", "")}

	_, ok := Resolve("AI Act_9", refs)
	assert.False(t, ok, "empty article number must not substring-match")

	_, ok = Resolve("", refs)
	assert.False(t, ok)

	_, ok = Resolve("GDPR_5", nil)
	assert.False(t, ok)
}

// =============================================================================
// NAVIGATION TESTS
// =============================================================================

func TestStep(t *testing.T) {
	g := &model.Graph{Nodes: []model.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	assert.Equal(t, "a", Step(g, "", 1))
	assert.Equal(t, "c", Step(g, "", -1))
	assert.Equal(t, "b", Step(g, "a", 1))
	assert.Equal(t, "a", Step(g, "c", 1))
	assert.Equal(t, "c", Step(g, "a", -1))
	assert.Equal(t, "", Step(nil, "a", 1))
}

// =============================================================================
// CANVAS TESTS
// =============================================================================

func TestRasterize_DrawsNodesAndEdges(t *testing.T) {
	g := &model.Graph{
		Nodes: []model.Node{
			{ID: "GDPR_5", Label: "GDPR 5", Type: model.NodeRetrieved},
			{ID: "GDPR_6", Label: "GDPR 6", Type: model.NodeCited},
		},
		Edges: []model.Edge{
			{ID: "GDPR_5-GDPR_6", Source: "GDPR_5", Target: "GDPR_6"},
			{ID: "dangling", Source: "GDPR_5", Target: "missing"},
		},
	}

	c := Rasterize(g, 60, 20, "")
	out := c.String()

	assert.Contains(t, out, string(GlyphRetrieved))
	assert.Contains(t, out, string(GlyphCited))
	assert.Contains(t, out, string(GlyphEdge))
	assert.Contains(t, out, "GDPR 5")

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 20)
	for _, l := range lines {
		assert.Equal(t, 60, len([]rune(l)))
	}
}

func TestRasterize_Selected(t *testing.T) {
	g := &model.Graph{Nodes: []model.Node{{ID: "x", Label: "X", Type: model.NodeCited}}}
	out := Rasterize(g, 30, 10, "x").String()
	assert.Contains(t, out, string(GlyphSelected))
	assert.NotContains(t, out, string(GlyphCited))
}

func TestRasterize_TinyOrEmpty(t *testing.T) {
	assert.Equal(t, "", Rasterize(nil, 0, 0, "").String())
	c := Rasterize(&model.Graph{}, 10, 3, "")
	assert.Equal(t, strings.Repeat(" ", 10), strings.Split(c.String(), "\n")[0])
}
