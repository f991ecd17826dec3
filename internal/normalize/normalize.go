// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts a DesignDocument into the IR: absolute
// geometry through explicit affine composition, styles flattened from the
// ancestor chain, and a node-id to parent-id index built in the same walk.
package normalize

import (
	"fmt"
	"math"

	"github.com/pdiddy/design-compiler/pkg/types"
)

// Baseline is the style in effect above the roots.
var Baseline = types.ResolvedStyle{
	Fill:       types.Transparent,
	Stroke:     types.Transparent,
	Opacity:    1,
	FontFamily: "sans-serif",
	FontSize:   16,
	FontWeight: 400,
	TextAlign:  "left",
	TextColor:  types.Black,
}

type normalizer struct {
	parents  map[string]string
	seen     map[string]bool
	warnings []types.Warning
}

// Normalize builds the IR tree for doc. It never fails: malformed nodes
// become placeholder leaves and are reported as warnings. Container roles are
// left unset for the layout classifier.
func Normalize(doc *types.DesignDocument) (*types.IRTree, []types.Warning) {
	n := &normalizer{
		parents: make(map[string]string),
		seen:    make(map[string]bool),
	}
	tree := &types.IRTree{
		Name:         doc.Name,
		Version:      doc.Version,
		LastModified: doc.LastModified,
		Roots:        make([]*types.IRNode, 0, len(doc.Roots)),
	}
	for _, root := range doc.Roots {
		tree.Roots = append(tree.Roots, n.node(root, "", types.Identity, Baseline))
	}
	tree.Parents = n.parents
	return tree, n.warnings
}

func (n *normalizer) node(d *types.DesignNode, parentID string, parentT types.Affine, inherited types.ResolvedStyle) *types.IRNode {
	if reason := n.malformed(d); reason != "" {
		n.warnings = append(n.warnings, types.Warning{
			Kind:    types.KindMalformedNode,
			NodeID:  d.ID,
			Message: fmt.Sprintf("%s: %s", d.Name, reason),
		})
		return n.placeholder(d, parentID, parentT, inherited)
	}
	n.seen[d.ID] = true
	if parentID != "" {
		n.parents[d.ID] = parentID
	}

	abs := absolute(parentT, d.Geometry)
	out := &types.IRNode{
		ID:        d.ID,
		Name:      d.Name,
		Source:    d.Type,
		Box:       abs.Bounds(d.Geometry.Width, d.Geometry.Height),
		Width:     d.Geometry.Width,
		Height:    d.Geometry.Height,
		Transform: abs,
		Rotation:  d.Geometry.Rotation,
		Style:     Resolve(inherited, d.Style, d.Type == types.NodeText),
	}

	switch d.Type {
	case types.NodeText:
		out.Role = types.RoleText
		out.Text = d.Characters
	case types.NodeImage, types.NodeVector:
		out.Role = types.RoleLeafImage
		out.ImageRef = d.ImageRef
	}

	if len(d.Children) > 0 {
		out.Children = make([]*types.IRNode, 0, len(d.Children))
		for _, child := range d.Children {
			out.Children = append(out.Children, n.node(child, d.ID, abs, out.Style))
		}
	}
	return out
}

// malformed returns why d cannot be normalized, or "".
func (n *normalizer) malformed(d *types.DesignNode) string {
	switch {
	case d.ID == "":
		return "missing id"
	case n.seen[d.ID]:
		return "duplicate id " + d.ID
	case !d.Type.Known():
		return fmt.Sprintf("unknown node type %q", d.Type)
	case !d.Geometry.Valid():
		return fmt.Sprintf("invalid geometry %+v", d.Geometry)
	}
	return ""
}

// placeholder stands in for a malformed node and its whole subtree.
func (n *normalizer) placeholder(d *types.DesignNode, parentID string, parentT types.Affine, inherited types.ResolvedStyle) *types.IRNode {
	if d.ID != "" && !n.seen[d.ID] {
		n.seen[d.ID] = true
		if parentID != "" {
			n.parents[d.ID] = parentID
		}
	}

	g := d.Geometry
	if !g.Valid() {
		g = types.Geometry{}
	}
	abs := absolute(parentT, g)
	style := inherited
	style.Explicit = 0
	return &types.IRNode{
		ID:          d.ID,
		Name:        d.Name,
		Source:      d.Type,
		Box:         abs.Bounds(g.Width, g.Height),
		Width:       g.Width,
		Height:      g.Height,
		Transform:   abs,
		Rotation:    g.Rotation,
		Style:       style,
		Role:        types.RoleLeafImage,
		Placeholder: true,
		Asset:       &types.AssetRef{Placeholder: true},
	}
}

// absolute composes parent × translate(x, y) × rotate(θ).
func absolute(parent types.Affine, g types.Geometry) types.Affine {
	local := types.Translate(g.X, g.Y).Mul(types.Rotate(g.Rotation))
	return parent.Mul(local)
}

// Resolve flattens s over the inherited style. Attributes set on the node are
// recorded in Explicit. For text nodes a fill is the glyph colour.
func Resolve(inherited types.ResolvedStyle, s types.Style, text bool) types.ResolvedStyle {
	r := inherited
	r.Explicit = 0

	if s.Fills != nil {
		c := topSolid(s.Fills)
		if text {
			r.TextColor = c
			r.Explicit |= types.AttrTextColor
		} else {
			r.Fill = c
			r.Explicit |= types.AttrFill
		}
	}
	if s.Strokes != nil {
		r.Stroke = topSolid(s.Strokes)
		r.Explicit |= types.AttrStroke
	}
	if s.StrokeWeight != nil {
		r.StrokeWeight = *s.StrokeWeight
		r.Explicit |= types.AttrStrokeWeight
	}
	if s.CornerRadius != nil {
		r.CornerRadius = *s.CornerRadius
		r.Explicit |= types.AttrCornerRadius
	}
	if s.Effects != nil {
		r.Effects = visibleEffects(s.Effects)
		r.Explicit |= types.AttrEffects
	}
	if s.Opacity != nil {
		r.Opacity = clamp01(*s.Opacity)
		r.Explicit |= types.AttrOpacity
	}

	ts := s.Typography
	if ts == nil {
		return r
	}
	if ts.FontFamily != nil {
		r.FontFamily = *ts.FontFamily
		r.Explicit |= types.AttrFontFamily
	}
	if ts.FontSize != nil {
		r.FontSize = *ts.FontSize
		r.Explicit |= types.AttrFontSize
	}
	if ts.FontWeight != nil {
		r.FontWeight = *ts.FontWeight
		r.Explicit |= types.AttrFontWeight
	}
	if ts.LineHeight != nil {
		r.LineHeight = *ts.LineHeight
		r.Explicit |= types.AttrLineHeight
	}
	if ts.LetterSpacing != nil {
		r.LetterSpacing = *ts.LetterSpacing
		r.Explicit |= types.AttrLetterSpacing
	}
	if ts.TextAlign != nil {
		r.TextAlign = *ts.TextAlign
		r.Explicit |= types.AttrTextAlign
	}
	if ts.Color != nil {
		r.TextColor = *ts.Color
		r.Explicit |= types.AttrTextColor
	}
	return r
}

// topSolid returns the topmost visible solid paint. Paints stack bottom to
// top, so the last one wins.
func topSolid(paints []types.Paint) types.Color {
	for i := len(paints) - 1; i >= 0; i-- {
		p := paints[i]
		if !p.Hidden && p.Type == types.PaintSolid {
			return p.Effective()
		}
	}
	return types.Transparent
}

func visibleEffects(effects []types.Effect) []types.Effect {
	out := make([]types.Effect, 0, len(effects))
	for _, e := range effects {
		if !e.Hidden {
			out = append(out, e)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
