// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package loader

import (
	"math"
	"strings"
	"time"

	"github.com/pdiddy/design-compiler/pkg/types"
)

// API response shapes. Only the fields the compiler reads are declared.

type fileResponse struct {
	Name         string   `json:"name"`
	LastModified string   `json:"lastModified"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Version      string   `json:"version"`
	Document     wireNode `json:"document"`
}

type nodesResponse struct {
	Name         string                `json:"name"`
	LastModified string                `json:"lastModified"`
	ThumbnailURL string                `json:"thumbnailUrl"`
	Version      string                `json:"version"`
	Nodes        map[string]*nodeEntry `json:"nodes"`
}

type nodeEntry struct {
	Document wireNode `json:"document"`
}

type wireNode struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Visible    *bool      `json:"visible"`
	Children   []wireNode `json:"children"`
	Characters string     `json:"characters"`

	Fills        []wirePaint  `json:"fills"`
	Strokes      []wirePaint  `json:"strokes"`
	StrokeWeight *float64     `json:"strokeWeight"`
	CornerRadius *float64     `json:"cornerRadius"`
	Effects      []wireEffect `json:"effects"`
	Opacity      *float64     `json:"opacity"`

	Style *wireTypeStyle `json:"style"`

	AbsoluteBoundingBox *wireRect   `json:"absoluteBoundingBox"`
	RelativeTransform   [][]float64 `json:"relativeTransform"`
	Size                *wireVector `json:"size"`
}

type wirePaint struct {
	Type     string     `json:"type"`
	Visible  *bool      `json:"visible"`
	Opacity  *float64   `json:"opacity"`
	Color    *wireColor `json:"color"`
	ImageRef string     `json:"imageRef"`
}

type wireColor struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

type wireEffect struct {
	Type    string      `json:"type"`
	Visible *bool       `json:"visible"`
	Radius  float64     `json:"radius"`
	Color   *wireColor  `json:"color"`
	Offset  *wireVector `json:"offset"`
}

type wireVector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wireRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type wireTypeStyle struct {
	FontFamily          string   `json:"fontFamily"`
	FontSize            *float64 `json:"fontSize"`
	FontWeight          *float64 `json:"fontWeight"`
	LineHeightPx        *float64 `json:"lineHeightPx"`
	LetterSpacing       *float64 `json:"letterSpacing"`
	TextAlignHorizontal string   `json:"textAlignHorizontal"`
}

// shapeTypes are rendered as a single graphic by the source.
var shapeTypes = map[string]bool{
	"RECTANGLE":         true,
	"ELLIPSE":           true,
	"POLYGON":           true,
	"REGULAR_POLYGON":   true,
	"STAR":              true,
	"LINE":              true,
	"VECTOR":            true,
	"BOOLEAN_OPERATION": true,
}

func visible(v *bool) bool {
	return v == nil || *v
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// convertRoots flattens pages: the children of each CANVAS become roots.
// Any other node is a root itself.
func convertRoots(nodes []wireNode) []*types.DesignNode {
	var roots []*types.DesignNode
	for i := range nodes {
		n := &nodes[i]
		if !visible(n.Visible) {
			continue
		}
		if n.Type == "DOCUMENT" || n.Type == "CANVAS" {
			roots = append(roots, convertRoots(n.Children)...)
			continue
		}
		roots = append(roots, convertNode(n, nil))
	}
	return roots
}

func convertNode(n *wireNode, parent *wireNode) *types.DesignNode {
	node := &types.DesignNode{
		ID:         n.ID,
		Name:       n.Name,
		Type:       mapType(n),
		Geometry:   geometry(n, parent),
		Characters: n.Characters,
	}

	node.Style = types.Style{
		Strokes:      convertPaints(n.Strokes),
		StrokeWeight: n.StrokeWeight,
		CornerRadius: n.CornerRadius,
		Effects:      convertEffects(n.Effects),
		Opacity:      n.Opacity,
		Typography:   convertTypeStyle(n.Style),
	}

	fills := convertPaints(n.Fills)
	switch node.Type {
	case types.NodeText:
		// A text node's fill is its glyph colour.
		if c, ok := topSolid(fills); ok {
			if node.Style.Typography == nil {
				node.Style.Typography = &types.TypeStyle{}
			}
			node.Style.Typography.Color = &c
		}
	case types.NodeImage:
		node.ImageRef = imageRef(fills)
		node.Style.Fills = fills
	default:
		node.Style.Fills = fills
	}

	// Shapes are leaves; their parts render as one graphic.
	if node.Type == types.NodeImage || node.Type == types.NodeVector {
		return node
	}
	for i := range n.Children {
		child := &n.Children[i]
		if !visible(child.Visible) {
			continue
		}
		node.Children = append(node.Children, convertNode(child, n))
	}
	return node
}

func mapType(n *wireNode) types.NodeType {
	switch n.Type {
	case "FRAME", "COMPONENT", "COMPONENT_SET", "SECTION":
		return types.NodeFrame
	case "GROUP":
		return types.NodeGroup
	case "INSTANCE":
		return types.NodeInstance
	case "TEXT":
		return types.NodeText
	}
	if shapeTypes[n.Type] {
		if imageRef(convertPaints(n.Fills)) != "" {
			return types.NodeImage
		}
		return types.NodeVector
	}
	return types.NodeType(n.Type)
}

// geometry derives the parent-local box. relativeTransform and size are
// preferred; without them the absolute bounding boxes are differenced.
// Groups have no coordinate space of their own, so a group child's
// transform is rebased onto the group.
func geometry(n, parent *wireNode) types.Geometry {
	if len(n.RelativeTransform) == 2 && len(n.RelativeTransform[0]) == 3 &&
		len(n.RelativeTransform[1]) == 3 && n.Size != nil {
		m := n.RelativeTransform
		g := types.Geometry{
			X:        m[0][2],
			Y:        m[1][2],
			Width:    n.Size.X,
			Height:   n.Size.Y,
			Rotation: math.Atan2(m[1][0], m[0][0]) * 180 / math.Pi,
		}
		if parent != nil && (parent.Type == "GROUP" || parent.Type == "BOOLEAN_OPERATION") &&
			len(parent.RelativeTransform) == 2 && len(parent.RelativeTransform[0]) == 3 {
			g.X -= parent.RelativeTransform[0][2]
			g.Y -= parent.RelativeTransform[1][2]
		}
		return g
	}

	if n.AbsoluteBoundingBox == nil {
		return types.Geometry{}
	}
	b := n.AbsoluteBoundingBox
	g := types.Geometry{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
	if parent != nil && parent.AbsoluteBoundingBox != nil {
		g.X -= parent.AbsoluteBoundingBox.X
		g.Y -= parent.AbsoluteBoundingBox.Y
	}
	return g
}

// convertPaints keeps nil distinct from empty: an absent list inherits, an
// empty one means "none".
func convertPaints(in []wirePaint) []types.Paint {
	if in == nil {
		return nil
	}
	out := make([]types.Paint, 0, len(in))
	for _, p := range in {
		paint := types.Paint{
			Type:     p.Type,
			ImageRef: p.ImageRef,
			Hidden:   !visible(p.Visible),
		}
		if p.Color != nil {
			paint.Color = types.Color(*p.Color)
		}
		if p.Opacity != nil {
			paint.Opacity = *p.Opacity
			if *p.Opacity == 0 {
				paint.Hidden = true
			}
		}
		out = append(out, paint)
	}
	return out
}

func convertEffects(in []wireEffect) []types.Effect {
	if in == nil {
		return nil
	}
	out := make([]types.Effect, 0, len(in))
	for _, e := range in {
		eff := types.Effect{Type: e.Type, Radius: e.Radius, Hidden: !visible(e.Visible)}
		if e.Color != nil {
			eff.Color = types.Color(*e.Color)
		}
		if e.Offset != nil {
			eff.OffsetX, eff.OffsetY = e.Offset.X, e.Offset.Y
		}
		out = append(out, eff)
	}
	return out
}

func convertTypeStyle(s *wireTypeStyle) *types.TypeStyle {
	if s == nil {
		return nil
	}
	ts := &types.TypeStyle{
		FontSize:      s.FontSize,
		FontWeight:    s.FontWeight,
		LineHeight:    s.LineHeightPx,
		LetterSpacing: s.LetterSpacing,
	}
	if s.FontFamily != "" {
		ts.FontFamily = types.String(s.FontFamily)
	}
	switch strings.ToUpper(s.TextAlignHorizontal) {
	case "LEFT":
		ts.TextAlign = types.String("left")
	case "CENTER":
		ts.TextAlign = types.String("center")
	case "RIGHT":
		ts.TextAlign = types.String("right")
	case "JUSTIFIED":
		ts.TextAlign = types.String("justify")
	}
	return ts
}

// topSolid returns the topmost visible solid paint. Paints stack bottom to
// top, so the last one wins.
func topSolid(paints []types.Paint) (types.Color, bool) {
	for i := len(paints) - 1; i >= 0; i-- {
		p := paints[i]
		if !p.Hidden && p.Type == types.PaintSolid {
			return p.Effective(), true
		}
	}
	return types.Color{}, false
}

// imageRef returns the topmost visible image fill reference.
func imageRef(paints []types.Paint) string {
	for i := len(paints) - 1; i >= 0; i-- {
		p := paints[i]
		if !p.Hidden && p.Type == types.PaintImage && p.ImageRef != "" {
			return p.ImageRef
		}
	}
	return ""
}
