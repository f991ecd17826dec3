// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"math"
	"time"
)

// LayoutRole is the structural category that drives code generation.
type LayoutRole int

const (
	// RoleUnset is the zero value. It must never reach the emitter.
	RoleUnset LayoutRole = iota
	RoleRow
	RoleColumn
	RoleGrid
	RoleAbsolute
	RoleText
	RoleLeafImage
)

func (r LayoutRole) String() string {
	switch r {
	case RoleRow:
		return "ROW"
	case RoleColumn:
		return "COLUMN"
	case RoleGrid:
		return "GRID"
	case RoleAbsolute:
		return "ABSOLUTE"
	case RoleText:
		return "TEXT"
	case RoleLeafImage:
		return "LEAF_IMAGE"
	default:
		return "UNSET"
	}
}

// IsLeaf reports whether the role renders without children. Nodes below a
// leaf are never emitted.
func (r LayoutRole) IsLeaf() bool {
	return r == RoleText || r == RoleLeafImage
}

// MarshalText encodes the role by name so IR dumps stay readable.
func (r LayoutRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Rect is an axis-aligned box in absolute document coordinates.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Overlaps reports whether r and o share more than eps of area on both axes.
func (r Rect) Overlaps(o Rect, eps float64) bool {
	return r.X < o.Right()-eps && o.X < r.Right()-eps &&
		r.Y < o.Bottom()-eps && o.Y < r.Bottom()-eps
}

// Affine is a 2D affine transform [A C E; B D F; 0 0 1] mapping (x, y) to
// (A*x + C*y + E, B*x + D*y + F).
type Affine struct {
	A, B, C, D, E, F float64
}

// Identity is the identity transform.
var Identity = Affine{A: 1, D: 1}

// Translate returns a translation by (x, y).
func Translate(x, y float64) Affine {
	return Affine{A: 1, D: 1, E: x, F: y}
}

// Rotate returns a rotation by deg degrees about the origin.
func Rotate(deg float64) Affine {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Affine{A: cos, B: sin, C: -sin, D: cos}
}

// Mul composes two transforms: m.Mul(n) applies n first, then m. Parent
// transforms therefore multiply on the left of child transforms.
func (m Affine) Mul(n Affine) Affine {
	return Affine{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Apply maps a point through the transform.
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// Bounds returns the axis-aligned bounding box of a w×h rectangle placed at
// the transform's origin.
func (m Affine) Bounds(w, h float64) Rect {
	xs := [4]float64{}
	ys := [4]float64{}
	xs[0], ys[0] = m.Apply(0, 0)
	xs[1], ys[1] = m.Apply(w, 0)
	xs[2], ys[2] = m.Apply(0, h)
	xs[3], ys[3] = m.Apply(w, h)
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < 4; i++ {
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// StyleAttr is a bit set naming the style attributes set directly on a node.
type StyleAttr uint16

const (
	AttrFill StyleAttr = 1 << iota
	AttrStroke
	AttrStrokeWeight
	AttrCornerRadius
	AttrEffects
	AttrOpacity
	AttrFontFamily
	AttrFontSize
	AttrFontWeight
	AttrLineHeight
	AttrLetterSpacing
	AttrTextAlign
	AttrTextColor
)

// Has reports whether all bits of a are set.
func (s StyleAttr) Has(a StyleAttr) bool { return s&a == a }

// ResolvedStyle is a fully flattened style: inherited values have been copied
// down so the node is self-contained.
type ResolvedStyle struct {
	Fill          Color     `json:"fill" yaml:"fill"`
	Stroke        Color     `json:"stroke" yaml:"stroke"`
	StrokeWeight  float64   `json:"stroke_weight" yaml:"stroke_weight"`
	CornerRadius  float64   `json:"corner_radius" yaml:"corner_radius"`
	Effects       []Effect  `json:"effects,omitempty" yaml:"effects,omitempty"`
	Opacity       float64   `json:"opacity" yaml:"opacity"`
	FontFamily    string    `json:"font_family" yaml:"font_family"`
	FontSize      float64   `json:"font_size" yaml:"font_size"`
	FontWeight    float64   `json:"font_weight" yaml:"font_weight"`
	LineHeight    float64   `json:"line_height" yaml:"line_height"`
	LetterSpacing float64   `json:"letter_spacing" yaml:"letter_spacing"`
	TextAlign     string    `json:"text_align" yaml:"text_align"`
	TextColor     Color     `json:"text_color" yaml:"text_color"`
	Explicit      StyleAttr `json:"explicit" yaml:"explicit"`
}

// Align is a cross-axis alignment.
type Align string

const (
	AlignStart   Align = "start"
	AlignCenter  Align = "center"
	AlignEnd     Align = "end"
	AlignStretch Align = "stretch"
)

// Insets are paddings around a container's content.
type Insets struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// FlexLayout describes a ROW or COLUMN container.
type FlexLayout struct {
	Gap     float64 `json:"gap" yaml:"gap"`
	Padding Insets  `json:"padding" yaml:"padding"`
	Align   Align   `json:"align" yaml:"align"`
}

// GridLayout describes a GRID container's tiling.
type GridLayout struct {
	Columns   int     `json:"columns" yaml:"columns"`
	Rows      int     `json:"rows" yaml:"rows"`
	ColumnGap float64 `json:"column_gap" yaml:"column_gap"`
	RowGap    float64 `json:"row_gap" yaml:"row_gap"`
	CellWidth float64 `json:"cell_width" yaml:"cell_width"`
	Padding   Insets  `json:"padding" yaml:"padding"`
}

// AssetRef links a LEAF_IMAGE node to the asset manifest. A placeholder ref
// has no manifest entry.
type AssetRef struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	ContentHash string `json:"content_hash,omitempty" yaml:"content_hash,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// IRNode is a normalized node. The tree has the same shape as the source
// document, except that a malformed node's subtree is replaced by a single
// placeholder leaf.
type IRNode struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Source NodeType `json:"source" yaml:"source"`

	// Box is the absolute axis-aligned bounding box.
	Box Rect `json:"box" yaml:"box"`
	// Width and Height are the unrotated size.
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	// Transform is the absolute transform of the node's origin.
	Transform Affine `json:"transform" yaml:"transform"`
	// Rotation is the node's rotation relative to its parent, in degrees.
	Rotation float64 `json:"rotation,omitempty" yaml:"rotation,omitempty"`

	Style    ResolvedStyle `json:"style" yaml:"style"`
	Text     string        `json:"text,omitempty" yaml:"text,omitempty"`
	ImageRef string        `json:"image_ref,omitempty" yaml:"image_ref,omitempty"`

	Role LayoutRole  `json:"role" yaml:"role"`
	Flex *FlexLayout `json:"flex,omitempty" yaml:"flex,omitempty"`
	Grid *GridLayout `json:"grid,omitempty" yaml:"grid,omitempty"`

	Asset       *AssetRef `json:"asset,omitempty" yaml:"asset,omitempty"`
	Placeholder bool      `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`

	Children []*IRNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *IRNode) Clone() *IRNode {
	c := *n
	if n.Flex != nil {
		f := *n.Flex
		c.Flex = &f
	}
	if n.Grid != nil {
		g := *n.Grid
		c.Grid = &g
	}
	if n.Asset != nil {
		a := *n.Asset
		c.Asset = &a
	}
	c.Children = make([]*IRNode, len(n.Children))
	for i, child := range n.Children {
		c.Children[i] = child.Clone()
	}
	return &c
}

// IRTree is the normalized document.
type IRTree struct {
	Name         string    `json:"name" yaml:"name"`
	Version      string    `json:"version" yaml:"version"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
	Roots        []*IRNode `json:"roots" yaml:"roots"`

	// Parents maps node id to parent id; roots are absent. Built once during
	// normalization and read-only afterwards.
	Parents map[string]string `json:"-" yaml:"-"`
}

// Clone returns a deep copy of the tree. The parent index is shared since it
// is never mutated.
func (t *IRTree) Clone() *IRTree {
	c := *t
	c.Roots = make([]*IRNode, len(t.Roots))
	for i, r := range t.Roots {
		c.Roots[i] = r.Clone()
	}
	return &c
}

// WalkIR visits nodes depth-first in document order.
func WalkIR(nodes []*IRNode, fn func(*IRNode)) {
	for _, n := range nodes {
		fn(n)
		WalkIR(n.Children, fn)
	}
}

// Count returns the number of nodes in the tree.
func (t *IRTree) Count() int {
	n := 0
	WalkIR(t.Roots, func(*IRNode) { n++ })
	return n
}
