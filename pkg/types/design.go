// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the design-compiler pipeline:
// the raw design document, the normalized IR, assets, emit bundles, history
// records, configuration, and the error taxonomy.
package types

import (
	"fmt"
	"math"
	"time"
)

// NodeType is the type tag of a DesignNode.
type NodeType string

const (
	NodeFrame    NodeType = "FRAME"
	NodeGroup    NodeType = "GROUP"
	NodeText     NodeType = "TEXT"
	NodeImage    NodeType = "IMAGE"
	NodeVector   NodeType = "VECTOR"
	NodeInstance NodeType = "INSTANCE"
)

// Known reports whether t is one of the node types the normalizer understands.
func (t NodeType) Known() bool {
	switch t {
	case NodeFrame, NodeGroup, NodeText, NodeImage, NodeVector, NodeInstance:
		return true
	}
	return false
}

// IsContainer reports whether nodes of this type lay out children.
func (t NodeType) IsContainer() bool {
	return t == NodeFrame || t == NodeGroup || t == NodeInstance
}

// DesignDocument is a loaded design file. It is immutable once the loader
// returns it.
type DesignDocument struct {
	// Name is the file name as shown in the design tool.
	Name string `json:"name" yaml:"name"`

	// Version is the remote file version identifier.
	Version string `json:"version" yaml:"version"`

	// LastModified is the remote last-modified timestamp.
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`

	// ThumbnailURL is a preview image for the file, when the source provides one.
	ThumbnailURL string `json:"thumbnail_url,omitempty" yaml:"thumbnail_url,omitempty"`

	// Roots is the ordered forest of top-level nodes.
	Roots []*DesignNode `json:"roots" yaml:"roots"`
}

// CountNodes returns the number of nodes in the forest.
func (d *DesignDocument) CountNodes() int {
	n := 0
	Walk(d.Roots, func(*DesignNode) { n++ })
	return n
}

// Walk visits nodes depth-first in document order.
func Walk(nodes []*DesignNode, fn func(*DesignNode)) {
	for _, node := range nodes {
		fn(node)
		Walk(node.Children, fn)
	}
}

// DesignNode is one node of the raw design tree. Parents own their children;
// there are no back-references.
type DesignNode struct {
	ID         string        `json:"id" yaml:"id"`
	Name       string        `json:"name" yaml:"name"`
	Type       NodeType      `json:"type" yaml:"type"`
	Geometry   Geometry      `json:"geometry" yaml:"geometry"`
	Style      Style         `json:"style" yaml:"style"`
	Characters string        `json:"characters,omitempty" yaml:"characters,omitempty"`
	ImageRef   string        `json:"image_ref,omitempty" yaml:"image_ref,omitempty"`
	Children   []*DesignNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// Geometry is a node's box in its parent's coordinate space. Rotation is in
// degrees, clockwise on screen (y grows downward), about the node's top-left
// corner.
type Geometry struct {
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Width    float64 `json:"width" yaml:"width"`
	Height   float64 `json:"height" yaml:"height"`
	Rotation float64 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
}

// Valid reports whether every component is finite and the size is non-negative.
func (g Geometry) Valid() bool {
	for _, v := range []float64{g.X, g.Y, g.Width, g.Height, g.Rotation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return g.Width >= 0 && g.Height >= 0
}

// Style holds the attributes set directly on a node. A nil pointer or nil
// slice means "not set" and is resolved by inheritance.
type Style struct {
	Fills        []Paint    `json:"fills,omitempty" yaml:"fills,omitempty"`
	Strokes      []Paint    `json:"strokes,omitempty" yaml:"strokes,omitempty"`
	StrokeWeight *float64   `json:"stroke_weight,omitempty" yaml:"stroke_weight,omitempty"`
	CornerRadius *float64   `json:"corner_radius,omitempty" yaml:"corner_radius,omitempty"`
	Effects      []Effect   `json:"effects,omitempty" yaml:"effects,omitempty"`
	Opacity      *float64   `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	Typography   *TypeStyle `json:"typography,omitempty" yaml:"typography,omitempty"`
}

// Paint types.
const (
	PaintSolid = "SOLID"
	PaintImage = "IMAGE"
)

// Paint is a fill or stroke.
type Paint struct {
	Type     string  `json:"type" yaml:"type"`
	Color    Color   `json:"color" yaml:"color"`
	Opacity  float64 `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	ImageRef string  `json:"image_ref,omitempty" yaml:"image_ref,omitempty"`
	Hidden   bool    `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// Effective returns the paint colour with the paint opacity folded into alpha.
// An unset (zero) opacity counts as fully opaque.
func (p Paint) Effective() Color {
	c := p.Color
	if p.Opacity > 0 {
		c.A *= p.Opacity
	}
	return c
}

// Color is an RGBA colour with components in 0..1.
type Color struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
	A float64 `json:"a" yaml:"a"`
}

var (
	// Black is the baseline text colour.
	Black = Color{A: 1}
	// Transparent is the baseline fill.
	Transparent = Color{}
)

// IsTransparent reports whether the colour has no visible alpha.
func (c Color) IsTransparent() bool {
	return c.A <= 0
}

// Hex returns "#RRGGBB", or "#RRGGBBAA" when the colour is translucent.
func (c Color) Hex() string {
	r := channel(c.R)
	g := channel(c.G)
	b := channel(c.B)
	if a := channel(c.A); a < 255 {
		return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, a)
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func channel(v float64) int {
	n := int(math.Round(v * 255))
	return max(0, min(255, n))
}

// Effect types.
const (
	EffectDropShadow  = "DROP_SHADOW"
	EffectInnerShadow = "INNER_SHADOW"
	EffectLayerBlur   = "LAYER_BLUR"
)

// Effect is a shadow or blur.
type Effect struct {
	Type    string  `json:"type" yaml:"type"`
	Radius  float64 `json:"radius" yaml:"radius"`
	Color   Color   `json:"color" yaml:"color"`
	OffsetX float64 `json:"offset_x,omitempty" yaml:"offset_x,omitempty"`
	OffsetY float64 `json:"offset_y,omitempty" yaml:"offset_y,omitempty"`
	Hidden  bool    `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// TypeStyle holds typography. Each field is optional and inherits on its own.
type TypeStyle struct {
	FontFamily    *string  `json:"font_family,omitempty" yaml:"font_family,omitempty"`
	FontSize      *float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	FontWeight    *float64 `json:"font_weight,omitempty" yaml:"font_weight,omitempty"`
	LineHeight    *float64 `json:"line_height,omitempty" yaml:"line_height,omitempty"`
	LetterSpacing *float64 `json:"letter_spacing,omitempty" yaml:"letter_spacing,omitempty"`
	TextAlign     *string  `json:"text_align,omitempty" yaml:"text_align,omitempty"`
	Color         *Color   `json:"color,omitempty" yaml:"color,omitempty"`
}

// Float returns a pointer to v. Used to build optional style attributes.
func Float(v float64) *float64 { return &v }

// String returns a pointer to s.
func String(s string) *string { return &s }
