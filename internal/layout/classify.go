// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout infers how a container arranges its children (row, column,
// grid, or absolute) from the children's boxes.
package layout

import (
	"math"
	"sort"

	"github.com/pdiddy/design-compiler/pkg/types"
)

// DefaultTolerance is the edge comparison slack in pixels.
const DefaultTolerance = 2.0

func tolerance(cfg types.ClassifierConfig) float64 {
	if cfg.Tolerance <= 0 {
		return DefaultTolerance
	}
	return cfg.Tolerance
}

// Classify returns the layout role of node. Text and leaf-image roles set by
// the normalizer are returned unchanged. For containers the children are
// examined in document order:
//
//   - COLUMN when each child starts at or below the previous child's bottom
//     edge. This includes zero or one child and diagonal staircases.
//   - ROW when each child starts at or after the previous child's right edge.
//   - GRID when the children tile a uniform grid in row-major order.
//   - ABSOLUTE otherwise.
func Classify(node *types.IRNode, cfg types.ClassifierConfig) types.LayoutRole {
	switch node.Role {
	case types.RoleText, types.RoleLeafImage:
		return node.Role
	}
	eps := tolerance(cfg)
	boxes := childBoxes(node)

	switch {
	case sequential(boxes, eps, vertical):
		return types.RoleColumn
	case sequential(boxes, eps, horizontal):
		return types.RoleRow
	}
	if _, ok := detectGrid(node.Box, boxes, eps); ok {
		return types.RoleGrid
	}
	return types.RoleAbsolute
}

// ClassifyTree assigns a role to every container, children before parents,
// and fills in flex and grid parameters. It mutates the tree in place and is
// the last step of IR construction.
func ClassifyTree(tree *types.IRTree, cfg types.ClassifierConfig) {
	for _, root := range tree.Roots {
		classifyNode(root, cfg)
	}
}

func classifyNode(node *types.IRNode, cfg types.ClassifierConfig) {
	for _, child := range node.Children {
		classifyNode(child, cfg)
	}

	role := Classify(node, cfg)
	node.Role = role
	eps := tolerance(cfg)
	boxes := childBoxes(node)

	switch role {
	case types.RoleRow:
		node.Flex = flexLayout(node.Box, boxes, eps, horizontal)
	case types.RoleColumn:
		node.Flex = flexLayout(node.Box, boxes, eps, vertical)
	case types.RoleGrid:
		g, _ := detectGrid(node.Box, boxes, eps)
		node.Grid = &g
	}
}

func childBoxes(node *types.IRNode) []types.Rect {
	boxes := make([]types.Rect, len(node.Children))
	for i, c := range node.Children {
		boxes[i] = c.Box
	}
	return boxes
}

type axis int

const (
	horizontal axis = iota
	vertical
)

// span projects a box onto an axis.
func span(b types.Rect, a axis) (start, end float64) {
	if a == horizontal {
		return b.X, b.Right()
	}
	return b.Y, b.Bottom()
}

func cross(a axis) axis {
	if a == horizontal {
		return vertical
	}
	return horizontal
}

// sequential reports whether each box starts at or after the previous box's
// end on axis a.
func sequential(boxes []types.Rect, eps float64, a axis) bool {
	for i := 1; i < len(boxes); i++ {
		_, prevEnd := span(boxes[i-1], a)
		start, _ := span(boxes[i], a)
		if start < prevEnd-eps {
			return false
		}
	}
	return true
}

// padding measures the inset between the container and the union of its
// children. Negative insets clamp to zero.
func padding(container types.Rect, boxes []types.Rect) types.Insets {
	if len(boxes) == 0 {
		return types.Insets{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range boxes {
		minX = math.Min(minX, b.X)
		minY = math.Min(minY, b.Y)
		maxX = math.Max(maxX, b.Right())
		maxY = math.Max(maxY, b.Bottom())
	}
	return types.Insets{
		Top:    math.Max(0, minY-container.Y),
		Right:  math.Max(0, container.Right()-maxX),
		Bottom: math.Max(0, container.Bottom()-maxY),
		Left:   math.Max(0, minX-container.X),
	}
}

func flexLayout(container types.Rect, boxes []types.Rect, eps float64, a axis) *types.FlexLayout {
	f := &types.FlexLayout{Padding: padding(container, boxes), Align: types.AlignStart}
	if len(boxes) > 1 {
		total := 0.0
		for i := 1; i < len(boxes); i++ {
			_, prevEnd := span(boxes[i-1], a)
			start, _ := span(boxes[i], a)
			total += math.Max(0, start-prevEnd)
		}
		f.Gap = total / float64(len(boxes)-1)
	}
	f.Align = crossAlign(container, f.Padding, boxes, eps, cross(a))
	return f
}

// crossAlign picks the alignment shared by every child on the cross axis c.
func crossAlign(container types.Rect, pad types.Insets, boxes []types.Rect, eps float64, c axis) types.Align {
	if len(boxes) == 0 {
		return types.AlignStart
	}
	innerStart, innerEnd := span(container, c)
	if c == horizontal {
		innerStart += pad.Left
		innerEnd -= pad.Right
	} else {
		innerStart += pad.Top
		innerEnd -= pad.Bottom
	}

	all := func(pred func(start, end float64) bool) bool {
		for _, b := range boxes {
			if !pred(span(b, c)) {
				return false
			}
		}
		return true
	}
	near := func(a, b float64) bool { return math.Abs(a-b) <= eps }

	switch {
	case len(boxes) > 1 && all(func(s, e float64) bool { return near(s, innerStart) && near(e, innerEnd) }):
		return types.AlignStretch
	case all(func(s, _ float64) bool { return near(s, innerStart) }):
		return types.AlignStart
	case all(func(s, e float64) bool { return near((s+e)/2, (innerStart+innerEnd)/2) }):
		return types.AlignCenter
	case all(func(_, e float64) bool { return near(e, innerEnd) }):
		return types.AlignEnd
	}
	return types.AlignStart
}

// clusters groups values that lie within eps of a group's smallest member
// and returns the group representatives in ascending order.
func clusters(values []float64, eps float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	var reps []float64
	for _, v := range sorted {
		if len(reps) == 0 || v-reps[len(reps)-1] > eps {
			reps = append(reps, v)
		}
	}
	return reps
}

// detectGrid reports whether boxes tile a grid: at least two column and two
// row starts, children in row-major order with one child per cell, uniform
// cell size and gaps, and only the last row short.
func detectGrid(container types.Rect, boxes []types.Rect, eps float64) (types.GridLayout, bool) {
	if len(boxes) < 3 {
		return types.GridLayout{}, false
	}
	xs := make([]float64, len(boxes))
	ys := make([]float64, len(boxes))
	for i, b := range boxes {
		xs[i], ys[i] = b.X, b.Y
	}
	cols := clusters(xs, eps)
	rows := clusters(ys, eps)
	nc, nr := len(cols), len(rows)
	if nc < 2 || nr < 2 || (len(boxes)+nc-1)/nc != nr {
		return types.GridLayout{}, false
	}

	near := func(a, b float64) bool { return math.Abs(a-b) <= eps }
	cellW, cellH := boxes[0].Width, boxes[0].Height
	for i, b := range boxes {
		if !near(b.X, cols[i%nc]) || !near(b.Y, rows[i/nc]) {
			return types.GridLayout{}, false
		}
		if !near(b.Width, cellW) || !near(b.Height, cellH) {
			return types.GridLayout{}, false
		}
	}

	colGap, ok := uniformGap(cols, cellW, eps)
	if !ok {
		return types.GridLayout{}, false
	}
	rowGap, ok := uniformGap(rows, cellH, eps)
	if !ok {
		return types.GridLayout{}, false
	}

	return types.GridLayout{
		Columns:   nc,
		Rows:      nr,
		ColumnGap: colGap,
		RowGap:    rowGap,
		CellWidth: cellW,
		Padding:   padding(container, boxes),
	}, true
}

// uniformGap returns the spacing between consecutive tracks of size cell,
// failing when tracks overlap or spacing varies by more than eps.
func uniformGap(starts []float64, cell, eps float64) (float64, bool) {
	gap := starts[1] - starts[0] - cell
	if gap < -eps {
		return 0, false
	}
	for i := 2; i < len(starts); i++ {
		if math.Abs(starts[i]-starts[i-1]-cell-gap) > eps {
			return 0, false
		}
	}
	return math.Max(0, gap), true
}
