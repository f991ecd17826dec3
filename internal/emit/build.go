// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pdiddy/design-compiler/pkg/types"
)

// element is a target-neutral markup node. Styling is carried as
// declarations until a target assigns class names.
type element struct {
	tag    atom.Atom
	prefix string
	attrs  []html.Attribute
	text   string

	base decls
	// wide applies at viewports of at least bp pixels.
	wide decls
	bp   int

	class    string
	children []*element
}

// invariantViolation is raised inside the builder and recovered by Emit.
type invariantViolation struct {
	nodeID string
	msg    string
}

func (v invariantViolation) Error() string {
	return fmt.Sprintf("node %s: %s", v.nodeID, v.msg)
}

type builder struct {
	breakpoints []int
}

// fluidBreakpoint returns the breakpoint below which a container of width w
// rearranges, or 0 when it fits the smallest viewport.
func (b *builder) fluidBreakpoint(w float64) int {
	if len(b.breakpoints) == 0 || w <= float64(b.breakpoints[0]) {
		return 0
	}
	for _, bp := range b.breakpoints {
		if float64(bp) >= w {
			return bp
		}
	}
	return b.breakpoints[len(b.breakpoints)-1]
}

// build converts the IR subtree at n. parent is nil for roots.
func (b *builder) build(n, parent *types.IRNode) *element {
	e := &element{}
	positioned := position(&e.base, n, parent)
	bp := b.fluidBreakpoint(n.Box.Width)

	switch n.Role {
	case types.RoleRow, types.RoleColumn:
		e.tag, e.prefix = atom.Div, "column"
		e.base.add("display", "flex")
		switch {
		case n.Role == types.RoleColumn:
			e.base.add("flex-direction", "column")
		case bp > 0:
			e.prefix = "row"
			e.base.add("flex-direction", "column")
			e.wide.add("flex-direction", "row")
			e.bp = bp
		default:
			e.prefix = "row"
			e.base.add("flex-direction", "row")
		}
		if f := n.Flex; f != nil {
			if f.Gap > 0 {
				e.base.add("gap", px(f.Gap))
			}
			padding(&e.base, f.Padding)
			if f.Align != types.AlignStretch {
				e.base.add("align-items", alignValues[f.Align])
			}
		}
		b.width(&e.base, n)

	case types.RoleGrid:
		e.tag, e.prefix = atom.Div, "grid"
		e.base.add("display", "grid")
		cols := 1
		if n.Grid != nil {
			cols = n.Grid.Columns
		}
		tracks := fmt.Sprintf("repeat(%d, minmax(0, 1fr))", cols)
		if bp > 0 {
			e.base.add("grid-template-columns", "repeat(1, minmax(0, 1fr))")
			e.wide.add("grid-template-columns", tracks)
			e.bp = bp
		} else {
			e.base.add("grid-template-columns", tracks)
		}
		if g := n.Grid; g != nil {
			if g.ColumnGap > 0 {
				e.base.add("column-gap", px(g.ColumnGap))
			}
			if g.RowGap > 0 {
				e.base.add("row-gap", px(g.RowGap))
			}
			padding(&e.base, g.Padding)
		}
		b.width(&e.base, n)

	case types.RoleAbsolute:
		e.tag, e.prefix = atom.Div, "stack"
		if !positioned {
			e.base.add("position", "relative")
		}
		b.width(&e.base, n)
		e.base.add("height", px(n.Height))

	case types.RoleText:
		e.tag, e.prefix = textTag(n.Style.FontSize), "text"
		e.text = n.Text
		typography(&e.base, n.Style)
		if positioned {
			e.base.add("width", px(n.Width))
		}

	case types.RoleLeafImage:
		if n.Asset == nil || n.Asset.Placeholder || n.Asset.Name == "" {
			e.tag, e.prefix = atom.Div, "placeholder"
			e.attrs = []html.Attribute{
				{Key: "role", Val: "img"},
				{Key: "aria-label", Val: n.Name},
				{Key: "data-missing-asset", Val: n.ID},
			}
			e.base.add("width", px(n.Width))
			e.base.add("height", px(n.Height))
			e.base.add("background-color", placeholderFill)
		} else {
			e.tag, e.prefix = atom.Img, "image"
			e.attrs = []html.Attribute{
				{Key: "src", Val: "assets/" + n.Asset.Name},
				{Key: "alt", Val: n.Name},
			}
			e.base.add("display", "block")
			if b.fluidBreakpoint(n.Width) > 0 {
				e.base.add("width", "100%")
				e.base.add("max-width", px(n.Width))
				e.base.add("height", "auto")
			} else {
				e.base.add("width", px(n.Width))
				e.base.add("height", px(n.Height))
			}
			e.base.add("object-fit", "cover")
		}

	default:
		panic(invariantViolation{nodeID: n.ID, msg: fmt.Sprintf("no rendering for layout role %s", n.Role)})
	}

	if n.Rotation != 0 {
		e.base.add("transform", "rotate("+num(n.Rotation)+"deg)")
		e.base.add("transform-origin", "top left")
	}
	decoration(&e.base, n.Style, n.Role == types.RoleText)

	if !n.Role.IsLeaf() {
		for _, c := range n.Children {
			e.children = append(e.children, b.build(c, n))
		}
	}
	return e
}

const placeholderFill = "#e5e5e5"

// position places children of an ABSOLUTE parent at their origin relative
// to the parent's box. It reports whether the node was positioned.
func position(d *decls, n, parent *types.IRNode) bool {
	if parent == nil || parent.Role != types.RoleAbsolute {
		return false
	}
	x, y := n.Box.X, n.Box.Y
	if n.Rotation != 0 {
		x, y = n.Transform.E, n.Transform.F
	}
	d.add("position", "absolute")
	d.add("left", px(x-parent.Box.X))
	d.add("top", px(y-parent.Box.Y))
	return true
}

// width fixes a container's width, or makes it fluid up to its design width
// when it is wider than the smallest breakpoint.
func (b *builder) width(d *decls, n *types.IRNode) {
	if b.fluidBreakpoint(n.Width) > 0 {
		d.add("width", "100%")
		d.add("max-width", px(n.Width))
		return
	}
	d.add("width", px(n.Width))
}

func textTag(size float64) atom.Atom {
	switch {
	case size >= 32:
		return atom.H1
	case size >= 24:
		return atom.H2
	}
	return atom.P
}
