// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/design-compiler/pkg/types"
)

func leaf(x, y, w, h float64) *types.IRNode {
	return &types.IRNode{
		ID:   fmt.Sprintf("%g,%g", x, y),
		Box:  types.Rect{X: x, Y: y, Width: w, Height: h},
		Role: types.RoleLeafImage,
	}
}

func container(box types.Rect, children ...*types.IRNode) *types.IRNode {
	return &types.IRNode{ID: "c", Source: types.NodeFrame, Box: box, Children: children}
}

var cfg = types.ClassifierConfig{}

func TestClassify(t *testing.T) {
	box := types.Rect{Width: 400, Height: 400}
	tests := []struct {
		name     string
		children []*types.IRNode
		want     types.LayoutRole
	}{
		{"three in a row", []*types.IRNode{leaf(0, 0, 50, 50), leaf(60, 0, 50, 50), leaf(120, 0, 50, 50)}, types.RoleRow},
		{"three in a column", []*types.IRNode{leaf(0, 0, 50, 50), leaf(0, 60, 50, 50), leaf(0, 120, 50, 50)}, types.RoleColumn},
		{"single child", []*types.IRNode{leaf(10, 10, 50, 50)}, types.RoleColumn},
		{"no children", nil, types.RoleColumn},
		{"touching row within tolerance", []*types.IRNode{leaf(0, 0, 50, 50), leaf(49, 0, 50, 50)}, types.RoleRow},
		{"staircase prefers column", []*types.IRNode{leaf(0, 0, 50, 50), leaf(60, 60, 50, 50)}, types.RoleColumn},
		{"two by two grid", []*types.IRNode{
			leaf(0, 0, 50, 50), leaf(60, 0, 50, 50),
			leaf(0, 60, 50, 50), leaf(60, 60, 50, 50),
		}, types.RoleGrid},
		{"grid with short last row", []*types.IRNode{
			leaf(0, 0, 50, 50), leaf(60, 0, 50, 50), leaf(120, 0, 50, 50),
			leaf(0, 60, 50, 50),
		}, types.RoleGrid},
		{"overlapping", []*types.IRNode{leaf(0, 0, 100, 100), leaf(20, 20, 100, 100)}, types.RoleAbsolute},
		{"grid out of order", []*types.IRNode{
			leaf(60, 0, 50, 50), leaf(0, 0, 50, 50),
			leaf(0, 60, 50, 50), leaf(60, 60, 50, 50),
		}, types.RoleAbsolute},
		{"grid with uneven cells", []*types.IRNode{
			leaf(0, 0, 50, 50), leaf(60, 0, 30, 50),
			leaf(0, 60, 50, 50), leaf(60, 60, 50, 50),
		}, types.RoleAbsolute},
		{"grid with uneven gaps", []*types.IRNode{
			leaf(0, 0, 50, 50), leaf(60, 0, 50, 50), leaf(140, 0, 50, 50),
			leaf(0, 60, 50, 50), leaf(60, 60, 50, 50), leaf(140, 60, 50, 50),
		}, types.RoleAbsolute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(container(box, tt.children...), cfg))
		})
	}
}

func TestClassify_LeafRolesUnchanged(t *testing.T) {
	assert.Equal(t, types.RoleText, Classify(&types.IRNode{Role: types.RoleText}, cfg))
	assert.Equal(t, types.RoleLeafImage, Classify(&types.IRNode{Role: types.RoleLeafImage}, cfg))
}

func TestClassify_Deterministic(t *testing.T) {
	n := container(types.Rect{Width: 300, Height: 100},
		leaf(0, 0, 50, 50), leaf(60, 0, 50, 50), leaf(120, 0, 50, 50))
	first := Classify(n, cfg)
	for range 10 {
		assert.Equal(t, first, Classify(n, cfg))
	}
}

func TestClassify_Tolerance(t *testing.T) {
	n := container(types.Rect{Width: 200, Height: 100}, leaf(0, 0, 50, 50), leaf(45, 0, 50, 50))
	assert.Equal(t, types.RoleAbsolute, Classify(n, cfg))
	assert.Equal(t, types.RoleRow, Classify(n, types.ClassifierConfig{Tolerance: 6}))
}

func TestClassifyTree_FlexLayout(t *testing.T) {
	row := container(types.Rect{X: 0, Y: 0, Width: 200, Height: 60},
		leaf(10, 10, 50, 40), leaf(70, 10, 50, 40), leaf(130, 10, 50, 40))
	tree := &types.IRTree{Roots: []*types.IRNode{row}}

	ClassifyTree(tree, cfg)

	assert.Equal(t, types.RoleRow, row.Role)
	require.NotNil(t, row.Flex)
	assert.Equal(t, 10.0, row.Flex.Gap)
	assert.Equal(t, types.Insets{Top: 10, Right: 20, Bottom: 10, Left: 10}, row.Flex.Padding)
	assert.Equal(t, types.AlignStretch, row.Flex.Align)
}

func TestClassifyTree_CrossAlign(t *testing.T) {
	tests := []struct {
		name     string
		children []*types.IRNode
		want     types.Align
	}{
		{"centered", []*types.IRNode{leaf(0, 0, 100, 20), leaf(25, 30, 50, 20)}, types.AlignCenter},
		{"end", []*types.IRNode{leaf(0, 0, 100, 20), leaf(50, 30, 50, 20)}, types.AlignEnd},
		{"start", []*types.IRNode{leaf(0, 0, 100, 20), leaf(0, 30, 30, 20)}, types.AlignStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := container(types.Rect{Width: 100, Height: 50}, tt.children...)
			ClassifyTree(&types.IRTree{Roots: []*types.IRNode{col}}, cfg)
			require.Equal(t, types.RoleColumn, col.Role)
			assert.Equal(t, tt.want, col.Flex.Align)
		})
	}
}

func TestClassifyTree_Grid(t *testing.T) {
	g := container(types.Rect{Width: 200, Height: 200},
		leaf(10, 10, 50, 50), leaf(70, 10, 50, 50), leaf(130, 10, 50, 50),
		leaf(10, 80, 50, 50), leaf(70, 80, 50, 50))

	ClassifyTree(&types.IRTree{Roots: []*types.IRNode{g}}, cfg)

	require.Equal(t, types.RoleGrid, g.Role)
	require.NotNil(t, g.Grid)
	assert.Equal(t, 3, g.Grid.Columns)
	assert.Equal(t, 2, g.Grid.Rows)
	assert.Equal(t, 10.0, g.Grid.ColumnGap)
	assert.Equal(t, 20.0, g.Grid.RowGap)
	assert.Equal(t, 50.0, g.Grid.CellWidth)
	assert.Nil(t, g.Flex)
}

func TestClassifyTree_BottomUp(t *testing.T) {
	inner := container(types.Rect{Width: 100, Height: 50}, leaf(0, 0, 40, 50), leaf(50, 0, 40, 50))
	inner.ID = "inner"
	outer := container(types.Rect{Width: 100, Height: 200}, inner, leaf(0, 60, 100, 100))
	tree := &types.IRTree{Roots: []*types.IRNode{outer}}

	ClassifyTree(tree, cfg)

	assert.Equal(t, types.RoleRow, inner.Role)
	assert.Equal(t, types.RoleColumn, outer.Role)
	types.WalkIR(tree.Roots, func(n *types.IRNode) {
		assert.NotEqual(t, types.RoleUnset, n.Role, n.ID)
	})
}

func TestClusters(t *testing.T) {
	assert.Equal(t, []float64{0, 60}, clusters([]float64{60, 0, 1, 61.5}, 2))
	assert.Empty(t, clusters(nil, 2))
}
