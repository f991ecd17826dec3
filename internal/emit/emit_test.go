// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/design-compiler/internal/layout"
	"github.com/pdiddy/design-compiler/internal/normalize"
	"github.com/pdiddy/design-compiler/pkg/types"
)

var allTargets = []types.OutputTarget{
	types.TargetMarkupUtility,
	types.TargetComponentUtility,
	types.TargetMarkupStylesheet,
}

func box(x, y, w, h float64) types.Rect {
	return types.Rect{X: x, Y: y, Width: w, Height: h}
}

func container(id string, role types.LayoutRole, b types.Rect, children ...*types.IRNode) *types.IRNode {
	return &types.IRNode{
		ID: id, Name: "Frame " + id, Source: types.NodeFrame, Role: role,
		Box: b, Width: b.Width, Height: b.Height, Transform: types.Translate(b.X, b.Y),
		Style: normalize.Baseline, Children: children,
	}
}

func textNode(id, chars string, b types.Rect) *types.IRNode {
	return &types.IRNode{
		ID: id, Name: "Text " + id, Source: types.NodeText, Role: types.RoleText, Text: chars,
		Box: b, Width: b.Width, Height: b.Height, Transform: types.Translate(b.X, b.Y),
		Style: normalize.Baseline,
	}
}

func imageNode(id, name, asset string, b types.Rect) *types.IRNode {
	return &types.IRNode{
		ID: id, Name: name, Source: types.NodeImage, Role: types.RoleLeafImage,
		Box: b, Width: b.Width, Height: b.Height, Transform: types.Translate(b.X, b.Y),
		Style: normalize.Baseline, Asset: &types.AssetRef{Name: asset, ContentHash: "h-" + asset},
	}
}

func treeOf(roots ...*types.IRNode) *types.IRTree {
	return &types.IRTree{Name: "Sample", Roots: roots}
}

func sampleDocument() *types.DesignDocument {
	red := types.Color{R: 1, A: 1}
	return &types.DesignDocument{
		Name: "Landing",
		Roots: []*types.DesignNode{{
			ID: "1", Name: "Page", Type: types.NodeFrame,
			Geometry: types.Geometry{Width: 1200, Height: 800},
			Style:    types.Style{Fills: []types.Paint{{Type: types.PaintSolid, Color: red}}},
			Children: []*types.DesignNode{
				{ID: "2", Name: "Title", Type: types.NodeText, Characters: "Hello {world}",
					Geometry: types.Geometry{X: 20, Y: 20, Width: 300, Height: 40},
					Style:    types.Style{Typography: &types.TypeStyle{FontSize: types.Float(36), FontFamily: types.String("Inter")}}},
				{ID: "3", Name: "Cards", Type: types.NodeFrame,
					Geometry: types.Geometry{X: 20, Y: 80, Width: 700, Height: 200},
					Children: []*types.DesignNode{
						{ID: "4", Name: "A", Type: types.NodeFrame, Geometry: types.Geometry{X: 0, Y: 0, Width: 200, Height: 200}},
						{ID: "5", Name: "B", Type: types.NodeFrame, Geometry: types.Geometry{X: 250, Y: 0, Width: 200, Height: 200}},
						{ID: "6", Name: "C", Type: types.NodeFrame, Geometry: types.Geometry{X: 500, Y: 0, Width: 200, Height: 200}},
					}},
				{ID: "7", Name: "Badge", Type: types.NodeVector,
					Geometry: types.Geometry{X: 900, Y: 20, Width: 24, Height: 24, Rotation: 45}},
			},
		}},
	}
}

func classified(t *testing.T) *types.IRTree {
	t.Helper()
	tree, warnings := normalize.Normalize(sampleDocument())
	require.Empty(t, warnings)
	layout.ClassifyTree(tree, types.ClassifierConfig{})
	return tree
}

func TestEmit_Idempotent(t *testing.T) {
	for _, target := range allTargets {
		t.Run(string(target), func(t *testing.T) {
			first, err := Emit(classified(t), target, types.Options{})
			require.NoError(t, err)
			second, err := Emit(classified(t), target, types.Options{})
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestEmit_ColumnWithTextAndImage(t *testing.T) {
	root := container("1", types.RoleColumn, box(0, 0, 300, 100),
		textNode("2", "Hello", box(0, 0, 300, 20)),
		imageNode("3", "Pixel", "pixel.png", box(0, 20, 1, 1)),
	)
	root.Flex = &types.FlexLayout{Align: types.AlignStart}

	b, err := Emit(treeOf(root), types.TargetMarkupUtility, types.Options{})
	require.NoError(t, err)

	assert.Equal(t, "index.html", b.EntryName)
	assert.Nil(t, b.StyleSheet)
	assert.Empty(t, b.ComponentFiles)

	m := b.EntryMarkup
	assert.True(t, strings.HasPrefix(m, "<!DOCTYPE html>\n<html lang=\"en\">"))
	assert.Contains(t, m, `<script src="https://cdn.tailwindcss.com"></script>`)
	assert.Contains(t, m, `<div class="flex flex-col items-start w-[300px]">`)
	assert.Contains(t, m, `<p class="font-[sans-serif] text-[16px] font-[400] text-[#000000]">Hello</p>`)
	assert.Contains(t, m, `<img class="block w-[1px] h-[1px] object-cover" src="assets/pixel.png" alt="Pixel"/>`)
	assert.Contains(t, m, "<title>Sample</title>")
}

func TestEmit_InvariantViolation(t *testing.T) {
	tests := []struct {
		name string
		tree *types.IRTree
	}{
		{"unset root", treeOf(container("1", types.RoleUnset, box(0, 0, 10, 10)))},
		{"unset child", treeOf(container("1", types.RoleColumn, box(0, 0, 10, 10),
			container("2", types.RoleUnset, box(0, 0, 5, 5))))},
		{"unknown role", treeOf(container("1", types.LayoutRole(42), box(0, 0, 10, 10)))},
	}
	for _, tt := range tests {
		for _, target := range allTargets {
			t.Run(tt.name+"/"+string(target), func(t *testing.T) {
				b, err := Emit(tt.tree, target, types.Options{})
				require.Error(t, err)
				assert.Nil(t, b)
				assert.True(t, errors.Is(err, types.ErrInternal))
				assert.Equal(t, types.KindInternal, types.KindOf(err))
			})
		}
	}
}

func TestEmit_UnknownTarget(t *testing.T) {
	_, err := Emit(treeOf(), types.OutputTarget("pdf"), types.Options{})
	assert.Equal(t, types.KindInvalidOptions, types.KindOf(err))
}

func TestEmit_StylesheetSharesClasses(t *testing.T) {
	root := container("1", types.RoleColumn, box(0, 0, 300, 60),
		textNode("2", "One", box(0, 0, 300, 20)),
		textNode("3", "Two", box(0, 20, 300, 20)),
		textNode("4", "Three", box(0, 40, 300, 20)),
	)
	b, err := Emit(treeOf(root), types.TargetMarkupStylesheet, types.Options{})
	require.NoError(t, err)
	require.NotNil(t, b.StyleSheet)

	css := *b.StyleSheet
	assert.Equal(t, 1, strings.Count(css, ".text-1 {"))
	assert.NotContains(t, css, ".text-2")
	assert.Contains(t, css, ".column-1 {\n  display: flex;\n  flex-direction: column;\n  width: 300px;\n}\n")
	assert.True(t, strings.HasPrefix(css, "*, *::before, *::after {"))

	assert.Equal(t, 3, strings.Count(b.EntryMarkup, `<p class="text-1">`))
	assert.Contains(t, b.EntryMarkup, `<link rel="stylesheet" href="styles.css"/>`)
	assert.NotContains(t, b.EntryMarkup, "tailwindcss")
}

func TestEmit_Responsive(t *testing.T) {
	row := func() *types.IRTree {
		r := container("1", types.RoleRow, box(0, 0, 900, 100),
			container("2", types.RoleColumn, box(0, 0, 400, 100)),
			container("3", types.RoleColumn, box(500, 0, 400, 100)),
		)
		r.Flex = &types.FlexLayout{Gap: 100, Align: types.AlignStretch}
		return treeOf(r)
	}

	t.Run("default breakpoints", func(t *testing.T) {
		b, err := Emit(row(), types.TargetMarkupUtility, types.Options{})
		require.NoError(t, err)
		assert.Contains(t, b.EntryMarkup, `class="flex flex-col gap-[100px] w-full max-w-[900px] lg:flex-row"`)
	})

	t.Run("custom breakpoint", func(t *testing.T) {
		b, err := Emit(row(), types.TargetMarkupUtility, types.Options{Breakpoints: []int{360, 960}})
		require.NoError(t, err)
		assert.Contains(t, b.EntryMarkup, "min-[960px]:flex-row")
		assert.Contains(t, b.EntryMarkup, `class="flex flex-col w-full max-w-[400px]"`, "children wider than 360 are fluid")
	})

	t.Run("stylesheet media query", func(t *testing.T) {
		b, err := Emit(row(), types.TargetMarkupStylesheet, types.Options{})
		require.NoError(t, err)
		assert.Contains(t, *b.StyleSheet, "@media (min-width: 1024px) {\n  .row-1 {\n    flex-direction: row;\n  }\n}\n")
	})

	t.Run("disabled", func(t *testing.T) {
		b, err := Emit(row(), types.TargetMarkupUtility, types.Options{Breakpoints: []int{}})
		require.NoError(t, err)
		assert.Contains(t, b.EntryMarkup, `class="flex flex-row gap-[100px] w-[900px]"`)
		assert.NotContains(t, b.EntryMarkup, "max-w-")
	})
}

func TestEmit_Grid(t *testing.T) {
	g := container("1", types.RoleGrid, box(0, 0, 600, 300))
	g.Grid = &types.GridLayout{Columns: 3, Rows: 2, ColumnGap: 10, RowGap: 20}

	b, err := Emit(treeOf(g), types.TargetMarkupUtility, types.Options{Breakpoints: []int{}})
	require.NoError(t, err)
	assert.Contains(t, b.EntryMarkup, `class="grid grid-cols-3 gap-x-[10px] gap-y-[20px] w-[600px]"`)

	b, err = Emit(treeOf(g), types.TargetMarkupUtility, types.Options{Breakpoints: []int{320, 768}})
	require.NoError(t, err)
	assert.Contains(t, b.EntryMarkup, `class="grid grid-cols-1 gap-x-[10px] gap-y-[20px] w-full max-w-[600px] md:grid-cols-3"`)
}

func TestEmit_AbsoluteChildren(t *testing.T) {
	child := textNode("2", "Pinned", box(30, 40, 50, 20))
	rotated := imageNode("3", "Star", "star.svg", box(60, 10, 20, 20))
	rotated.Rotation = 90
	rotated.Transform = types.Translate(80, 10).Mul(types.Rotate(90))
	root := container("1", types.RoleAbsolute, box(10, 10, 200, 100), child, rotated)

	b, err := Emit(treeOf(root), types.TargetMarkupUtility, types.Options{Breakpoints: []int{}})
	require.NoError(t, err)

	m := b.EntryMarkup
	assert.Contains(t, m, `<div class="relative w-[200px] h-[100px]">`)
	assert.Contains(t, m, `<p class="absolute left-[20px] top-[30px] font-[sans-serif]`)
	assert.Contains(t, m, "w-[50px]\">Pinned</p>")
	assert.Contains(t, m, `class="absolute left-[70px] top-[0px] block w-[20px] h-[20px] object-cover rotate-[90deg] origin-top-left"`)
}

func TestEmit_Placeholder(t *testing.T) {
	missing := imageNode("5", "Hero", "", box(0, 0, 100, 50))
	missing.Asset = &types.AssetRef{Placeholder: true}
	b, err := Emit(treeOf(container("1", types.RoleColumn, box(0, 0, 100, 50), missing)),
		types.TargetMarkupUtility, types.Options{})
	require.NoError(t, err)

	assert.Contains(t, b.EntryMarkup,
		`<div class="w-[100px] h-[50px] bg-[#e5e5e5]" role="img" aria-label="Hero" data-missing-asset="5"></div>`)
	assert.NotContains(t, b.EntryMarkup, "<img")
}

func TestEmit_TextLinesAndHeadings(t *testing.T) {
	title := textNode("2", "Big <Title>\nSecond line", box(0, 0, 300, 80))
	title.Style.FontSize = 40
	sub := textNode("3", "Sub", box(0, 80, 300, 30))
	sub.Style.FontSize = 24

	b, err := Emit(treeOf(container("1", types.RoleColumn, box(0, 0, 300, 110), title, sub)),
		types.TargetMarkupUtility, types.Options{})
	require.NoError(t, err)
	assert.Contains(t, b.EntryMarkup, ">Big &lt;Title&gt;<br/>Second line</h1>")
	assert.Contains(t, b.EntryMarkup, ">Sub</h2>")
}

func TestEmit_Components(t *testing.T) {
	hero := container("1", types.RoleColumn, box(0, 0, 300, 40), textNode("2", "Price {x} & <y>", box(0, 0, 300, 20)))
	hero.Name = "Hero Section"
	dup := container("3", types.RoleColumn, box(0, 0, 300, 40), imageNode("4", "Logo", "logo.png", box(0, 0, 10, 10)))
	dup.Name = "hero-section"
	app := container("5", types.RoleColumn, box(0, 0, 10, 10))
	app.Name = "app"

	b, err := Emit(treeOf(hero, dup, app), types.TargetComponentUtility, types.Options{})
	require.NoError(t, err)

	assert.Equal(t, "index.jsx", b.EntryName)
	require.Len(t, b.ComponentFiles, 3)
	assert.Equal(t, "HeroSection", b.ComponentFiles[0].Name)
	assert.Equal(t, "HeroSection2", b.ComponentFiles[1].Name)
	assert.Equal(t, "App2", b.ComponentFiles[2].Name)

	assert.Equal(t, `import HeroSection from './components/HeroSection';
import HeroSection2 from './components/HeroSection2';
import App2 from './components/App2';

export default function App() {
  return (
    <>
      <HeroSection />
      <HeroSection2 />
      <App2 />
    </>
  );
}
`, b.EntryMarkup)

	src := b.ComponentFiles[0].Source
	assert.True(t, strings.HasPrefix(src, "export default function HeroSection() {\n  return (\n    <div className=\"flex flex-col w-[300px]\">\n"))
	assert.Contains(t, src, ">Price &#123;x&#125; &amp; &lt;y&gt;</p>")
	assert.Contains(t, b.ComponentFiles[1].Source, `<img className="block w-[10px] h-[10px] object-cover" src="assets/logo.png" alt="Logo" />`)
	assert.Contains(t, b.ComponentFiles[2].Source, `<div className="flex flex-col w-[10px]" />`)
}

func TestBreakpoints(t *testing.T) {
	tests := []struct {
		name    string
		in      []int
		want    []int
		wantErr bool
	}{
		{"nil selects defaults", nil, []int{640, 768, 1024, 1280}, false},
		{"empty disables", []int{}, []int{}, false},
		{"sorted and deduplicated", []int{1024, 640, 640}, []int{640, 1024}, false},
		{"bounds inclusive", []int{320, 1920}, []int{320, 1920}, false},
		{"too small", []int{100}, nil, true},
		{"too large", []int{640, 4000}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Breakpoints(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, types.ErrInvalidOptions))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBreakpoints_DoesNotAliasDefaults(t *testing.T) {
	got, err := Breakpoints(nil)
	require.NoError(t, err)
	got[0] = 1
	assert.Equal(t, 640, types.DefaultBreakpoints[0])
}

func TestUtility(t *testing.T) {
	tests := []struct {
		d    decl
		want string
	}{
		{decl{"display", "flex"}, "flex"},
		{decl{"gap", "12px"}, "gap-[12px]"},
		{decl{"grid-template-columns", "repeat(4, minmax(0, 1fr))"}, "grid-cols-4"},
		{decl{"grid-template-columns", "repeat(14, minmax(0, 1fr))"}, "grid-cols-[repeat(14,minmax(0,1fr))]"},
		{decl{"box-shadow", "0px 4px 8px #00000040"}, "shadow-[0px_4px_8px_#00000040]"},
		{decl{"font-family", "'Open Sans', sans-serif"}, "font-['Open_Sans',_sans-serif]"},
		{decl{"filter", "blur(4px)"}, "blur-[4px]"},
		{decl{"transform", "rotate(-12.5deg)"}, "rotate-[-12.5deg]"},
		{decl{"text-align", "center"}, "text-center"},
		{decl{"color", "#ff0000"}, "text-[#ff0000]"},
		{decl{"z-index", "2"}, "[z-index:2]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, utility(tt.d), tt.d.Prop)
	}
}

func TestComponentName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"hero section", "HeroSection"},
		{"Card / Pricing", "CardPricing"},
		{"2 column", "Component2Column"},
		{"***", "Component"},
		{"navBar", "NavBar"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, componentName(tt.in), tt.in)
	}
}

func TestNum(t *testing.T) {
	assert.Equal(t, "0", num(-0.001))
	assert.Equal(t, "12.35", num(12.345678))
	assert.Equal(t, "100", num(100))
}
