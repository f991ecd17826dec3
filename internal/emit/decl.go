// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/design-compiler/pkg/types"
)

// decl is one CSS declaration. Targets translate declarations into utility
// classes or stylesheet rules.
type decl struct {
	Prop  string
	Value string
}

type decls []decl

func (d *decls) add(prop, value string) {
	*d = append(*d, decl{Prop: prop, Value: value})
}

// key identifies a declaration list for rule sharing.
func (d decls) key() string {
	var b strings.Builder
	for _, x := range d {
		b.WriteString(x.Prop)
		b.WriteByte(':')
		b.WriteString(x.Value)
		b.WriteByte(';')
	}
	return b.String()
}

// num formats v rounded to two decimals without trailing zeros.
func num(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // normalize -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func px(v float64) string {
	return num(v) + "px"
}

func padding(d *decls, p types.Insets) {
	if p.Top > 0 {
		d.add("padding-top", px(p.Top))
	}
	if p.Right > 0 {
		d.add("padding-right", px(p.Right))
	}
	if p.Bottom > 0 {
		d.add("padding-bottom", px(p.Bottom))
	}
	if p.Left > 0 {
		d.add("padding-left", px(p.Left))
	}
}

var alignValues = map[types.Align]string{
	types.AlignStart:   "flex-start",
	types.AlignCenter:  "center",
	types.AlignEnd:     "flex-end",
	types.AlignStretch: "stretch",
}

// decoration adds the box styling set directly on the node. Inherited box
// styling is painted by the ancestor and is not repeated.
func decoration(d *decls, s types.ResolvedStyle, text bool) {
	if !text && s.Explicit.Has(types.AttrFill) && !s.Fill.IsTransparent() {
		d.add("background-color", s.Fill.Hex())
	}
	if s.Explicit.Has(types.AttrStroke) && !s.Stroke.IsTransparent() {
		w := s.StrokeWeight
		if w <= 0 {
			w = 1
		}
		d.add("border-width", px(w))
		d.add("border-style", "solid")
		d.add("border-color", s.Stroke.Hex())
	}
	if s.Explicit.Has(types.AttrCornerRadius) && s.CornerRadius > 0 {
		d.add("border-radius", px(s.CornerRadius))
	}
	if s.Explicit.Has(types.AttrEffects) {
		var shadows []string
		for _, e := range s.Effects {
			switch e.Type {
			case types.EffectDropShadow:
				shadows = append(shadows, fmt.Sprintf("%s %s %s %s", px(e.OffsetX), px(e.OffsetY), px(e.Radius), e.Color.Hex()))
			case types.EffectInnerShadow:
				shadows = append(shadows, fmt.Sprintf("inset %s %s %s %s", px(e.OffsetX), px(e.OffsetY), px(e.Radius), e.Color.Hex()))
			}
		}
		if len(shadows) > 0 {
			d.add("box-shadow", strings.Join(shadows, ", "))
		}
		for _, e := range s.Effects {
			if e.Type == types.EffectLayerBlur && e.Radius > 0 {
				d.add("filter", "blur("+px(e.Radius)+")")
				break
			}
		}
	}
	if s.Explicit.Has(types.AttrOpacity) && s.Opacity < 1 {
		d.add("opacity", num(s.Opacity))
	}
}

// typography adds the fully resolved text style.
func typography(d *decls, s types.ResolvedStyle) {
	d.add("font-family", quoteFamily(s.FontFamily))
	d.add("font-size", px(s.FontSize))
	d.add("font-weight", num(s.FontWeight))
	if s.LineHeight > 0 {
		d.add("line-height", px(s.LineHeight))
	}
	if s.LetterSpacing != 0 {
		d.add("letter-spacing", px(s.LetterSpacing))
	}
	if s.TextAlign != "" && s.TextAlign != "left" {
		d.add("text-align", s.TextAlign)
	}
	d.add("color", s.TextColor.Hex())
}

var genericFamilies = map[string]bool{
	"serif": true, "sans-serif": true, "monospace": true, "cursive": true, "system-ui": true,
}

func quoteFamily(f string) string {
	if genericFamilies[f] {
		return f
	}
	return "'" + strings.ReplaceAll(f, "'", "") + "', sans-serif"
}
