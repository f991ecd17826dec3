// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/design-compiler/pkg/types"
)

var jsxText = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"{", "&#123;",
	"}", "&#125;",
)

var jsxAttr = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
)

// writeJSX renders an element subtree as JSX at the given depth.
func writeJSX(b *strings.Builder, e *element, depth int) {
	indent := strings.Repeat("  ", depth)
	tag := e.tag.String()
	b.WriteString(indent + "<" + tag)
	if e.class != "" {
		fmt.Fprintf(b, ` className="%s"`, jsxAttr.Replace(e.class))
	}
	for _, a := range e.attrs {
		fmt.Fprintf(b, ` %s="%s"`, a.Key, jsxAttr.Replace(a.Val))
	}

	switch {
	case e.text != "":
		b.WriteString(">")
		for i, line := range strings.Split(e.text, "\n") {
			if i > 0 {
				b.WriteString("<br />")
			}
			b.WriteString(jsxText.Replace(line))
		}
		b.WriteString("</" + tag + ">\n")
	case len(e.children) > 0:
		b.WriteString(">\n")
		for _, c := range e.children {
			writeJSX(b, c, depth+1)
		}
		b.WriteString(indent + "</" + tag + ">\n")
	default:
		b.WriteString(" />\n")
	}
}

// componentName turns a layer name into a component identifier.
func componentName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if r > unicode.MaxASCII {
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	s := b.String()
	if s == "" {
		return "Component"
	}
	if unicode.IsDigit(rune(s[0])) {
		return "Component" + s
	}
	return s
}

// components renders one component file per root and the entry module
// composing them in document order.
func components(tree *types.IRTree, roots []*element) (string, []types.ComponentFile) {
	used := map[string]bool{"App": true}
	files := make([]types.ComponentFile, 0, len(roots))
	for i, r := range roots {
		base := componentName(tree.Roots[i].Name)
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s%d", base, n)
		}
		used[name] = true

		var b strings.Builder
		fmt.Fprintf(&b, "export default function %s() {\n  return (\n", name)
		writeJSX(&b, r, 2)
		b.WriteString("  );\n}\n")
		files = append(files, types.ComponentFile{Name: name, Source: b.String()})
	}

	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "import %s from './components/%s';\n", f.Name, f.Name)
	}
	if len(files) > 0 {
		b.WriteByte('\n')
	}
	b.WriteString("export default function App() {\n  return (\n    <>\n")
	for _, f := range files {
		fmt.Fprintf(&b, "      <%s />\n", f.Name)
	}
	b.WriteString("    </>\n  );\n}\n")
	return b.String(), files
}
