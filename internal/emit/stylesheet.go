// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"fmt"
	"slices"
	"strings"
)

// resetRules precede the generated rules in every stylesheet.
const resetRules = `*, *::before, *::after {
  box-sizing: border-box;
}

body {
  margin: 0;
}

h1, h2, p {
  margin: 0;
}

img {
  display: block;
}
`

type rule struct {
	class string
	base  decls
	wide  decls
	bp    int
}

// sheet shares one class between all elements with the same declarations.
// Classes are named after the role of their first element in pre-order.
type sheet struct {
	rules    []*rule
	byKey    map[string]*rule
	counters map[string]int
}

func newSheet() *sheet {
	return &sheet{byKey: make(map[string]*rule), counters: make(map[string]int)}
}

func (s *sheet) assign(e *element) {
	if len(e.base) > 0 || len(e.wide) > 0 {
		key := fmt.Sprintf("%s|%d|%s", e.base.key(), e.bp, e.wide.key())
		r, ok := s.byKey[key]
		if !ok {
			s.counters[e.prefix]++
			r = &rule{
				class: fmt.Sprintf("%s-%d", e.prefix, s.counters[e.prefix]),
				base:  e.base,
				wide:  e.wide,
				bp:    e.bp,
			}
			s.byKey[key] = r
			s.rules = append(s.rules, r)
		}
		e.class = r.class
	}
	for _, c := range e.children {
		s.assign(c)
	}
}

func (s *sheet) render() string {
	var b strings.Builder
	b.WriteString(resetRules)
	for _, r := range s.rules {
		if len(r.base) > 0 {
			b.WriteByte('\n')
			writeRule(&b, r.class, r.base, "")
		}
	}

	var bps []int
	for _, r := range s.rules {
		if len(r.wide) > 0 && !slices.Contains(bps, r.bp) {
			bps = append(bps, r.bp)
		}
	}
	slices.Sort(bps)
	for _, bp := range bps {
		fmt.Fprintf(&b, "\n@media (min-width: %dpx) {\n", bp)
		first := true
		for _, r := range s.rules {
			if r.bp != bp || len(r.wide) == 0 {
				continue
			}
			if !first {
				b.WriteByte('\n')
			}
			first = false
			writeRule(&b, r.class, r.wide, "  ")
		}
		b.WriteString("}\n")
	}
	return b.String()
}

func writeRule(b *strings.Builder, class string, d decls, indent string) {
	fmt.Fprintf(b, "%s.%s {\n", indent, class)
	for _, x := range d {
		fmt.Fprintf(b, "%s  %s: %s;\n", indent, x.Prop, x.Value)
	}
	b.WriteString(indent + "}\n")
}
