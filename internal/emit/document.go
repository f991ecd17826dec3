// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// utilityRuntime is the script that compiles utility classes in the browser.
const utilityRuntime = "https://cdn.tailwindcss.com"

// StyleSheetName is the stylesheet file linked by html-css pages.
const StyleSheetName = "styles.css"

func newElement(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func newText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// appendIndented adds child on its own line at the given depth.
func appendIndented(parent, child *html.Node, depth int) {
	parent.AppendChild(newText("\n" + strings.Repeat("  ", depth)))
	parent.AppendChild(child)
}

func closeIndented(parent *html.Node, depth int) {
	parent.AppendChild(newText("\n" + strings.Repeat("  ", depth)))
}

// node converts an element subtree into HTML nodes.
func (e *element) node(depth int) *html.Node {
	attrs := make([]html.Attribute, 0, len(e.attrs)+1)
	if e.class != "" {
		attrs = append(attrs, attr("class", e.class))
	}
	attrs = append(attrs, e.attrs...)
	n := newElement(e.tag, attrs...)

	if e.text != "" {
		for i, line := range strings.Split(e.text, "\n") {
			if i > 0 {
				n.AppendChild(newElement(atom.Br))
			}
			if line != "" {
				n.AppendChild(newText(line))
			}
		}
		return n
	}
	for _, c := range e.children {
		appendIndented(n, c.node(depth+1), depth+1)
	}
	if len(e.children) > 0 {
		closeIndented(n, depth)
	}
	return n
}

// page renders a complete HTML document around the root elements.
func page(title string, roots []*element, stylesheet bool) (string, error) {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(newText("\n"))

	root := newElement(atom.Html, attr("lang", "en"))
	doc.AppendChild(root)
	doc.AppendChild(newText("\n"))

	head := newElement(atom.Head)
	appendIndented(head, newElement(atom.Meta, attr("charset", "utf-8")), 1)
	appendIndented(head, newElement(atom.Meta,
		attr("name", "viewport"),
		attr("content", "width=device-width, initial-scale=1")), 1)
	t := newElement(atom.Title)
	t.AppendChild(newText(title))
	appendIndented(head, t, 1)
	if stylesheet {
		appendIndented(head, newElement(atom.Link, attr("rel", "stylesheet"), attr("href", StyleSheetName)), 1)
	} else {
		appendIndented(head, newElement(atom.Script, attr("src", utilityRuntime)), 1)
	}
	closeIndented(head, 0)
	appendIndented(root, head, 0)

	body := newElement(atom.Body)
	for _, r := range roots {
		appendIndented(body, r.node(1), 1)
	}
	closeIndented(body, 0)
	appendIndented(root, body, 0)
	closeIndented(root, 0)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
