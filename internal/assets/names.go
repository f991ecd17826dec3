// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assets

import (
	"fmt"
	"strings"
)

// extensions maps the MIME types the source produces to file extensions.
var extensions = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
}

func extension(mimeType string) string {
	if ext, ok := extensions[mimeType]; ok {
		return ext
	}
	return "bin"
}

// namer hands out unique file names, suffixing -2, -3, ... on collision.
type namer struct {
	used map[string]bool
}

func newNamer() *namer {
	return &namer{used: make(map[string]bool)}
}

func (n *namer) name(nodeName, ext string) string {
	base := cleanFilename(nodeName)
	if base == "" {
		base = "asset"
	}
	candidate := base + "." + ext
	for i := 2; n.used[candidate]; i++ {
		candidate = fmt.Sprintf("%s-%d.%s", base, i, ext)
	}
	n.used[candidate] = true
	return candidate
}

// cleanFilename lowercases name and reduces it to a path-safe slug.
func cleanFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}
