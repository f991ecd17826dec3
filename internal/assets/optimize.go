// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assets

import (
	"bytes"
	"image/png"
	"regexp"
)

var (
	svgComment    = regexp.MustCompile(`(?s)<!--.*?-->`)
	svgInterTagWS = regexp.MustCompile(`>\s+<`)
)

// Optimize shrinks asset bytes without changing how they render. PNGs are
// re-encoded at best compression and kept only when smaller; SVGs lose
// comments and whitespace between tags. Other types pass through.
func Optimize(data []byte, mimeType string) []byte {
	switch mimeType {
	case "image/png":
		return optimizePNG(data)
	case "image/svg+xml":
		return optimizeSVG(data)
	}
	return data
}

func optimizePNG(data []byte) []byte {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil || buf.Len() >= len(data) {
		return data
	}
	return buf.Bytes()
}

func optimizeSVG(data []byte) []byte {
	out := svgComment.ReplaceAll(data, nil)
	out = svgInterTagWS.ReplaceAll(out, []byte("><"))
	return bytes.TrimSpace(out)
}
