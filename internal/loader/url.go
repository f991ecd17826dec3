// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package loader

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/design-compiler/pkg/types"
)

// SourceRef identifies a design file, and optionally one node within it.
type SourceRef struct {
	FileKey string
	// NodeID is in API form ("1:2"); empty selects the whole file.
	NodeID string
}

var (
	filePathPattern = regexp.MustCompile(`^/(file|design|proto)/([A-Za-z0-9]+)(/.*)?$`)
	branchPattern   = regexp.MustCompile(`^/branch/([A-Za-z0-9]+)(/.*)?$`)
)

// ParseSourceURL extracts the file key and node id from a share URL such as
// https://www.figma.com/design/<key>/<title>?node-id=1-2. Branch URLs
// (/design/<key>/branch/<branchKey>/...) resolve to the branch key. The
// scheme may be omitted.
func ParseSourceURL(raw string) (SourceRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SourceRef{}, invalidURL(raw, "empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return SourceRef{}, invalidURL(raw, "%v", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return SourceRef{}, invalidURL(raw, "unsupported scheme %q", u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host != "figma.com" && !strings.HasSuffix(host, ".figma.com") {
		return SourceRef{}, invalidURL(raw, "host %q is not figma.com", host)
	}

	m := filePathPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return SourceRef{}, invalidURL(raw, "expected figma.com/{file|design|proto}/<key>/...")
	}
	ref := SourceRef{FileKey: m[2]}
	if b := branchPattern.FindStringSubmatch(m[3]); b != nil {
		ref.FileKey = b[1]
	}

	if id := u.Query().Get("node-id"); id != "" {
		ref.NodeID = strings.ReplaceAll(id, "-", ":")
	}
	return ref, nil
}

func invalidURL(raw, format string, args ...any) error {
	return &types.Error{
		Kind:    types.KindInvalidURL,
		Op:      "parse url",
		Subject: raw,
		Err:     fmt.Errorf(format, args...),
	}
}
