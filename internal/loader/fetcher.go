// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package loader

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/pdiddy/design-compiler/internal/httputil"
	"github.com/pdiddy/design-compiler/pkg/types"
)

// DefaultMaxAssetSize is the largest asset download accepted (10 MiB).
const DefaultMaxAssetSize = 10 << 20

// Fetcher downloads image fills and vector renders for one file. It is safe
// for concurrent use.
type Fetcher struct {
	client     *Client
	ctx        context.Context
	fileKey    string
	credential string
	http       types.HTTPConfig

	// MaxSize caps a single download.
	MaxSize int64

	mu    sync.Mutex
	fills *fillTable
}

// fillTable is the file's image fill table, loaded at most once per
// fetcher. A failed load is kept and returned to every later lookup.
type fillTable struct {
	done chan struct{}
	urls map[string]string
	err  error
}

// Fetcher returns an asset fetcher bound to fileKey. ctx bounds lookups
// shared by all assets of the conversion, such as the image fill table.
// Unset HTTP settings in cfg fall back to the client's.
func (c *Client) Fetcher(ctx context.Context, fileKey, credential string, cfg types.AssetConfig) *Fetcher {
	hc := cfg.HTTPConfig
	if hc.Timeout <= 0 {
		hc.Timeout = c.Config.Timeout
	}
	if hc.UserAgent == "" {
		hc.UserAgent = c.Config.UserAgent
	}
	if hc.MaxAttempts <= 0 {
		hc.MaxAttempts = c.Config.MaxAttempts
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxAssetSize
	}
	return &Fetcher{
		client:     c,
		ctx:        ctx,
		fileKey:    fileKey,
		credential: credential,
		http:       hc,
		MaxSize:    maxSize,
	}
}

// Fetch returns the bytes of one asset.
func (f *Fetcher) Fetch(ctx context.Context, req types.AssetRequest) (types.FetchedAsset, error) {
	var (
		src string
		err error
	)
	switch req.Kind {
	case types.AssetImageFill:
		src, err = f.imageFillURL(req.ImageRef)
	case types.AssetVectorRender:
		src, err = f.renderURL(ctx, req.NodeID)
	default:
		return types.FetchedAsset{}, types.Errorf(types.KindInternal, "fetch asset", req.Key, "unknown asset kind %d", req.Kind)
	}
	if err != nil {
		return types.FetchedAsset{}, err
	}

	data, contentType, err := f.download(ctx, src)
	if err != nil {
		return types.FetchedAsset{}, err
	}

	mimeType := http.DetectContentType(data)
	if req.Kind == types.AssetVectorRender {
		mimeType = "image/svg+xml"
	} else if mt, _, perr := mime.ParseMediaType(contentType); perr == nil && strings.HasPrefix(mt, "image/") {
		mimeType = mt
	}
	return types.FetchedAsset{Data: data, MimeType: mimeType}, nil
}

// imageFillURL resolves an image fill reference through the file's image
// fill table. The first caller starts the load; others wait for it. The wait
// is bounded by the fetcher's context and the table request's own timeout,
// not by the caller's per-asset deadline.
func (f *Fetcher) imageFillURL(ref string) (string, error) {
	f.mu.Lock()
	t := f.fills
	if t == nil {
		t = &fillTable{done: make(chan struct{})}
		f.fills = t
		go f.loadFills(t)
	}
	f.mu.Unlock()

	select {
	case <-t.done:
	case <-f.ctx.Done():
		return "", &types.Error{Kind: types.KindCancelled, Op: "image fills", Subject: f.fileKey, Err: f.ctx.Err()}
	}
	if t.err != nil {
		return "", t.err
	}

	src := t.urls[ref]
	if src == "" {
		return "", types.Errorf(types.KindAssetFetch, "image fills", ref, "no download url for image")
	}
	return src, nil
}

func (f *Fetcher) loadFills(t *fillTable) {
	defer close(t.done)

	callCtx, cancel := context.WithTimeout(f.ctx, f.http.Timeout)
	defer cancel()
	body, err := f.client.get(callCtx, f.ctx, f.http, "/v1/files/"+url.PathEscape(f.fileKey)+"/images", nil, f.credential)
	if err != nil {
		t.err = err
		return
	}
	var resp struct {
		Meta struct {
			Images map[string]string `json:"images"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.err = &types.Error{Kind: types.KindParse, Op: "image fills", Subject: f.fileKey, Err: err}
		return
	}
	t.urls = resp.Meta.Images
}

// renderURL asks the API to render one node as SVG.
func (f *Fetcher) renderURL(ctx context.Context, nodeID string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, f.http.Timeout)
	defer cancel()
	q := url.Values{"ids": {nodeID}, "format": {"svg"}}
	body, err := f.client.get(callCtx, ctx, f.http, "/v1/images/"+url.PathEscape(f.fileKey), q, f.credential)
	if err != nil {
		return "", err
	}
	var resp struct {
		Err    *string           `json:"err"`
		Images map[string]string `json:"images"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &types.Error{Kind: types.KindParse, Op: "render", Subject: nodeID, Err: err}
	}
	if resp.Err != nil && *resp.Err != "" {
		return "", types.Errorf(types.KindAssetFetch, "render", nodeID, "%s", *resp.Err)
	}
	src := resp.Images[nodeID]
	if src == "" {
		return "", types.Errorf(types.KindAssetFetch, "render", nodeID, "node could not be rendered")
	}
	return src, nil
}

// download fetches a signed asset URL. No credential is sent.
func (f *Fetcher) download(ctx context.Context, src string) ([]byte, string, error) {
	callCtx, cancel := context.WithTimeout(ctx, f.http.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", types.Errorf(types.KindAssetFetch, "download", src, "creating request: %v", err)
	}
	req.Header.Set("User-Agent", f.http.UserAgent)

	resp, err := httputil.DoWithRetry(callCtx, f.client.HTTP, req, f.http.MaxAttempts)
	if err != nil {
		return nil, "", classifyTransport(ctx, src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", types.Errorf(types.KindAssetFetch, "download", src, "HTTP %d", resp.StatusCode)
	}

	limit := f.MaxSize
	if limit <= 0 {
		limit = DefaultMaxAssetSize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", classifyTransport(ctx, src, err)
	}
	if int64(len(data)) > limit {
		return nil, "", types.Errorf(types.KindAssetFetch, "download", src, "asset exceeds %d bytes", limit)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
