// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package loader fetches a design file from the remote design API and maps
// it onto types.DesignDocument.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/design-compiler/internal/httputil"
	"github.com/pdiddy/design-compiler/pkg/types"
)

// DefaultAPIBase is the design API root. Tests substitute an httptest server
// through LoaderConfig.APIBase.
const DefaultAPIBase = "https://api.figma.com"

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "design-compiler/0.1"
)

// Client talks to the design API.
type Client struct {
	HTTP   *http.Client
	Config types.LoaderConfig
	Logger *slog.Logger
}

// NewClient returns a client with defaults applied to cfg.
func NewClient(cfg types.LoaderConfig, logger *slog.Logger) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{HTTP: &http.Client{}, Config: cfg, Logger: logger}
}

// Load fetches the file (or the single node named by ref.NodeID) and returns
// it as a DesignDocument. The configured timeout bounds the whole load,
// retries included.
func (c *Client) Load(ctx context.Context, ref SourceRef, credential string) (*types.DesignDocument, error) {
	if credential == "" {
		return nil, &types.Error{Kind: types.KindAuth, Op: "load", Subject: ref.FileKey,
			Err: errors.New("no access token configured")}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.Config.Timeout)
	defer cancel()

	start := time.Now()
	var doc *types.DesignDocument
	if ref.NodeID == "" {
		body, err := c.get(callCtx, ctx, c.Config.HTTPConfig, "/v1/files/"+url.PathEscape(ref.FileKey), nil, credential)
		if err != nil {
			return nil, err
		}
		var resp fileResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, &types.Error{Kind: types.KindParse, Op: "load", Subject: ref.FileKey, Err: err}
		}
		doc = &types.DesignDocument{
			Name:         resp.Name,
			Version:      resp.Version,
			LastModified: parseTime(resp.LastModified),
			ThumbnailURL: resp.ThumbnailURL,
			Roots:        convertRoots(resp.Document.Children),
		}
	} else {
		q := url.Values{"ids": {ref.NodeID}}
		body, err := c.get(callCtx, ctx, c.Config.HTTPConfig, "/v1/files/"+url.PathEscape(ref.FileKey)+"/nodes", q, credential)
		if err != nil {
			return nil, err
		}
		var resp nodesResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, &types.Error{Kind: types.KindParse, Op: "load", Subject: ref.FileKey, Err: err}
		}
		entry := resp.Nodes[ref.NodeID]
		if entry == nil {
			return nil, types.Errorf(types.KindNotFound, "load", ref.FileKey, "node %s not in file", ref.NodeID)
		}
		doc = &types.DesignDocument{
			Name:         resp.Name,
			Version:      resp.Version,
			LastModified: parseTime(resp.LastModified),
			ThumbnailURL: resp.ThumbnailURL,
			Roots:        convertRoots([]wireNode{entry.Document}),
		}
	}

	c.Logger.Debug("loaded design document",
		"file", ref.FileKey, "name", doc.Name, "nodes", doc.CountNodes(), "elapsed", time.Since(start))
	return doc, nil
}

// get performs an authenticated GET against the API and returns the body of
// a 200 response. callCtx bounds the call; parent distinguishes a caller
// cancellation from a timeout. hc supplies the user agent and retry limit.
func (c *Client) get(callCtx, parent context.Context, hc types.HTTPConfig, path string, query url.Values, credential string) ([]byte, error) {
	reqURL := c.Config.APIBase + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Figma-Token", credential)
	req.Header.Set("User-Agent", hc.UserAgent)

	resp, err := httputil.DoWithRetry(callCtx, c.HTTP, req, hc.MaxAttempts)
	if err != nil {
		return nil, classifyTransport(parent, path, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp, path); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(parent, path, err)
	}
	return body, nil
}

func classifyTransport(parent context.Context, subject string, err error) error {
	if parent.Err() != nil {
		return &types.Error{Kind: types.KindCancelled, Op: "request", Subject: subject, Err: parent.Err()}
	}
	return &types.Error{Kind: types.KindTransport, Op: "request", Subject: subject, Err: err}
}

// classifyStatus maps a final (post-retry) response status onto the error
// taxonomy. A nil return means 200.
func classifyStatus(resp *http.Response, subject string) error {
	status := resp.StatusCode
	if status == http.StatusOK {
		return nil
	}

	// Read a short excerpt of the body for the error message.
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	cause := fmt.Errorf("HTTP %d: %s", status, excerpt)

	kind := types.KindTransport
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = types.KindAuth
	case status == http.StatusNotFound:
		kind = types.KindNotFound
	case status == http.StatusTooManyRequests:
		kind = types.KindRateLimit
	}
	return &types.Error{Kind: kind, Op: "request", Subject: subject, Err: cause}
}
