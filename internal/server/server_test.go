// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/design-compiler/internal/history"
	"github.com/pdiddy/design-compiler/pkg/types"
)

type fakeConverter struct {
	bundle *types.EmitBundle
	err    error

	gotURL, gotToken string
	gotTarget        types.OutputTarget
	gotOpts          types.Options
}

func (f *fakeConverter) Convert(_ context.Context, sourceURL, credential string, target types.OutputTarget, opts types.Options) (*types.EmitBundle, error) {
	f.gotURL, f.gotToken, f.gotTarget, f.gotOpts = sourceURL, credential, target, opts
	return f.bundle, f.err
}

func testBundle() *types.EmitBundle {
	return &types.EmitBundle{
		Target:      types.TargetMarkupUtility,
		EntryName:   "index.html",
		EntryMarkup: "<!DOCTYPE html>",
		Assets:      []types.Asset{{SuggestedName: "logo.png", MimeType: "image/png", Data: []byte("png")}},
	}
}

func newTestServer(t *testing.T, conv Converter) (*httptest.Server, *history.Store) {
	t.Helper()
	store, err := history.NewStore(types.HistoryConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ts := httptest.NewServer(New(conv, store, "default-token", nil).Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func do(t *testing.T, method, url, body string, header ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, &fakeConverter{})
	resp := do(t, http.MethodGet, ts.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestConvert_JSON(t *testing.T) {
	conv := &fakeConverter{bundle: testBundle()}
	ts, _ := newTestServer(t, conv)

	resp := do(t, http.MethodPost, ts.URL+"/convert",
		`{"url": "https://www.figma.com/design/K/F", "format": "html-css", "breakpoints": [], "optimize_assets": true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got types.EmitBundle
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "<!DOCTYPE html>", got.EntryMarkup)
	require.Len(t, got.Assets, 1)
	assert.Nil(t, got.Assets[0].Data, "asset bytes only travel in the archive")

	assert.Equal(t, "https://www.figma.com/design/K/F", conv.gotURL)
	assert.Equal(t, "default-token", conv.gotToken)
	assert.Equal(t, types.TargetMarkupStylesheet, conv.gotTarget)
	assert.NotNil(t, conv.gotOpts.Breakpoints, "an explicit empty list is preserved")
	assert.Empty(t, conv.gotOpts.Breakpoints)
	assert.True(t, conv.gotOpts.OptimizeAssets)
}

func TestConvert_Defaults(t *testing.T) {
	conv := &fakeConverter{bundle: testBundle()}
	ts, _ := newTestServer(t, conv)

	resp := do(t, http.MethodPost, ts.URL+"/convert", `{"url": "u"}`, "X-Figma-Token", "header-token")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, types.TargetMarkupUtility, conv.gotTarget)
	assert.Equal(t, "header-token", conv.gotToken)
	assert.Nil(t, conv.gotOpts.Breakpoints)

	resp = do(t, http.MethodPost, ts.URL+"/convert", `{"url": "u", "token": "body-token"}`, "X-Figma-Token", "header-token")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "body-token", conv.gotToken)
}

func TestConvert_Zip(t *testing.T) {
	ts, _ := newTestServer(t, &fakeConverter{bundle: testBundle()})

	resp := do(t, http.MethodPost, ts.URL+"/convert?download=zip", `{"url": "u"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "index.html", zr.File[0].Name)
	assert.Equal(t, "assets/logo.png", zr.File[1].Name)
}

func TestConvert_ErrorStatus(t *testing.T) {
	tests := []struct {
		kind   types.ErrorKind
		status int
	}{
		{types.KindInvalidURL, http.StatusBadRequest},
		{types.KindInvalidOptions, http.StatusBadRequest},
		{types.KindAuth, http.StatusUnauthorized},
		{types.KindNotFound, http.StatusNotFound},
		{types.KindRateLimit, http.StatusTooManyRequests},
		{types.KindTransport, http.StatusBadGateway},
		{types.KindParse, http.StatusBadGateway},
		{types.KindCancelled, StatusClientClosedRequest},
		{types.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			conv := &fakeConverter{err: types.Errorf(tt.kind, "convert", "K", "boom")}
			ts, _ := newTestServer(t, conv)

			resp := do(t, http.MethodPost, ts.URL+"/convert", `{"url": "u"}`)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.kind.String(), body["kind"])
		})
	}
}

func TestConvert_ErrorBody(t *testing.T) {
	conv := &fakeConverter{err: types.Errorf(types.KindRateLimit, "load", "K", "slow down")}
	ts, _ := newTestServer(t, conv)

	resp := do(t, http.MethodPost, ts.URL+"/convert", `{"url": "u"}`)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "rate_limit", body["kind"])
	assert.Equal(t, true, body["retryable"])
	assert.Contains(t, body["error"], "slow down")
}

func TestConvert_BadBody(t *testing.T) {
	ts, _ := newTestServer(t, &fakeConverter{})
	resp := do(t, http.MethodPost, ts.URL+"/convert", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHistoryEndpoints(t *testing.T) {
	ts, store := newTestServer(t, &fakeConverter{})
	ctx := context.Background()

	var ids []string
	for i := range 3 {
		rec, err := store.Record(ctx, types.HistoryRecord{
			SourceURL: fmt.Sprintf("https://www.figma.com/design/K%d/F", i), DisplayName: "F", Format: "html-css",
		})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	resp := do(t, http.MethodGet, ts.URL+"/history", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []types.HistoryRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)

	resp = do(t, http.MethodPatch, ts.URL+"/history/"+ids[0], `{"display_name": "Landing"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var renamed types.HistoryRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&renamed))
	assert.Equal(t, "Landing", renamed.DisplayName)

	resp = do(t, http.MethodPatch, ts.URL+"/history/"+ids[0], `{"display_name": "  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPatch, ts.URL+"/history/missing", `{"display_name": "x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, ts.URL+"/history/"+ids[1], "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, http.MethodDelete, ts.URL+"/history/"+ids[1], "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, ts.URL+"/history", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cleared map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cleared))
	assert.Equal(t, 2, cleared["deleted"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(fmt.Errorf("wrapped: %w", history.ErrNoRecord)))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("plain")))
}
