// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs a conversion end to end: load, normalize, classify,
// resolve assets, emit, and record history. Each call is independent; a
// Converter holds no per-request state and is safe for concurrent use.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/pdiddy/design-compiler/internal/assets"
	"github.com/pdiddy/design-compiler/internal/emit"
	"github.com/pdiddy/design-compiler/internal/layout"
	"github.com/pdiddy/design-compiler/internal/loader"
	"github.com/pdiddy/design-compiler/internal/normalize"
	"github.com/pdiddy/design-compiler/pkg/types"
)

// Recorder persists a summary of a successful conversion.
type Recorder interface {
	Record(ctx context.Context, rec types.HistoryRecord) (types.HistoryRecord, error)
}

// Converter turns design files into emit bundles.
type Converter struct {
	Config  types.PipelineConfig
	Loader  *loader.Client
	History Recorder
	Logger  *slog.Logger
}

// NewConverter returns a converter backed by the remote design API. hist
// may be nil to skip recording.
func NewConverter(cfg types.PipelineConfig, hist Recorder, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{
		Config:  cfg,
		Loader:  loader.NewClient(cfg.Loader, logger),
		History: hist,
		Logger:  logger,
	}
}

// Convert loads the file named by sourceURL and renders it for target. The
// URL, target, and options are validated before any network call. Only a
// fully successful conversion is recorded in history; a cancelled one
// returns a Cancelled error and no bundle.
func (c *Converter) Convert(ctx context.Context, sourceURL, credential string, target types.OutputTarget, opts types.Options) (*types.EmitBundle, error) {
	ref, err := loader.ParseSourceURL(sourceURL)
	if err != nil {
		return nil, err
	}
	opts = c.options(opts)
	if err := validate(target, opts); err != nil {
		return nil, err
	}

	start := time.Now()
	doc, err := c.Loader.Load(ctx, ref, credential)
	if err != nil {
		return nil, err
	}
	c.Logger.Info("loaded design", "file", ref.FileKey, "name", doc.Name,
		"nodes", doc.CountNodes(), "elapsed", time.Since(start))

	f := c.Loader.Fetcher(ctx, ref.FileKey, credential, c.Config.Assets)
	bundle, err := c.compile(ctx, doc, f, target, opts)
	if err != nil {
		return nil, err
	}

	if c.History != nil {
		rec := types.HistoryRecord{
			SourceURL:   sourceURL,
			DisplayName: doc.Name,
			PreviewURL:  doc.ThumbnailURL,
			Format:      string(target),
		}
		if _, err := c.History.Record(ctx, rec); err != nil {
			c.Logger.Warn("could not record history", "url", sourceURL, "error", err)
		}
	}
	return bundle, nil
}

// ConvertDocument renders an already loaded document. fetcher may be nil,
// in which case every image becomes a placeholder. Nothing is recorded in
// history.
func (c *Converter) ConvertDocument(ctx context.Context, doc *types.DesignDocument, fetcher assets.Fetcher, target types.OutputTarget, opts types.Options) (*types.EmitBundle, error) {
	opts = c.options(opts)
	if err := validate(target, opts); err != nil {
		return nil, err
	}
	if fetcher == nil {
		fetcher = offline{}
	}
	return c.compile(ctx, doc, fetcher, target, opts)
}

// options fills unset breakpoints from the configuration. An explicit
// empty list stays empty and disables responsive output.
func (c *Converter) options(opts types.Options) types.Options {
	if opts.Breakpoints == nil && c.Config.Emit.Breakpoints != nil {
		opts.Breakpoints = c.Config.Emit.Breakpoints
	}
	return opts
}

func validate(target types.OutputTarget, opts types.Options) error {
	if _, err := types.ParseOutputTarget(string(target)); err != nil {
		return &types.Error{Kind: types.KindInvalidOptions, Op: "convert", Err: err}
	}
	_, err := emit.Breakpoints(opts.Breakpoints)
	return err
}

func (c *Converter) compile(ctx context.Context, doc *types.DesignDocument, f assets.Fetcher, target types.OutputTarget, opts types.Options) (*types.EmitBundle, error) {
	tree, warnings := normalize.Normalize(doc)
	layout.ClassifyTree(tree, c.Config.Classifier)

	assetCfg := c.Config.Assets
	assetCfg.Optimize = assetCfg.Optimize || opts.OptimizeAssets
	resolved, manifest, assetWarnings, err := assets.NewResolver(f, assetCfg, c.Logger).Resolve(ctx, tree)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, assetWarnings...)

	bundle, err := emit.Emit(resolved, target, opts)
	if err != nil {
		c.Logger.Error("emit failed", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &types.Error{Kind: types.KindCancelled, Op: "convert", Err: err}
	}

	bundle.Assets = manifest
	bundle.Warnings = warnings
	for _, w := range warnings {
		c.Logger.Warn(w.Message, "kind", w.Kind, "node_id", w.NodeID)
	}
	c.Logger.Info("converted design", "target", target,
		"nodes", resolved.Count(), "assets", len(manifest), "warnings", len(warnings))
	return bundle, nil
}

// offline fails every fetch, so images render as placeholders.
type offline struct{}

func (offline) Fetch(_ context.Context, req types.AssetRequest) (types.FetchedAsset, error) {
	return types.FetchedAsset{}, types.Errorf(types.KindAssetFetch, "fetch asset", req.Key, "no asset source for offline conversion")
}
