// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assets fetches the binary content behind LEAF_IMAGE nodes,
// deduplicates it by content hash, and rewrites the IR to reference the
// resulting manifest.
package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/design-compiler/pkg/types"
)

const (
	defaultWorkers      = 6
	defaultFetchTimeout = 30 * time.Second
)

// Fetcher retrieves one asset. Implementations must be safe for concurrent
// use.
type Fetcher interface {
	Fetch(ctx context.Context, req types.AssetRequest) (types.FetchedAsset, error)
}

// Resolver runs bounded concurrent fetches for a tree.
type Resolver struct {
	Fetcher Fetcher
	Config  types.AssetConfig
	Logger  *slog.Logger
}

// NewResolver returns a resolver with defaults applied to cfg.
func NewResolver(f Fetcher, cfg types.AssetConfig, logger *slog.Logger) *Resolver {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{Fetcher: f, Config: cfg, Logger: logger}
}

// job is one unique fetch and the nodes waiting on it, in pre-order.
type job struct {
	req   types.AssetRequest
	nodes []*types.IRNode

	data     []byte
	mimeType string
	hash     string
	err      error
}

// Resolve fetches every asset the tree references and returns a rewritten
// copy of the tree, the manifest, and one warning per failed fetch. The input
// tree is not modified. A cancelled ctx discards all results and returns a
// Cancelled error.
func (r *Resolver) Resolve(ctx context.Context, tree *types.IRTree) (*types.IRTree, []types.Asset, []types.Warning, error) {
	out := tree.Clone()
	jobs := collect(out)

	start := time.Now()
	var g errgroup.Group
	g.SetLimit(r.Config.Workers)
	for _, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				j.err = ctx.Err()
				return nil
			}
			fctx, cancel := context.WithTimeout(ctx, r.Config.FetchTimeout)
			defer cancel()
			res, err := r.Fetcher.Fetch(fctx, j.req)
			if err != nil {
				j.err = err
				return nil
			}
			j.data, j.mimeType = res.Data, res.MimeType
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, nil, &types.Error{Kind: types.KindCancelled, Op: "resolve assets", Err: err}
	}

	if r.Config.Optimize {
		for _, j := range jobs {
			if j.err == nil {
				j.data = Optimize(j.data, j.mimeType)
			}
		}
	}

	manifest, warnings := r.merge(jobs)
	r.Logger.Debug("resolved assets",
		"fetches", len(jobs), "assets", len(manifest), "failed", len(warnings), "elapsed", time.Since(start))
	return out, manifest, warnings, nil
}

// collect walks the tree in pre-order and groups image leaves by fetch key.
// It does not descend below leaves, whose children are never emitted.
func collect(tree *types.IRTree) []*job {
	var jobs []*job
	byKey := make(map[string]*job)
	var visit func(nodes []*types.IRNode)
	visit = func(nodes []*types.IRNode) {
		for _, n := range nodes {
			if n.Role == types.RoleLeafImage && !n.Placeholder {
				req := request(n)
				j, ok := byKey[req.Key]
				if !ok {
					j = &job{req: req}
					byKey[req.Key] = j
					jobs = append(jobs, j)
				}
				j.nodes = append(j.nodes, n)
			}
			if !n.Role.IsLeaf() {
				visit(n.Children)
			}
		}
	}
	visit(tree.Roots)
	return jobs
}

func request(n *types.IRNode) types.AssetRequest {
	if n.Source == types.NodeImage && n.ImageRef != "" {
		return types.AssetRequest{Kind: types.AssetImageFill, Key: "img:" + n.ImageRef, ImageRef: n.ImageRef, NodeID: n.ID}
	}
	return types.AssetRequest{Kind: types.AssetVectorRender, Key: "vec:" + n.ID, NodeID: n.ID}
}

// merge folds fetch results into the manifest. Jobs are in pre-order of
// their first node, so assets are too. The manifest is never nil. Failed
// fetches become warnings; the caller logs them.
func (r *Resolver) merge(jobs []*job) ([]types.Asset, []types.Warning) {
	manifest := []types.Asset{}
	var warnings []types.Warning
	byHash := make(map[string]int)
	names := newNamer()

	for _, j := range jobs {
		if j.err != nil {
			w := types.Warning{
				Kind:    types.KindAssetFetch,
				NodeID:  j.nodes[0].ID,
				Message: j.err.Error(),
			}
			warnings = append(warnings, w)
			for _, n := range j.nodes {
				n.Asset = &types.AssetRef{Placeholder: true}
			}
			continue
		}

		sum := sha256.Sum256(j.data)
		j.hash = hex.EncodeToString(sum[:])
		idx, ok := byHash[j.hash]
		if !ok {
			idx = len(manifest)
			byHash[j.hash] = idx
			manifest = append(manifest, types.Asset{
				ContentHash:   j.hash,
				SuggestedName: names.name(j.nodes[0].Name, extension(j.mimeType)),
				MimeType:      j.mimeType,
				Size:          len(j.data),
				Data:          j.data,
			})
		}
		a := &manifest[idx]
		for _, n := range j.nodes {
			a.SourceNodeIDs = append(a.SourceNodeIDs, n.ID)
		}
	}

	for i := range manifest {
		slices.Sort(manifest[i].SourceNodeIDs)
		manifest[i].SourceNodeIDs = slices.Compact(manifest[i].SourceNodeIDs)
	}

	// Rewrite references once names are final.
	for _, j := range jobs {
		if j.err != nil {
			continue
		}
		a := manifest[byHash[j.hash]]
		for _, n := range j.nodes {
			n.Asset = &types.AssetRef{Name: a.SuggestedName, ContentHash: a.ContentHash}
		}
	}
	return manifest, warnings
}
