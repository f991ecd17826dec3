// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package emit renders a classified, asset-resolved IR tree into markup for
// one of the output targets. Output is a pure function of the tree, the
// target, and the breakpoints: the same input always yields byte-identical
// files.
package emit

import (
	"slices"
	"strconv"

	"github.com/pdiddy/design-compiler/pkg/types"
)

// Entry file names per target.
const (
	EntryHTML = "index.html"
	EntryJSX  = "index.jsx"
)

// Breakpoints validates responsive breakpoints and returns them sorted and
// deduplicated. A nil list selects the defaults; an empty list disables
// responsive rules.
func Breakpoints(in []int) ([]int, error) {
	if in == nil {
		return slices.Clone(types.DefaultBreakpoints), nil
	}
	out := slices.Clone(in)
	for _, bp := range out {
		if bp < types.MinBreakpoint || bp > types.MaxBreakpoint {
			return nil, types.Errorf(types.KindInvalidOptions, "emit", strconv.Itoa(bp),
				"breakpoint must be between %d and %d px", types.MinBreakpoint, types.MaxBreakpoint)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// Emit renders tree for target. The returned bundle carries the entry file,
// the stylesheet or component files the target needs, and no assets or
// warnings; the caller attaches those.
//
// A node without a renderable layout role is a defect upstream: Emit
// returns a KindInternal error and no bundle.
func Emit(tree *types.IRTree, target types.OutputTarget, opts types.Options) (bundle *types.EmitBundle, err error) {
	if tree == nil {
		return nil, types.Errorf(types.KindInternal, "emit", "", "nil tree")
	}
	if _, err := types.ParseOutputTarget(string(target)); err != nil {
		return nil, &types.Error{Kind: types.KindInvalidOptions, Op: "emit", Err: err}
	}
	bps, err := Breakpoints(opts.Breakpoints)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			v, ok := r.(invariantViolation)
			if !ok {
				panic(r)
			}
			bundle = nil
			err = types.Errorf(types.KindInternal, "emit", v.nodeID, "%s", v.msg)
		}
	}()

	b := &builder{breakpoints: bps}
	roots := make([]*element, len(tree.Roots))
	for i, r := range tree.Roots {
		roots[i] = b.build(r, nil)
	}

	title := tree.Name
	if title == "" {
		title = "Design"
	}

	bundle = &types.EmitBundle{Target: target}
	switch target {
	case types.TargetMarkupUtility:
		for _, r := range roots {
			assignUtility(r)
		}
		bundle.EntryName = EntryHTML
		bundle.EntryMarkup, err = page(title, roots, false)

	case types.TargetMarkupStylesheet:
		s := newSheet()
		for _, r := range roots {
			s.assign(r)
		}
		css := s.render()
		bundle.EntryName = EntryHTML
		bundle.StyleSheet = &css
		bundle.EntryMarkup, err = page(title, roots, true)

	case types.TargetComponentUtility:
		for _, r := range roots {
			assignUtility(r)
		}
		bundle.EntryName = EntryJSX
		bundle.EntryMarkup, bundle.ComponentFiles = components(tree, roots)
	}
	if err != nil {
		return nil, types.Errorf(types.KindInternal, "emit", "", "rendering markup: %w", err)
	}
	return bundle, nil
}
