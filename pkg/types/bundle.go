// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// OutputTarget selects the emitted code flavour.
type OutputTarget string

const (
	// TargetMarkupUtility is HTML with Tailwind utility classes.
	TargetMarkupUtility OutputTarget = "html-tailwind"
	// TargetComponentUtility is React JSX components with Tailwind utility classes.
	TargetComponentUtility OutputTarget = "react-tailwind"
	// TargetMarkupStylesheet is HTML with a generated plain stylesheet.
	TargetMarkupStylesheet OutputTarget = "html-css"
)

// ParseOutputTarget validates a target name.
func ParseOutputTarget(s string) (OutputTarget, error) {
	switch t := OutputTarget(s); t {
	case TargetMarkupUtility, TargetComponentUtility, TargetMarkupStylesheet:
		return t, nil
	}
	return "", fmt.Errorf("unknown output format %q: use html-tailwind, react-tailwind, or html-css", s)
}

// EntryExt is the file extension of the entry file for the target.
func (t OutputTarget) EntryExt() string {
	if t == TargetComponentUtility {
		return "jsx"
	}
	return "html"
}

// Asset is a content-addressed binary resource. Nodes with bit-identical
// rendered content share one Asset.
type Asset struct {
	ContentHash   string   `json:"content_hash" yaml:"content_hash"`
	SuggestedName string   `json:"suggested_name" yaml:"suggested_name"`
	MimeType      string   `json:"mime_type" yaml:"mime_type"`
	SourceNodeIDs []string `json:"source_node_ids" yaml:"source_node_ids"`
	Size          int      `json:"size" yaml:"size"`
	Data          []byte   `json:"-" yaml:"-"`
}

// AssetKind distinguishes how an asset's bytes are obtained.
type AssetKind int

const (
	// AssetImageFill is a raster image referenced by an image fill.
	AssetImageFill AssetKind = iota
	// AssetVectorRender is a node rendered to SVG by the source.
	AssetVectorRender
)

// AssetRequest asks a fetcher for one unique asset.
type AssetRequest struct {
	Kind AssetKind
	// Key is the deduplication key shared by every node needing this fetch.
	Key string
	// ImageRef is set for image fills.
	ImageRef string
	// NodeID is the representative node for renders.
	NodeID string
}

// FetchedAsset is the raw result of a fetch.
type FetchedAsset struct {
	Data     []byte
	MimeType string
}

// ComponentFile is one generated component source file.
type ComponentFile struct {
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source" yaml:"source"`
}

// EmitBundle is the immutable result of a conversion.
type EmitBundle struct {
	Target         OutputTarget    `json:"target" yaml:"target"`
	EntryName      string          `json:"entry_name" yaml:"entry_name"`
	EntryMarkup    string          `json:"entry_markup" yaml:"entry_markup"`
	StyleSheet     *string         `json:"style_sheet,omitempty" yaml:"style_sheet,omitempty"`
	Assets         []Asset         `json:"assets" yaml:"assets"`
	ComponentFiles []ComponentFile `json:"component_files,omitempty" yaml:"component_files,omitempty"`
	Warnings       []Warning       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// HistoryRecord is a persisted summary of a successful conversion, keyed by
// source URL.
type HistoryRecord struct {
	ID          string    `json:"id" yaml:"id"`
	SourceURL   string    `json:"source_url" yaml:"source_url"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	LastTouched time.Time `json:"last_touched" yaml:"last_touched"`
	PreviewURL  string    `json:"preview_url,omitempty" yaml:"preview_url,omitempty"`
	DisplayName string    `json:"display_name" yaml:"display_name"`
	Format      string    `json:"format" yaml:"format"`
}
