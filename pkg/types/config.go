// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds a single remote call, retries included.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "design-compiler/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxAttempts caps retries of rate-limited or failed requests (default 4).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
}

// LoaderConfig holds settings for the document loader.
type LoaderConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIBase overrides the design API root (default "https://api.figma.com").
	APIBase string `json:"api_base,omitempty" yaml:"api_base,omitempty"`
}

// ClassifierConfig holds settings for the layout classifier.
type ClassifierConfig struct {
	// Tolerance is the pixel slack used when comparing edges (default 2).
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
}

// AssetConfig holds settings for the asset resolver.
type AssetConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Workers bounds concurrent fetches (default 6).
	Workers int `json:"workers" yaml:"workers"`

	// FetchTimeout bounds each individual fetch (default 30s).
	FetchTimeout time.Duration `json:"fetch_timeout" yaml:"fetch_timeout"`

	// MaxSize is the largest accepted asset in bytes (default 10 MiB).
	MaxSize int64 `json:"max_size" yaml:"max_size"`

	// Optimize re-encodes fetched assets to shrink them.
	Optimize bool `json:"optimize" yaml:"optimize"`
}

// EmitConfig holds settings for the code emitter.
type EmitConfig struct {
	// Breakpoints are responsive widths in pixels, ascending.
	Breakpoints []int `json:"breakpoints" yaml:"breakpoints"`
}

// HistoryConfig holds settings for the conversion history store.
type HistoryConfig struct {
	// Dir is the directory holding history.db.
	Dir string `json:"dir" yaml:"dir"`

	// Capacity is the number of records kept (default 10).
	Capacity int `json:"capacity" yaml:"capacity"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Loader     LoaderConfig     `json:"loader" yaml:"loader"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier"`
	Assets     AssetConfig      `json:"assets" yaml:"assets"`
	Emit       EmitConfig       `json:"emit" yaml:"emit"`
	History    HistoryConfig    `json:"history" yaml:"history"`
	Server     ServerConfig     `json:"server" yaml:"server"`
}

// Default breakpoints match the common mobile-first widths.
var DefaultBreakpoints = []int{640, 768, 1024, 1280}

// Breakpoint bounds in pixels.
const (
	MinBreakpoint = 320
	MaxBreakpoint = 1920
)

// Options are per-conversion settings.
type Options struct {
	Breakpoints    []int `json:"breakpoints" yaml:"breakpoints"`
	OptimizeAssets bool  `json:"optimize_assets" yaml:"optimize_assets"`
}
