// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/pdiddy/design-compiler/internal/history"
	"github.com/pdiddy/design-compiler/internal/layout"
	"github.com/pdiddy/design-compiler/internal/loader"
	"github.com/pdiddy/design-compiler/pkg/types"
)

// setDefaults registers every configuration key so that environment
// variables such as DESIGN_COMPILER_LOADER_API_BASE are seen by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("loader.api_base", loader.DefaultAPIBase)
	v.SetDefault("loader.timeout", 60*time.Second)
	v.SetDefault("loader.user_agent", "design-compiler/"+version)
	v.SetDefault("loader.max_attempts", 4)

	v.SetDefault("classifier.tolerance", layout.DefaultTolerance)

	v.SetDefault("assets.timeout", 60*time.Second)
	v.SetDefault("assets.user_agent", "design-compiler/"+version)
	v.SetDefault("assets.max_attempts", 4)
	v.SetDefault("assets.workers", 6)
	v.SetDefault("assets.fetch_timeout", 30*time.Second)
	v.SetDefault("assets.max_size", loader.DefaultMaxAssetSize)
	v.SetDefault("assets.optimize", false)

	v.SetDefault("emit.breakpoints", types.DefaultBreakpoints)

	v.SetDefault("history.dir", defaultHistoryDir())
	v.SetDefault("history.capacity", history.DefaultCapacity)

	v.SetDefault("server.addr", ":8080")
}

func defaultHistoryDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".design-compiler"
	}
	return filepath.Join(dir, "design-compiler")
}

// loadConfig decodes the merged configuration. Keys follow the yaml tags of
// types.PipelineConfig.
func loadConfig(v *viper.Viper) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.Squash = true
	})
	if err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// parseBreakpoints reads a comma-separated list of widths. An empty string
// yields an empty, non-nil list, which disables responsive output.
func parseBreakpoints(s string) ([]int, error) {
	out := []int{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(part, "px"))
		if err != nil {
			return nil, &types.Error{Kind: types.KindInvalidOptions, Op: "parse breakpoints", Subject: part, Err: err}
		}
		out = append(out, n)
	}
	return out, nil
}
