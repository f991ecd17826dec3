// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/design-compiler/pkg/types"
)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("DESIGN_COMPILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func TestConfigure_HomeLookupMatchesHelp(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	dir := filepath.Join(home, ".config", "design-compiler")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, configName+".yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":7070\"\n"), 0o644))

	v := viper.New()
	require.NoError(t, configure(v, ""))
	assert.Equal(t, path, v.ConfigFileUsed())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)

	usage := rootCmd.PersistentFlags().Lookup("config").Usage
	assert.Contains(t, usage, "~/.config/design-compiler/"+configName+".yaml")
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(newViper())
	require.NoError(t, err)

	assert.Equal(t, "https://api.figma.com", cfg.Loader.APIBase)
	assert.Equal(t, 60*time.Second, cfg.Loader.Timeout)
	assert.Equal(t, 4, cfg.Loader.MaxAttempts)
	assert.Equal(t, 6, cfg.Assets.Workers)
	assert.Equal(t, 30*time.Second, cfg.Assets.FetchTimeout)
	assert.Equal(t, types.DefaultBreakpoints, cfg.Emit.Breakpoints)
	assert.Equal(t, 10, cfg.History.Capacity)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "design-compiler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
loader:
  api_base: http://localhost:9999
  timeout: 5s
assets:
  workers: 2
  optimize: true
emit:
  breakpoints: [480, 960]
history:
  capacity: 3
`), 0o644))
	t.Setenv("DESIGN_COMPILER_SERVER_ADDR", "127.0.0.1:9000")

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", cfg.Loader.APIBase)
	assert.Equal(t, 5*time.Second, cfg.Loader.Timeout)
	assert.Equal(t, 2, cfg.Assets.Workers)
	assert.True(t, cfg.Assets.Optimize)
	assert.Equal(t, []int{480, 960}, cfg.Emit.Breakpoints)
	assert.Equal(t, 3, cfg.History.Capacity)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestParseBreakpoints(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"", []int{}, false},
		{"640,1024", []int{640, 1024}, false},
		{" 768px , 1280 ", []int{768, 1280}, false},
		{"wide", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseBreakpoints(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, types.ErrInvalidOptions)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
