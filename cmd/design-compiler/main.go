// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the design-compiler CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/design-compiler/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// secretsDir holds one file per credential, e.g. .secrets/figma-token.
const secretsDir = ".secrets/"

// rootCmd is the base command for the design-compiler CLI.
var rootCmd = &cobra.Command{
	Use:   "design-compiler",
	Short: "Compile design files into HTML, React, and CSS",
	Long: `design-compiler fetches a design file from the design API, infers its
layout, and emits HTML with utility classes, React components, or HTML with a
plain stylesheet. Image assets are collected into a manifest and everything
can be written as a single zip archive.

Recent conversions are kept in a local history; the serve command exposes
conversion and history over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		s, err := secrets.Load(secretsDir)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			slog.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

// configName is the config file base name looked up in "." and
// ~/.config/design-compiler.
const configName = "design-compiler"

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "",
		fmt.Sprintf("config file (default: ./%[1]s.yaml or ~/.config/design-compiler/%[1]s.yaml)", configName))
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	// A missing .env file is fine; variables may come from the environment.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if err := configure(viper.GetViper(), cfgFile); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configure sets up config file lookup, environment binding, and defaults on
// v, then reads the config file. A missing file is reported as an error and
// leaves defaults and environment in effect.
func configure(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "design-compiler"))
		}
	}

	v.SetEnvPrefix("DESIGN_COMPILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return v.ReadInConfig()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
