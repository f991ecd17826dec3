// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/design-compiler/internal/history"
	"github.com/pdiddy/design-compiler/internal/loader"
	"github.com/pdiddy/design-compiler/internal/pack"
	"github.com/pdiddy/design-compiler/internal/pipeline"
	"github.com/pdiddy/design-compiler/internal/secrets"
	"github.com/pdiddy/design-compiler/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [url]",
	Short: "Convert a design file to markup",
	Long: `Convert fetches the design file named by a share URL, lays it out, and
emits markup in the chosen format. The result is written as a zip archive
holding the entry file, components, stylesheet, and image assets.

Use --from-file to convert a saved document (YAML, or JSON as returned by
the design API) without network access; images then render as placeholders.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	target, err := types.ParseOutputTarget(format)
	if err != nil {
		return &types.Error{Kind: types.KindInvalidOptions, Op: "convert", Err: err}
	}
	opts, err := optionsFromFlags(cmd)
	if err != nil {
		return err
	}
	fromFile, _ := cmd.Flags().GetString("from-file")
	if fromFile == "" && len(args) == 0 {
		return fmt.Errorf("a design URL or --from-file is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var bundle *types.EmitBundle
	if fromFile != "" {
		doc, err := loader.LoadFile(fromFile)
		if err != nil {
			return err
		}
		bundle, err = pipeline.NewConverter(cfg, nil, nil).ConvertDocument(ctx, doc, nil, target, opts)
		if err != nil {
			return err
		}
	} else {
		explicit, _ := cmd.Flags().GetString("token")
		token, err := secrets.Token(explicit, secretsDir)
		if err != nil {
			return err
		}
		store, err := history.NewStore(cfg.History)
		if err != nil {
			return err
		}
		defer store.Close()

		bundle, err = pipeline.NewConverter(cfg, store, nil).Convert(ctx, args[0], token, target, opts)
		if err != nil {
			return err
		}
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = "design.zip"
	}
	if err := writeBundle(out, bundle); err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), out, bundle)
	return nil
}

// optionsFromFlags builds conversion options. Breakpoints stay nil unless
// the flag is given, so the configured list applies.
func optionsFromFlags(cmd *cobra.Command) (types.Options, error) {
	var opts types.Options
	opts.OptimizeAssets, _ = cmd.Flags().GetBool("optimize-assets")
	if cmd.Flags().Changed("breakpoints") {
		raw, _ := cmd.Flags().GetString("breakpoints")
		bps, err := parseBreakpoints(raw)
		if err != nil {
			return opts, err
		}
		opts.Breakpoints = bps
	}
	return opts, nil
}

// writeBundle writes the zip archive to path, or to stdout when path is "-".
func writeBundle(path string, b *types.EmitBundle) error {
	if path == "-" {
		return pack.Write(os.Stdout, b)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := pack.Write(f, b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(w io.Writer, out string, b *types.EmitBundle) {
	if out == "-" {
		return
	}
	fmt.Fprintf(w, "Wrote %s (%s)\n", out, b.Target)
	for _, f := range pack.Files(b) {
		fmt.Fprintf(w, "  %-40s %8d bytes\n", f.Name, len(f.Data))
	}
	if len(b.Warnings) > 0 {
		fmt.Fprintf(w, "%d warning(s):\n", len(b.Warnings))
		for _, warn := range b.Warnings {
			fmt.Fprintf(w, "  %s\n", warn)
		}
	}
}

func init() {
	convertCmd.Flags().StringP("format", "f", string(types.TargetMarkupUtility), "output format: html-tailwind, react-tailwind, or html-css")
	convertCmd.Flags().String("breakpoints", "", "comma-separated responsive widths in pixels; empty disables responsive output")
	convertCmd.Flags().Bool("optimize-assets", false, "re-encode image assets to shrink them")
	convertCmd.Flags().String("from-file", "", "convert a saved document instead of fetching a URL")
	convertCmd.Flags().StringP("out", "o", "design.zip", `output archive path ("-" for stdout)`)
	convertCmd.Flags().String("token", "", "design API access token (default: .secrets/figma-token or FIGMA_TOKEN)")

	rootCmd.AddCommand(convertCmd)
}
