// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/design-compiler/internal/history"
	"github.com/pdiddy/design-compiler/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recent conversions (list, rename, delete, clear, export)",
	Long: `History keeps the most recently touched conversions in a local SQLite
database. Converting the same URL again moves it to the front instead of
adding a duplicate.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversions, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List(context.Background())
		if err != nil {
			return err
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return formatHistory(records, jsonOutput)
	},
}

func formatHistory(records []types.HistoryRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No conversions recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-30s  %-14s  %-16s  %s\n",
		"ID", "Name", "Format", "Touched", "URL")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 130))
	for _, r := range records {
		name := r.DisplayName
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-30s  %-14s  %-16s  %s\n",
			r.ID, name, r.Format, r.LastTouched.Local().Format("2006-01-02 15:04"), r.SourceURL)
	}
	return nil
}

// --- rename subcommand ---

var historyRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Change the display name of a conversion",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[1])
		if name == "" {
			return fmt.Errorf("display name must not be empty")
		}
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Rename(context.Background(), args[0], name)
		if err != nil {
			return err
		}
		fmt.Printf("Renamed %s to %q\n", rec.ID, rec.DisplayName)
		return nil
	},
}

// --- delete subcommand ---

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Remove conversions from history",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		for _, id := range args {
			if err := store.Delete(context.Background(), id); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", id)
		}
		return nil
	},
}

// --- clear subcommand ---

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all conversions from history",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Clear(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Cleared %d record(s)\n", n)
		return nil
	},
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the history as YAML or JSON to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		switch format {
		case "yaml":
			return store.ExportYAML(context.Background(), os.Stdout)
		case "json":
			return store.ExportJSON(context.Background(), os.Stdout)
		default:
			return fmt.Errorf("unknown export format %q: use yaml or json", format)
		}
	},
}

func openHistory() (*history.Store, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return history.NewStore(cfg.History)
}

func init() {
	historyListCmd.Flags().Bool("json", false, "output records as JSON")
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyRenameCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
