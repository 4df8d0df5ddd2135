// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/file-converter/internal/history"
	"github.com/pdiddy/file-converter/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the conversion history",
	Long: `History reads the local SQLite database of past conversions. Use the
subcommands to list recent runs, summarise routes, or export.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversions, newest first",
	RunE:  runHistoryList,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise conversions per route",
	RunE:  runHistoryStats,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history to YAML or JSON",
	Long: `Export writes the conversions matching the filters, plus per-route
statistics, to export.yaml or export.json in the history data directory.`,
	RunE: runHistoryExport,
}

func openStore() (*history.Store, error) {
	cfg := loadConfig().History
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("history.data_dir is not set")
	}
	return history.NewStore(cfg)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.List(cmd.Context(), queryOptsFromFlags(cmd))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	w := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return nil
	}
	fmt.Fprintf(w, "%-19s  %-10s  %-11s  %-9s  %s\n", "When", "Route", "Mode", "Status", "Input")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, r := range recs {
		input := r.Input
		if len(input) > 40 {
			input = "..." + input[len(input)-37:]
		}
		fmt.Fprintf(w, "%-19s  %-10s  %-11s  %-9s  %s\n",
			r.CreatedAt.Local().Format(time.DateTime), r.SourceExt+"→"+r.TargetExt, r.Mode, r.Status, input)
		if r.Error != "" {
			fmt.Fprintf(w, "%21s%s\n", "", firstLine(r.Error))
		}
	}
	fmt.Fprintf(w, "\n%d conversion(s)\n", len(recs))
	return nil
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}
	audits, err := store.AuditCount(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-10s  %6s  %6s  %10s\n", "Route", "Total", "Failed", "Avg time")
	fmt.Fprintln(w, strings.Repeat("-", 38))
	for _, s := range stats {
		fmt.Fprintf(w, "%-10s  %6d  %6d  %10s\n", s.Source+"→"+s.Target, s.Total, s.Failed, s.AvgDuration.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "\nAI audit entries: %d\n", audits)
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd)
	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = store.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

func queryOptsFromFlags(cmd *cobra.Command) history.QueryOptions {
	source, _ := cmd.Flags().GetString("from")
	target, _ := cmd.Flags().GetString("to")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")
	return history.QueryOptions{
		Source: source,
		Target: target,
		Status: types.ConversionStatus(status),
		Limit:  limit,
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd} {
		c.Flags().String("from", "", "filter by source extension")
		c.Flags().String("to", "", "filter by target extension")
		c.Flags().String("status", "", "filter by status: converted, skipped, failed")
	}
	historyListCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	historyListCmd.Flags().Bool("json", false, "output results as JSON")
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
