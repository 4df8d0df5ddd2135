// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/file-converter/internal/convert"
	"github.com/pdiddy/file-converter/internal/office"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported conversions and their modes",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		conv := convert.SupportedConversions()
		fmt.Fprintf(w, "%-6s  %-6s  %s\n", "From", "To", "Modes (* = default)")
		fmt.Fprintln(w, strings.Repeat("-", 60))
		for _, src := range sortedKeys(conv) {
			for _, dst := range conv[src] {
				fmt.Fprintf(w, "%-6s  %-6s  %s\n", src, dst, modeList(src, dst))
			}
		}
	},
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the formats LibreOffice can convert between",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		formats := office.SupportedFormats()
		for _, in := range office.InputFormats() {
			fmt.Fprintf(w, "  %-5s → %s\n", in, strings.Join(formats[in], ", "))
		}
	},
}

func modeList(src, dst string) string {
	modes := convert.AvailableModes(src, dst)
	if len(modes) == 0 {
		return "-"
	}
	def := convert.DefaultMode(src, dst)
	out := make([]string, len(modes))
	for i, m := range modes {
		if m == def {
			m += "*"
		}
		out[i] = m
	}
	return strings.Join(out, ", ")
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(formatsCmd)
}
