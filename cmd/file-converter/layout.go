// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/file-converter/internal/layout"
)

var layoutCmd = &cobra.Command{
	Use:   "layout <pdf>",
	Short: "Show the extracted layout of a PDF",
	Long: `Layout runs the layout extractor on a PDF and prints what the converter
sees: a summary of the first pages with heading and list hints, a visual
HTML page, or the raw JSON layout.`,
	Args: cobra.ExactArgs(1),
	RunE: runLayout,
}

func init() {
	layoutCmd.Flags().String("format", "summary", "output format: summary, html, or json")
	layoutCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")

	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")

	l, err := layout.NewExtractor(log).Extract(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "summary", "":
		layout.Summary(l, w)
	case "html":
		err = layout.WriteHTML(l, w)
	case "json":
		err = layout.WriteJSON(l, w)
	default:
		return fmt.Errorf("unsupported format %q: use summary, html, or json", format)
	}
	if err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
	}
	return nil
}
