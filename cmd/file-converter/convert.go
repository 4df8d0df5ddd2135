// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/file-converter/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> [output]",
	Short: "Convert a file to another format",
	Long: `Convert picks a backend from the input and output extensions. The output
defaults to the input with the --to extension. Several inputs with --to
run as a batch into --out-dir (or next to each input).

Modes apply to pdf→docx (auto, text, ocr, image, groq, hybrid,
libreoffice), image→pdf and csv→xlsx (basic, ai). Methods apply to
docx→pdf (auto, libreoffice, docx2pdf) and html→pdf (auto, chromium,
libreoffice).`,
	Example: `  file-converter convert report.pdf report.docx --mode text
  file-converter convert data.csv -t xlsx -m ai
  file-converter convert *.docx -t pdf --out-dir pdf/`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("to", "t", "", "target extension (e.g. docx, pdf, xlsx)")
	convertCmd.Flags().StringP("mode", "m", "", "conversion mode for pdf→docx, image→pdf and csv→xlsx")
	convertCmd.Flags().String("method", "", "method for docx→pdf and html→pdf")
	convertCmd.Flags().String("out-dir", "", "output directory for batch conversion")
	convertCmd.Flags().Bool("overwrite", false, "replace existing outputs in batch mode")
	convertCmd.Flags().Bool("list", false, "print the supported conversions and exit")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list"); list {
		printConversions(cmd.OutOrStdout())
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("provide an input file (see --list for supported conversions)")
	}

	to, _ := cmd.Flags().GetString("to")
	mode, _ := cmd.Flags().GetString("mode")
	method, _ := cmd.Flags().GetString("method")
	outDir, _ := cmd.Flags().GetString("out-dir")
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	opts := convert.Options{Mode: mode, Method: method, Overwrite: overwrite}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a := newApp(ctx, loadConfig(), log)
	defer a.Close()

	if to != "" && (len(args) > 2 || outDir != "") {
		warnModes(args[0], to, opts)
		result := a.router.ConvertBatch(ctx, args, to, outDir, opts, cmd.OutOrStdout())
		if result.HasFailures() {
			return fmt.Errorf("%d file(s) failed conversion", result.Failed)
		}
		return nil
	}
	if len(args) > 2 {
		return fmt.Errorf("batch conversion needs --to")
	}

	input := args[0]
	var output string
	switch {
	case len(args) == 2:
		output = args[1]
		if to != "" {
			output = convert.OutputPath(input, to, output)
		}
	case to != "":
		output = convert.OutputPath(input, to, "")
	default:
		return fmt.Errorf("provide an output file or --to extension")
	}

	warnModes(input, output, opts)
	res, err := a.router.Convert(ctx, input, output, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Converted %s → %s (%s in %s)\n",
		input, res.Output, res.Size(), res.Duration.Round(time.Millisecond))
	return nil
}

// warnModes logs a --mode or --method the route will not accept or will
// ignore. The backend still receives them and decides.
func warnModes(input, output string, opts convert.Options) {
	src, dst := filepath.Ext(input), filepath.Ext(output)
	if dst == "" {
		dst = output
	}
	for _, err := range convert.ValidateOptions(src, dst, opts) {
		log.Warn(err)
	}
}

func printConversions(w io.Writer) {
	conv := convert.SupportedConversions()
	fmt.Fprintln(w, "Supported conversions:")
	for _, src := range sortedKeys(conv) {
		fmt.Fprintf(w, "  %-5s → %s\n", strings.ToUpper(src), strings.ToUpper(strings.Join(conv[src], ", ")))
	}
	if loadConfig().AI.APIKey == "" {
		fmt.Fprintln(w, "\nAI modes need GROQ_API_KEY or .secrets/groq-api-key.")
	}
}
