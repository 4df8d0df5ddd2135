// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/file-converter/pkg/types"
)

// ReportPath returns the report file written next to a DOCX output.
func ReportPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + ".report.txt"
}

// RenderReport summarises a reconstruction: status, block counts per style
// and whether the AI result was used.
func RenderReport(rec *types.Reconstruction) string {
	blocks := Blocks(rec)
	counts := make(map[string]int)
	for _, b := range blocks {
		style := b.Style
		if style == "" {
			style = types.StyleNormal
		}
		counts[style]++
	}
	styles := make([]string, 0, len(counts))
	for s := range counts {
		styles = append(styles, s)
	}
	sort.Strings(styles)

	status := "unknown"
	if rec != nil && rec.Status != "" {
		status = string(rec.Status)
	}

	var b strings.Builder
	b.WriteString("=== AI-Powered PDF to DOCX Conversion Report ===\n\n")
	fmt.Fprintf(&b, "Status: %s\n\n", status)
	b.WriteString("Block Statistics:\n")
	fmt.Fprintf(&b, "  Total blocks: %d\n", len(blocks))
	for _, s := range styles {
		fmt.Fprintf(&b, "  %s: %d\n", s, counts[s])
	}
	b.WriteString("\n")

	if rec != nil && rec.Status == types.ReconstructionSuccess {
		b.WriteString("AI Reconstruction: SUCCESS\n")
		if rec.Notes != "" {
			fmt.Fprintf(&b, "  Notes: %s\n", rec.Notes)
		}
	} else {
		b.WriteString("AI Reconstruction: FAILED or INCOMPLETE\n")
		if rec != nil && rec.RawText != "" {
			b.WriteString("  Fallback: Used raw text output\n")
		}
	}
	b.WriteString("\n=== End of Report ===")
	return b.String()
}

// WriteReport writes RenderReport's output to path.
func WriteReport(rec *types.Reconstruction, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(RenderReport(rec)), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
