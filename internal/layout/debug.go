// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/file-converter/pkg/types"
)

const (
	summaryPages  = 3
	summaryBlocks = 10
	summaryWidth  = 60
)

// Summary prints a human-readable digest of the first pages of a layout.
func Summary(l *types.Layout, w io.Writer) {
	fmt.Fprintf(w, "Document: %s\n", l.Metadata.Filename)
	fmt.Fprintf(w, "Pages: %d\n", l.TotalPages)
	if l.Metadata.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", l.Metadata.Title)
	}

	for i, p := range l.Pages {
		if i >= summaryPages {
			fmt.Fprintf(w, "\n... %d more page(s)\n", len(l.Pages)-summaryPages)
			break
		}
		fmt.Fprintf(w, "\n--- Page %d (%.0fx%.0f, %d blocks) ---\n", p.Page, p.Width, p.Height, len(p.Blocks))
		for j, b := range p.Blocks {
			if j >= summaryBlocks {
				fmt.Fprintf(w, "  ... %d more block(s)\n", len(p.Blocks)-summaryBlocks)
				break
			}
			fmt.Fprintf(w, "  [%2d] x0=%6.1f size=%4.1f indent=%d %s%s\n",
				j, b.X0, b.Size, b.IndentLevel, truncate(b.Text, summaryWidth), blockHint(b))
		}
	}
}

func blockHint(b types.Block) string {
	var hints []string
	if b.IsPotentialHeading {
		hints = append(hints, "[HEADING?]")
	}
	if b.ListType != types.ListNone {
		hints = append(hints, "["+strings.ToUpper(string(b.ListType))+" LIST]")
	}
	if len(hints) == 0 {
		return ""
	}
	return " " + strings.Join(hints, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// WriteJSON writes the layout as indented JSON.
func WriteJSON(l *types.Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(l)
}

// SaveJSON writes the layout as JSON to path.
func SaveJSON(l *types.Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteJSON(l, f); err != nil {
		f.Close()
		return fmt.Errorf("writing layout JSON: %w", err)
	}
	return f.Close()
}

var htmlTmpl = template.Must(template.New("layout").Funcs(template.FuncMap{
	"indentPx": func(level int) int { return level * 20 },
	"blockClass": func(b types.Block) string {
		switch {
		case b.ListType != types.ListNone:
			return "block list"
		case b.IsPotentialHeading:
			return "block heading"
		}
		return "block"
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Layout: {{.Metadata.Filename}}</title>
<style>
body { font-family: sans-serif; margin: 2em; background: #f5f5f5; }
.page { background: #fff; padding: 1em 2em; margin-bottom: 2em; box-shadow: 0 1px 3px #999; }
.block { padding: 2px 4px; margin: 2px 0; border-left: 3px solid #ddd; }
.heading { border-left-color: #1f4e78; font-weight: bold; }
.list { border-left-color: #4f81bd; }
.badge { font-size: 0.7em; color: #fff; background: #777; border-radius: 3px; padding: 0 4px; margin-left: 6px; }
</style>
</head>
<body>
<h1>{{.Metadata.Filename}}</h1>
<p>{{.TotalPages}} page(s)</p>
{{range .Pages}}<div class="page">
<h2>Page {{.Page}}</h2>
{{range .Blocks}}<div class="{{blockClass .}}" style="margin-left: {{indentPx .IndentLevel}}px">{{.Text}}<span class="badge">{{.Font}} {{.Size}}pt</span>{{if .ListType}}<span class="badge">{{.ListType}} {{.ListMarker}}</span>{{end}}</div>
{{end}}</div>
{{end}}</body>
</html>
`))

// WriteHTML renders the layout as a standalone HTML page that shows block
// positions, fonts, and detected structure.
func WriteHTML(l *types.Layout, w io.Writer) error {
	return htmlTmpl.Execute(w, l)
}
