// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"text/template"

	"github.com/pdiddy/file-converter/pkg/types"
)

// PromptVersion identifies the prompt set; it is logged with each request.
const PromptVersion = "1.0.0"

// reconstructionSystemPrompt drives the single-pass hybrid reconstruction.
const reconstructionSystemPrompt = `You are a document reconstruction specialist working on PDF to DOCX conversion.
You receive text blocks extracted from a PDF together with their position, font and indentation.
In one pass you clean up the layout AND assign a paragraph style to every resulting block.

Layout cleanup:
- Join blocks that are fragments of the same paragraph or sentence.
- Strip bullet characters (•, -, *, →) and list numbers from the text; the style carries the list.
- Drop running headers, footers and bare page numbers.
- Keep nesting: use "level" for list depth, 0 for top level, derived from indentation.
- Never invent, summarise, reorder or translate content.

Styles (use exactly these names):
Title, Heading 1, Heading 2, Heading 3, List Bullet, List Number, Normal, Quote, Caption

Evidence for headings: larger font, bold face, short line, no terminal punctuation.

OUTPUT FORMAT
Return only JSON, without commentary:
{"blocks": [{"text": "...", "style": "Heading 1", "level": 0, "original_indices": [0, 1]}],
 "ai_notes": "optional one-line remark"}

Be intelligent but conservative: when uncertain, use "Normal".`

// layoutSystemPrompt drives the cleanup-only pass.
const layoutSystemPrompt = `You clean up text blocks extracted from a PDF before they are written to a Word document.
Fix bullet markers, join fragmented paragraphs, detect headings, keep indentation, remove extra line breaks.
Return only JSON of the form {"blocks": [{"text": "...", "style": "Normal", "level": 0}]}.`

// styleSystemPrompt drives the style-tagging-only pass.
const styleSystemPrompt = `You assign Word paragraph styles to text blocks extracted from a PDF.
Available styles: Title, Heading 1, Heading 2, Heading 3, List Bullet, List Number, Normal, Quote, Caption.
Return only a JSON array: [{"original_text": "...", "style": "Heading 1", "confidence": 0.9}].
When uncertain, use "Normal".`

// CSVEnhancementSystemPrompt asks for spreadsheet formatting suggestions.
const CSVEnhancementSystemPrompt = `You are a spreadsheet formatting assistant. Given a preview of CSV data and
per-column statistics, suggest how the Excel workbook should be formatted.
Return only JSON:
{"header_style": {"bold": true}, "column_formats": {"<column>": "text|number|currency|percent|date"},
 "freeze_header": true, "notes": "..."}`

// ImageLayoutSystemPrompt asks for page settings for an image-to-PDF conversion.
const ImageLayoutSystemPrompt = `You choose PDF page settings for embedding a single image.
Given image metadata, return only JSON:
{"dpi": 150, "orientation": "portrait|landscape", "fit": "contain|cover", "notes": "..."}`

var hybridPromptTmpl = template.Must(template.New("hybrid").Parse(`Reconstruct the document below. It has {{.TotalPages}} page(s).
Each page lists its blocks in reading order with coordinates in points (origin top-left).

DOCUMENT LAYOUT:
{{.JSON}}
`))

var layoutPromptTmpl = template.Must(template.New("layout").Parse(`Clean up the layout of this document.

Tasks:
1. Fix bullets (•, -, *, →)
2. Group lines into paragraphs
3. Detect headings
4. Keep indentation
5. Remove extra line breaks

Layout summary:
{{.JSON}}

Return JSON with cleaned blocks.
`))

var stylePromptTmpl = template.Must(template.New("style").Parse(`Assign a style to each of these blocks.

Blocks:
{{.JSON}}
`))

var csvPromptTmpl = template.Must(template.New("csv").Parse(`Suggest Excel formatting for this CSV file.

Preview (first rows):
{{.Preview}}

Column information:
{{.Columns}}
`))

var imagePromptTmpl = template.Must(template.New("image").Parse(`Choose PDF settings for this image.

Image metadata:
{{.JSON}}
`))

type hybridBlock struct {
	Text   string  `json:"text"`
	X0     float64 `json:"x0"`
	Y0     float64 `json:"y0"`
	Font   string  `json:"font"`
	Size   float64 `json:"size"`
	Indent int     `json:"indent"`
}

type hybridPage struct {
	Page   int           `json:"page"`
	Blocks []hybridBlock `json:"blocks"`
}

type layoutBlock struct {
	Text        string  `json:"text"`
	X0          float64 `json:"x0"`
	Font        string  `json:"font"`
	Size        float64 `json:"size"`
	IndentLevel int     `json:"indent_level"`
}

type layoutSummary struct {
	TotalPages int           `json:"total_pages"`
	Blocks     []layoutBlock `json:"blocks"`
}

type styleBlock struct {
	Text     string  `json:"text"`
	FontSize float64 `json:"font_size"`
	FontName string  `json:"font_name"`
	Indent   int     `json:"indent"`
}

const (
	layoutTextLimit = 200
	styleTextLimit  = 150
	styleBlockLimit = 50
	csvFieldLimit   = 1000
)

func buildPrompt(l *types.Layout, pass Pass) (system, user string, err error) {
	switch pass {
	case PassHybrid:
		pages := make([]hybridPage, 0, len(l.Pages))
		for _, p := range l.Pages {
			hp := hybridPage{Page: p.Page, Blocks: []hybridBlock{}}
			for _, b := range p.Blocks {
				hp.Blocks = append(hp.Blocks, hybridBlock{
					Text:   b.Text,
					X0:     round1(b.X0),
					Y0:     round1(b.Y0),
					Font:   b.Font,
					Size:   round1(b.Size),
					Indent: b.IndentLevel,
				})
			}
			pages = append(pages, hp)
		}
		user, err = render(hybridPromptTmpl, l.TotalPages, pages)
		return reconstructionSystemPrompt, user, err

	case PassLayout:
		s := layoutSummary{TotalPages: l.TotalPages, Blocks: []layoutBlock{}}
		for _, b := range l.Blocks() {
			font := b.Font
			if font == "" {
				font = "unknown"
			}
			s.Blocks = append(s.Blocks, layoutBlock{
				Text:        truncateRunes(b.Text, layoutTextLimit),
				X0:          round1(b.X0),
				Font:        font,
				Size:        b.Size,
				IndentLevel: b.IndentLevel,
			})
		}
		user, err = render(layoutPromptTmpl, l.TotalPages, s)
		return layoutSystemPrompt, user, err

	case PassStyle:
		blocks := l.Blocks()
		if len(blocks) > styleBlockLimit {
			blocks = blocks[:styleBlockLimit]
		}
		out := make([]styleBlock, 0, len(blocks))
		for _, b := range blocks {
			out = append(out, styleBlock{
				Text:     truncateRunes(b.Text, styleTextLimit),
				FontSize: b.Size,
				FontName: b.Font,
				Indent:   b.IndentLevel,
			})
		}
		user, err = render(stylePromptTmpl, l.TotalPages, out)
		return styleSystemPrompt, user, err
	}
	return "", "", fmt.Errorf("unknown pass type %q", pass)
}

func render(tmpl *template.Template, totalPages int, payload any) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling prompt payload: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct {
		TotalPages int
		JSON       string
	}{totalPages, string(data)}); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// CSVPrompt renders the user prompt for spreadsheet suggestions. Both
// inputs are truncated to keep the request small.
func CSVPrompt(preview, columns string) (string, error) {
	var buf bytes.Buffer
	err := csvPromptTmpl.Execute(&buf, struct{ Preview, Columns string }{
		truncateRunes(preview, csvFieldLimit),
		truncateRunes(columns, csvFieldLimit),
	})
	if err != nil {
		return "", fmt.Errorf("rendering csv prompt: %w", err)
	}
	return buf.String(), nil
}

// ImagePrompt renders the user prompt for image page settings.
func ImagePrompt(metadata any) (string, error) {
	return render(imagePromptTmpl, 0, metadata)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
