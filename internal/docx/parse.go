// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	godocx "github.com/fumiama/go-docx"
)

// Paragraph is the text of one DOCX paragraph with formatting hints.
type Paragraph struct {
	Text  string
	Style string  // style id, e.g. "Heading1"
	Bold  bool    // every text run is bold
	Size  float64 // largest run size in points, 0 when unset
	Table bool    // flattened table row text
}

// HeadingLevel returns 1 to 6 for heading and title styles, 0 otherwise.
func (p Paragraph) HeadingLevel() int {
	s := strings.ToLower(p.Style)
	switch {
	case s == "title":
		return 1
	case strings.HasPrefix(s, "heading"):
		n, err := strconv.Atoi(strings.TrimPrefix(s, "heading"))
		if err != nil || n < 1 {
			return 0
		}
		return min(n, 6)
	}
	return 0
}

// ParseText reads the paragraphs of the DOCX at path in body order. Tables
// are flattened into one paragraph per table: one line per row, cells
// separated by " | ".
func ParseText(path string) ([]Paragraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	doc, err := godocx.Parse(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var out []Paragraph
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *godocx.Paragraph:
			out = append(out, paragraphInfo(it))
		case *godocx.Table:
			if s := tableText(it); s != "" {
				out = append(out, Paragraph{Text: s, Table: true})
			}
		}
	}
	return out, nil
}

func paragraphInfo(p *godocx.Paragraph) Paragraph {
	info := Paragraph{Text: p.String()}
	if p.Properties != nil && p.Properties.Style != nil {
		info.Style = p.Properties.Style.Val
	}

	runs, bold := 0, 0
	for _, c := range p.Children {
		r, ok := c.(*godocx.Run)
		if !ok || !hasText(r) {
			continue
		}
		runs++
		if r.RunProperties == nil {
			continue
		}
		if r.RunProperties.Bold != nil {
			bold++
		}
		if r.RunProperties.Size != nil {
			if hp, err := strconv.Atoi(r.RunProperties.Size.Val); err == nil {
				info.Size = max(info.Size, float64(hp)/2)
			}
		}
	}
	info.Bold = runs > 0 && bold == runs
	return info
}

func hasText(r *godocx.Run) bool {
	for _, c := range r.Children {
		if t, ok := c.(*godocx.Text); ok && strings.TrimSpace(t.Text) != "" {
			return true
		}
	}
	return false
}

func tableText(t *godocx.Table) string {
	rows := make([]string, 0, len(t.TableRows))
	for _, r := range t.TableRows {
		cells := make([]string, 0, len(r.TableCells))
		for _, c := range r.TableCells {
			parts := make([]string, 0, len(c.Paragraphs))
			for _, p := range c.Paragraphs {
				if s := strings.TrimSpace(p.String()); s != "" {
					parts = append(parts, s)
				}
			}
			cells = append(cells, strings.Join(parts, " "))
		}
		if line := strings.TrimSpace(strings.Join(cells, " | ")); line != "" && line != "|" {
			rows = append(rows, line)
		}
	}
	return strings.Join(rows, "\n")
}
