// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docx builds Word documents from styled blocks and reads them back
// as plain paragraphs. It wraps github.com/fumiama/go-docx with the
// paragraph formatting the converters need.
package docx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for picture sizing
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	godocx "github.com/fumiama/go-docx"
)

// Page geometry in twips (1/1440 inch).
const (
	twipsPerInch = 1440
	twipsPerPt   = 20
	emuPerInch   = 914400

	letterWidth  = 12240
	letterHeight = 15840
	marginTwips  = 1440
)

// lineAuto240 is the OOXML unit for single line spacing with lineRule=auto.
const lineAuto240 = 240

// Format describes direct formatting applied to a paragraph and its runs.
// Zero values leave the corresponding property unset.
type Format struct {
	Font   string
	Size   float64 // points
	Bold   bool
	Italic bool
	Color  string // RRGGBB

	SpaceBefore float64 // points
	SpaceAfter  float64 // points
	LineSpacing float64 // multiple of single spacing

	LeftIndent float64 // inches
	Hanging    float64 // inches
}

// CoreProperties are the package metadata fields written to docProps/core.xml.
type CoreProperties struct {
	Title   string
	Author  string
	Subject string
}

// Document is a DOCX under construction.
type Document struct {
	f *godocx.Docx

	// pendingAfter holds the previous paragraph's space-after in twips.
	// The spacing element has no after attribute, so it is folded into the
	// next paragraph's space-before.
	pendingAfter int
	paragraphs   int
	props        CoreProperties
}

// New returns an empty US Letter document with the default theme.
func New() *Document {
	return &Document{f: godocx.New().WithDefaultTheme()}
}

// Paragraphs returns the number of paragraphs added so far, page breaks
// excluded.
func (d *Document) Paragraphs() int { return d.paragraphs }

// SetCoreProperties records the metadata written on Save. Empty fields keep
// the template's values.
func (d *Document) SetCoreProperties(p CoreProperties) { d.props = p }

// AddParagraph appends a paragraph with the given style and formatting.
// Tabs in text become tab runs.
func (d *Document) AddParagraph(text, style string, fm Format) *godocx.Paragraph {
	p := d.f.AddParagraph()
	if id := StyleID(style); id != "" {
		p.Style(id)
	}
	d.applyParagraphFormat(p, fm)
	if text != "" {
		applyRunFormat(p.AddText(text), fm)
	}
	d.paragraphs++
	return p
}

// AddRuns appends a paragraph made of several runs sharing one paragraph
// format. Each run gets its own text with fm's run formatting.
func (d *Document) AddRuns(parts []string, style string, fm Format) *godocx.Paragraph {
	p := d.f.AddParagraph()
	if id := StyleID(style); id != "" {
		p.Style(id)
	}
	d.applyParagraphFormat(p, fm)
	for _, s := range parts {
		if s == "" {
			continue
		}
		applyRunFormat(p.AddText(s), fm)
	}
	d.paragraphs++
	return p
}

// AddPageBreak starts a new page.
func (d *Document) AddPageBreak() {
	d.f.AddParagraph().AddPageBreaks()
	d.pendingAfter = 0
}

// AddPicture embeds img (PNG or JPEG) in its own paragraph, scaled to
// widthInches while keeping the aspect ratio.
func (d *Document) AddPicture(img []byte, widthInches float64) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return fmt.Errorf("decoding picture: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("picture has zero size")
	}

	p := d.f.AddParagraph()
	run, err := p.AddInlineDrawing(img)
	if err != nil {
		return fmt.Errorf("embedding picture: %w", err)
	}
	w := int64(widthInches * emuPerInch)
	h := w * int64(cfg.Height) / int64(cfg.Width)
	for _, c := range run.Children {
		if dr, ok := c.(*godocx.Drawing); ok && dr.Inline != nil {
			dr.Inline.Size(w, h)
		}
	}
	d.pendingAfter = 0
	d.paragraphs++
	return nil
}

// Encode writes the document package to w. Core properties are not
// applied; use Save for that.
func (d *Document) Encode(w io.Writer) error {
	d.finish()
	if _, err := d.f.WriteTo(w); err != nil {
		return fmt.Errorf("writing docx: %w", err)
	}
	return nil
}

// Save writes the document to path, creating parent directories.
func (d *Document) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return err
	}
	data := buf.Bytes()
	if d.props != (CoreProperties{}) {
		var err error
		data, err = setCoreProperties(data, d.props)
		if err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// finish appends the section properties. It runs once; the section must be
// the last body item.
func (d *Document) finish() {
	items := d.f.Document.Body.Items
	if n := len(items); n > 0 {
		if _, ok := items[n-1].(*godocx.SectPr); ok {
			return
		}
	}
	d.f.Document.Body.Items = append(items, &godocx.SectPr{
		PgSz: &godocx.PgSz{W: letterWidth, H: letterHeight},
		PgMar: &godocx.PgMar{
			Top: marginTwips, Bottom: marginTwips,
			Left: marginTwips, Right: marginTwips,
			Header: 720, Footer: 720,
		},
	})
}

func (d *Document) applyParagraphFormat(p *godocx.Paragraph, fm Format) {
	before := max(pt(fm.SpaceBefore), d.pendingAfter)
	d.pendingAfter = pt(fm.SpaceAfter)

	line := 0
	if fm.LineSpacing > 0 {
		line = int(math.Round(fm.LineSpacing * lineAuto240))
	}
	if before > 0 || line > 0 {
		if p.Properties == nil {
			p.Properties = &godocx.ParagraphProperties{}
		}
		sp := &godocx.Spacing{Before: before, Line: line}
		if line > 0 {
			sp.LineRule = "auto"
		}
		p.Properties.Spacing = sp
	}

	if fm.LeftIndent > 0 || fm.Hanging > 0 {
		if p.Properties == nil {
			p.Properties = &godocx.ParagraphProperties{}
		}
		p.Properties.Ind = &godocx.Ind{
			Left:    inches(fm.LeftIndent),
			Hanging: inches(fm.Hanging),
		}
	}
}

func applyRunFormat(r *godocx.Run, fm Format) {
	if fm.Font != "" {
		r.Font(fm.Font, fm.Font, fm.Font, "")
	}
	if fm.Size > 0 {
		r.Size(halfPoints(fm.Size))
	}
	if fm.Bold {
		r.Bold()
	}
	if fm.Italic {
		r.Italic()
	}
	if fm.Color != "" {
		r.Color(strings.TrimPrefix(fm.Color, "#"))
	}
}

func pt(v float64) int { return int(math.Round(v * twipsPerPt)) }

func inches(v float64) int { return int(math.Round(v * twipsPerInch)) }

func halfPoints(size float64) string { return strconv.Itoa(int(math.Round(size * 2))) }
