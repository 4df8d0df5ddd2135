// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// US Letter in points, used when a page has no usable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Document is a readable PDF.
type Document interface {
	NumPages() int
	// Page returns the glyphs of page n (1-based).
	Page(n int) (PageContent, error)
	Info() DocumentInfo
	Close() error
}

// PageContent is the raw text content of one page.
type PageContent struct {
	Width  float64
	Height float64
	Glyphs []Glyph
}

// DocumentInfo holds the PDF Info dictionary fields we care about.
type DocumentInfo struct {
	Title    string
	Author   string
	Creator  string
	Producer string
}

type pdfDocument struct {
	f *os.File
	r *pdf.Reader
}

// OpenPDF opens a PDF file for glyph-level reading.
func OpenPDF(path string) (Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	return &pdfDocument{f: f, r: r}, nil
}

func (d *pdfDocument) NumPages() int { return d.r.NumPage() }

func (d *pdfDocument) Close() error { return d.f.Close() }

// Page recovers from reader panics, which malformed content streams trigger.
func (d *pdfDocument) Page(n int) (pc PageContent, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("reading page %d: %v", n, rec)
		}
	}()

	p := d.r.Page(n)
	if p.V.IsNull() {
		return PageContent{}, fmt.Errorf("page %d not found", n)
	}

	pc.Width, pc.Height = mediaBox(p)
	for _, t := range p.Content().Text {
		pc.Glyphs = append(pc.Glyphs, Glyph{
			Text: t.S,
			X:    t.X,
			Y:    t.Y,
			W:    t.W,
			Font: t.Font,
			Size: t.FontSize,
		})
	}
	return pc, nil
}

func (d *pdfDocument) Info() (info DocumentInfo) {
	defer func() { _ = recover() }()

	v := d.r.Trailer().Key("Info")
	if v.IsNull() {
		return info
	}
	info.Title = v.Key("Title").Text()
	info.Author = v.Key("Author").Text()
	info.Creator = v.Key("Creator").Text()
	info.Producer = v.Key("Producer").Text()
	return info
}

// mediaBox reads the page size, walking up the Parent chain since pages
// may inherit MediaBox from their page tree node.
func mediaBox(p pdf.Page) (float64, float64) {
	var box pdf.Value
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		if b := v.Key("MediaBox"); !b.IsNull() {
			box = b
			break
		}
	}
	if box.Len() != 4 {
		return defaultPageWidth, defaultPageHeight
	}
	w := box.Index(2).Float64() - box.Index(0).Float64()
	h := box.Index(3).Float64() - box.Index(1).Float64()
	if w <= 0 || h <= 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return w, h
}
