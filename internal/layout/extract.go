// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout reads positioned text from PDFs and turns it into lines
// and blocks annotated with indentation, list markers, and heading hints.
package layout

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/file-converter/pkg/types"
)

// textPageMinChars is the number of non-blank characters a page needs to
// count as a text page.
const textPageMinChars = 50

// PageLines holds the lines of one page together with its dimensions.
type PageLines struct {
	Page   int
	Width  float64
	Height float64
	Lines  []Line
}

// MinX0 returns the leftmost line start on the page, or 0 for an empty page.
func (p PageLines) MinX0() float64 {
	if len(p.Lines) == 0 {
		return 0
	}
	lo := math.Inf(1)
	for _, l := range p.Lines {
		if l.X0 < lo {
			lo = l.X0
		}
	}
	return lo
}

// Extractor builds layouts from PDF files.
type Extractor struct {
	log  logrus.FieldLogger
	open func(path string) (Document, error)
}

// NewExtractor returns an Extractor that reads PDFs from disk.
func NewExtractor(log logrus.FieldLogger) *Extractor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Extractor{
		log:  log.WithField("component", "layout"),
		open: OpenPDF,
	}
}

// Lines returns the grouped lines of every page.
func (e *Extractor) Lines(ctx context.Context, path string) ([]PageLines, error) {
	doc, err := e.open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return e.documentLines(ctx, doc)
}

func (e *Extractor) documentLines(ctx context.Context, doc Document) ([]PageLines, error) {
	n := doc.NumPages()
	pages := make([]PageLines, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pc, err := doc.Page(i)
		if err != nil {
			e.log.WithFields(logrus.Fields{"page": i}).WithError(err).Warn("skipping unreadable page")
			pages = append(pages, PageLines{Page: i, Width: pc.Width, Height: pc.Height})
			continue
		}
		words := GlyphsToWords(pc.Glyphs, pc.Height)
		pages = append(pages, PageLines{
			Page:   i,
			Width:  pc.Width,
			Height: pc.Height,
			Lines:  GroupLines(words),
		})
	}
	return pages, nil
}

// Extract reads the PDF at path and returns its full layout.
func (e *Extractor) Extract(ctx context.Context, path string) (*types.Layout, error) {
	doc, err := e.open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	meta := documentMetadata(path, doc.Info())
	e.log.WithFields(logrus.Fields{"input": meta.Filename, "pages": doc.NumPages()}).Info("extracting layout")

	pages, err := e.documentLines(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("extracting layout from %s: %w", path, err)
	}
	return BuildLayout(meta, pages), nil
}

// BuildLayout converts grouped page lines into a Layout.
func BuildLayout(meta types.DocumentMetadata, pages []PageLines) *types.Layout {
	l := &types.Layout{
		Metadata:   meta,
		TotalPages: len(pages),
		Pages:      make([]types.PageLayout, 0, len(pages)),
	}
	for _, p := range pages {
		pl := types.PageLayout{
			Page:   p.Page,
			Width:  p.Width,
			Height: p.Height,
			Blocks: []types.Block{},
		}
		for _, line := range p.Lines {
			if strings.TrimSpace(line.Text) == "" {
				continue
			}
			pl.Blocks = append(pl.Blocks, BuildBlock(line))
		}
		l.Pages = append(l.Pages, pl)
	}
	return l
}

// BuildBlock annotates a line with list, indent, and heading information.
func BuildBlock(line Line) types.Block {
	text := strings.TrimSpace(line.Text)
	list := DetectList(text)
	return types.Block{
		Text:               text,
		CleanText:          list.CleanText,
		X0:                 round(line.X0, 2),
		Y0:                 round(line.Y0, 2),
		X1:                 round(line.X1, 2),
		Y1:                 round(line.Y1, 2),
		Font:               line.Font,
		Size:               line.Size,
		IndentLevel:        IndentLevel(line.X0),
		ListType:           list.Type,
		ListMarker:         list.Marker,
		IsPotentialHeading: IsPotentialHeading(list.CleanText, line.Font, line.Size),
		CharCount:          utf8.RuneCountInString(list.CleanText),
		WordCount:          len(line.Words),
	}
}

// Analyze classifies each page as text or image and derives the document
// kind. A PDF that cannot be read is reported as a text document so that
// callers fall through to the text strategy.
func (e *Extractor) Analyze(ctx context.Context, path string) types.PDFAnalysis {
	doc, err := e.open(path)
	if err != nil {
		e.log.WithError(err).Warn("PDF analysis failed, assuming text document")
		return types.PDFAnalysis{Kind: types.DocumentText}
	}
	defer doc.Close()

	a := AnalyzeDocument(ctx, doc)
	e.log.WithFields(logrus.Fields{
		"kind":        a.Kind,
		"text_pages":  a.TextPages,
		"image_pages": a.ImagePages,
	}).Info("analyzed PDF")
	return a
}

// AnalyzeDocument counts text and image pages of an open document.
func AnalyzeDocument(ctx context.Context, doc Document) types.PDFAnalysis {
	a := types.PDFAnalysis{TotalPages: doc.NumPages()}
	for i := 1; i <= a.TotalPages; i++ {
		if ctx.Err() != nil {
			break
		}
		pc, err := doc.Page(i)
		if err == nil && pageCharCount(pc.Glyphs) >= textPageMinChars {
			a.TextPages++
		} else {
			a.ImagePages++
		}
	}
	a.Kind = classify(a.TextPages, a.ImagePages)
	return a
}

func classify(textPages, imagePages int) types.DocumentKind {
	switch {
	case imagePages == 0:
		return types.DocumentText
	case textPages == 0:
		return types.DocumentImage
	default:
		return types.DocumentHybrid
	}
}

func pageCharCount(glyphs []Glyph) int {
	var b strings.Builder
	for _, g := range glyphs {
		b.WriteString(g.Text)
	}
	return utf8.RuneCountInString(strings.TrimSpace(b.String()))
}

// Metadata returns file and document-information facts for the PDF at path.
func Metadata(path string) (types.DocumentMetadata, error) {
	doc, err := OpenPDF(path)
	if err != nil {
		return types.DocumentMetadata{}, err
	}
	defer doc.Close()
	return documentMetadata(path, doc.Info()), nil
}

func documentMetadata(path string, info DocumentInfo) types.DocumentMetadata {
	meta := types.DocumentMetadata{
		Filename: filepath.Base(path),
		Title:    info.Title,
		Author:   info.Author,
		Creator:  info.Creator,
		Producer: info.Producer,
	}
	if st, err := os.Stat(path); err == nil {
		meta.FileSizeMB = round(float64(st.Size())/(1024*1024), 2)
	}
	return meta
}
