// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// baselineTolerance is the maximum vertical drift (points) between glyphs
	// that are treated as sitting on the same baseline.
	baselineTolerance = 1.0

	// wordGapTolerance is the largest horizontal gap (points) between two
	// glyphs of the same word.
	wordGapTolerance = 3.0

	// fallbackAdvance is the estimated glyph width, in em, for fonts that
	// carry no /Widths array.
	fallbackAdvance = 0.5
)

// Glyph is a single positioned character as reported by the PDF reader.
// Y is the baseline measured from the bottom of the page.
type Glyph struct {
	Text string
	X    float64
	Y    float64
	W    float64
	Font string
	Size float64
}

// Word is a run of glyphs with a top-left origin bounding box.
type Word struct {
	Text   string
	X0     float64
	X1     float64
	Top    float64
	Bottom float64
	Font   string
	Size   float64
	// SpaceBefore is set when a blank glyph separated this word from the
	// previous one on its row.
	SpaceBefore bool
}

// GlyphsToWords merges glyphs into words. Glyphs are grouped into rows by
// baseline, sorted left to right, and split on whitespace glyphs or on
// horizontal gaps wider than wordGapTolerance.
func GlyphsToWords(glyphs []Glyph, pageHeight float64) []Word {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var rows [][]Glyph
	var row []Glyph
	rowY := sorted[0].Y
	for _, g := range sorted {
		if len(row) > 0 && math.Abs(g.Y-rowY) > baselineTolerance {
			rows = append(rows, row)
			row = nil
		}
		if len(row) == 0 {
			rowY = g.Y
		}
		row = append(row, g)
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	var words []Word
	for _, r := range rows {
		sort.SliceStable(r, func(i, j int) bool { return r[i].X < r[j].X })
		estimateWidths(r)
		words = append(words, rowWords(r, pageHeight)...)
	}
	return words
}

// estimateWidths fills in zero glyph widths. Without /Widths the reader
// also leaves every glyph of a text run at the run's start, so zero-width
// glyphs that do not advance past the previous one are moved up to its end.
func estimateWidths(row []Glyph) {
	var end float64
	prevZero := false
	for i := range row {
		g := &row[i]
		if g.W > 0 {
			end, prevZero = g.X+g.W, false
			continue
		}
		if prevZero && g.X < end {
			g.X = end
		}
		g.W = g.Size * fallbackAdvance * float64(utf8.RuneCountInString(g.Text))
		end, prevZero = g.X+g.W, true
	}
}

func rowWords(row []Glyph, pageHeight float64) []Word {
	var words []Word
	var cur []Glyph
	blank := false

	flush := func() {
		if len(cur) > 0 {
			w := buildWord(cur, pageHeight)
			w.SpaceBefore = blank && len(words) > 0
			words = append(words, w)
			cur = nil
			blank = false
		}
	}

	for _, g := range row {
		if isBlank(g.Text) {
			flush()
			blank = true
			continue
		}
		if len(cur) > 0 {
			last := cur[len(cur)-1]
			if g.X-(last.X+last.W) > wordGapTolerance {
				flush()
			}
		}
		cur = append(cur, g)
	}
	flush()
	return words
}

func buildWord(glyphs []Glyph, pageHeight float64) Word {
	var b strings.Builder
	var sizeSum, baseline float64
	for _, g := range glyphs {
		b.WriteString(g.Text)
		sizeSum += g.Size
		baseline += g.Y
	}
	first, last := glyphs[0], glyphs[len(glyphs)-1]
	size := sizeSum / float64(len(glyphs))
	y := baseline / float64(len(glyphs))

	return Word{
		Text:   b.String(),
		X0:     first.X,
		X1:     last.X + last.W,
		Top:    pageHeight - (y + size),
		Bottom: pageHeight - y,
		Font:   first.Font,
		Size:   size,
	}
}

func isBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
