// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr defines the text recognition interface used by the PDF
// converters and turns recognised words into paragraphs. Engines live in
// subpackages so callers that only need the interface avoid the native
// dependency.
package ocr

import (
	"context"
	"strings"
)

// MinConfidence is the lowest word confidence (0 to 100) kept in output.
const MinConfidence = 30

// Word is one recognised token with its position in the page hierarchy.
type Word struct {
	Text       string
	Confidence float64 // 0 to 100
	Block      int
	Paragraph  int
	Line       int
}

// Engine recognises text in an encoded image (PNG or JPEG).
type Engine interface {
	// Words returns the words of the image in reading order.
	Words(ctx context.Context, img []byte) ([]Word, error)
	// Text returns the plain text of the image.
	Text(ctx context.Context, img []byte) (string, error)
}

// Paragraphs groups words into one paragraph per block. Words below
// minConfidence are dropped and blocks left empty are omitted. Each word is
// followed by a single space, so paragraphs keep a trailing space.
func Paragraphs(words []Word, minConfidence float64) []string {
	var (
		out     []string
		cur     strings.Builder
		block   = -1
		started bool
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
		}
		cur.Reset()
	}
	for _, w := range words {
		if w.Confidence < minConfidence || strings.TrimSpace(w.Text) == "" {
			continue
		}
		if !started || w.Block != block {
			flush()
			block = w.Block
			started = true
		}
		cur.WriteString(w.Text)
		cur.WriteByte(' ')
	}
	flush()
	return out
}
