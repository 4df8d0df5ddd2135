// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fitz renders PDF pages with MuPDF.
package fitz

import (
	"context"
	"fmt"

	gofitz "github.com/gen2brain/go-fitz"

	"github.com/pdiddy/file-converter/internal/raster"
)

// Renderer implements raster.Renderer with go-fitz.
type Renderer struct{}

// New returns a MuPDF renderer.
func New() *Renderer { return &Renderer{} }

// Name implements raster.Renderer.
func (*Renderer) Name() string { return "mupdf" }

// Render implements raster.Renderer.
func (*Renderer) Render(ctx context.Context, pdfPath string, dpi int, fn raster.PageFunc) error {
	doc, err := gofitz.New(pdfPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	defer doc.Close()

	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return fmt.Errorf("rendering page %d: %w", i+1, err)
		}
		if err := fn(i+1, img); err != nil {
			return err
		}
	}
	return nil
}
