// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package raster renders PDF pages to images. The MuPDF renderer lives in
// the fitz subpackage; this package holds the interface, the pdftoppm
// fallback and image encoding helpers.
package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/sirupsen/logrus"
)

// JPEGQuality is used whenever pages are written as JPEG.
const JPEGQuality = 95

// PageFunc receives each rendered page, numbered from 1. Returning an error
// stops rendering.
type PageFunc func(page int, img image.Image) error

// Renderer rasterises every page of a PDF in order.
type Renderer interface {
	Name() string
	Render(ctx context.Context, pdfPath string, dpi int, fn PageFunc) error
}

// Chain tries renderers in order until one succeeds. A renderer that fails
// after pages were delivered is not retried, so callers never see a page
// twice.
type Chain struct {
	Renderers []Renderer
	Log       logrus.FieldLogger
}

// Name implements Renderer.
func (c *Chain) Name() string {
	names := make([]string, 0, len(c.Renderers))
	for _, r := range c.Renderers {
		names = append(names, r.Name())
	}
	return strings.Join(names, "→")
}

// Render implements Renderer.
func (c *Chain) Render(ctx context.Context, pdfPath string, dpi int, fn PageFunc) error {
	if len(c.Renderers) == 0 {
		return errors.New("no page renderer configured")
	}
	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	var lastErr error
	for _, r := range c.Renderers {
		delivered := false
		err := r.Render(ctx, pdfPath, dpi, func(page int, img image.Image) error {
			delivered = true
			return fn(page, img)
		})
		if err == nil {
			return nil
		}
		if delivered || ctx.Err() != nil {
			return err
		}
		log.WithError(err).WithField("renderer", r.Name()).Warn("page renderer failed, trying next")
		lastErr = err
	}
	return lastErr
}

// Encode writes img as PNG or JPEG according to format ("png", "jpg" or
// "jpeg").
func Encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding png: %w", err)
		}
	case "jpg", "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("encoding jpeg: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	return buf.Bytes(), nil
}
