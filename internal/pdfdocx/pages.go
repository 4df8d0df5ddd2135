// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdocx

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/file-converter/internal/docx"
	"github.com/pdiddy/file-converter/internal/ocr"
	"github.com/pdiddy/file-converter/internal/raster"
	"github.com/pdiddy/file-converter/pkg/types"
)

// ocr rasterises each page and writes one paragraph per recognised text
// block, with a page break between pages.
func (c *Converter) ocr(ctx context.Context, input, output string, log logrus.FieldLogger) error {
	if c.b.OCR == nil {
		return errors.New("OCR conversion requires tesseract")
	}
	if c.b.Renderer == nil {
		return errors.New("OCR conversion requires a page renderer")
	}

	doc := docx.New()
	normal := docx.DefaultFormat(types.StyleNormal)
	pages := 0
	err := c.b.Renderer.Render(ctx, input, c.render.OCRDPI, func(page int, img image.Image) error {
		plog := log.WithField("page", page)
		plog.Info("OCR processing page")
		if page > 1 {
			doc.AddPageBreak()
		}
		pages++

		data, err := raster.Encode(img, "png")
		if err != nil {
			return err
		}
		words, err := c.b.OCR.Words(ctx, data)
		if err != nil {
			plog.WithError(err).Warn("detailed OCR failed, using simple extraction")
			text, err := c.b.OCR.Text(ctx, data)
			if err != nil {
				return fmt.Errorf("OCR page %d: %w", page, err)
			}
			doc.AddParagraph(text, types.StyleNormal, normal)
			return nil
		}
		for _, p := range ocr.Paragraphs(words, c.render.MinOCRConfidence) {
			doc.AddParagraph(p, types.StyleNormal, normal)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("OCR conversion: %w", err)
	}
	if err := doc.Save(output); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"pages": pages, "paragraphs": doc.Paragraphs()}).Info("OCR conversion complete")
	return nil
}

// images embeds every page as a picture for an exact visual copy.
func (c *Converter) images(ctx context.Context, input, output string, log logrus.FieldLogger) error {
	if c.b.Renderer == nil {
		return errors.New("image conversion requires a page renderer")
	}

	doc := docx.New()
	pages := 0
	err := c.b.Renderer.Render(ctx, input, c.render.ImageDPI, func(page int, img image.Image) error {
		log.WithField("page", page).Info("embedding page")
		if page > 1 {
			doc.AddPageBreak()
		}
		pages++
		data, err := raster.Encode(img, "png")
		if err != nil {
			return err
		}
		return doc.AddPicture(data, pageWidthInches)
	})
	if err != nil {
		return fmt.Errorf("image conversion: %w", err)
	}
	if err := doc.Save(output); err != nil {
		return err
	}
	log.WithField("pages", pages).Info("image-based conversion complete")
	return nil
}
