// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdocx converts PDFs to Word documents. Text PDFs are rebuilt
// from their layout, scanned PDFs through OCR, and the AI modes send the
// layout to the LLM for structural cleanup before the DOCX is written.
package pdfdocx

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/file-converter/internal/ai"
	"github.com/pdiddy/file-converter/internal/layout"
	"github.com/pdiddy/file-converter/internal/ocr"
	"github.com/pdiddy/file-converter/internal/privacy"
	"github.com/pdiddy/file-converter/internal/raster"
	"github.com/pdiddy/file-converter/pkg/types"
)

// Conversion modes.
const (
	ModeAuto        = "auto"
	ModeText        = "text"
	ModeOCR         = "ocr"
	ModeImage       = "image"
	ModeGroq        = "groq"
	ModeHybrid      = "hybrid"
	ModeLibreOffice = "libreoffice"
)

// Modes lists every mode in the order shown to users.
var Modes = []string{ModeAuto, ModeText, ModeOCR, ModeImage, ModeGroq, ModeHybrid, ModeLibreOffice}

const (
	defaultOCRDPI   = 300
	defaultImageDPI = 200
	pageWidthInches = 6.5
)

// LayoutSource reads positioned text from a PDF.
type LayoutSource interface {
	Extract(ctx context.Context, path string) (*types.Layout, error)
	Lines(ctx context.Context, path string) ([]layout.PageLines, error)
	Analyze(ctx context.Context, path string) types.PDFAnalysis
}

// Reconstructor sends a layout to the AI service.
type Reconstructor interface {
	Reconstruct(ctx context.Context, l *types.Layout, pass ai.Pass) (types.Reconstruction, error)
}

// Gate decides whether sensitive content may leave the machine.
type Gate interface {
	Check(r privacy.Report) (privacy.Decision, error)
}

// Auditor records AI payloads.
type Auditor interface {
	Record(ctx context.Context, l *types.Layout) error
}

// Office imports PDFs with LibreOffice.
type Office interface {
	ImportPDF(ctx context.Context, input, output string) (string, error)
}

// Backends are the collaborators a Converter uses. Only Layout is
// required; modes whose backend is missing fail with a descriptive error,
// and the text mode skips its LibreOffice fallback.
type Backends struct {
	Layout   LayoutSource
	AI       Reconstructor
	Gate     Gate
	Auditor  Auditor
	OCR      ocr.Engine
	Renderer raster.Renderer
	Office   Office
}

// Converter runs PDF→DOCX conversions.
type Converter struct {
	b       Backends
	render  types.RenderConfig
	privacy types.PrivacyConfig
	log     logrus.FieldLogger
}

// NewConverter returns a Converter. Zero render settings take the
// defaults: 300 dpi for OCR, 200 dpi for image mode and a minimum OCR
// confidence of 30.
func NewConverter(b Backends, render types.RenderConfig, priv types.PrivacyConfig, log logrus.FieldLogger) *Converter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if b.Layout == nil {
		b.Layout = layout.NewExtractor(log)
	}
	if render.OCRDPI <= 0 {
		render.OCRDPI = defaultOCRDPI
	}
	if render.ImageDPI <= 0 {
		render.ImageDPI = defaultImageDPI
	}
	if render.MinOCRConfidence <= 0 {
		render.MinOCRConfidence = ocr.MinConfidence
	}
	return &Converter{b: b, render: render, privacy: priv, log: log.WithField("component", "pdfdocx")}
}

// Convert writes input as a DOCX at output using mode and returns the
// output path.
func (c *Converter) Convert(ctx context.Context, input, output, mode string) (string, error) {
	if mode == "" {
		mode = ModeAuto
	}
	log := c.log.WithFields(logrus.Fields{"input": input, "mode": mode})

	var err error
	switch mode {
	case ModeAuto:
		err = c.auto(ctx, input, output, log)
	case ModeText:
		err = c.text(ctx, input, output, log)
	case ModeOCR:
		err = c.ocr(ctx, input, output, log)
	case ModeImage:
		err = c.images(ctx, input, output, log)
	case ModeGroq:
		err = c.groq(ctx, input, output, log)
	case ModeHybrid:
		err = c.hybrid(ctx, input, output, log)
	case ModeLibreOffice:
		err = c.libreOffice(ctx, input, output)
	default:
		return "", fmt.Errorf("unknown mode %q (valid: %s)", mode, strings.Join(Modes, ", "))
	}
	if err != nil {
		return "", err
	}
	return output, nil
}

// auto routes by page content. Mixed documents follow their majority page
// type; a tie goes to OCR.
func (c *Converter) auto(ctx context.Context, input, output string, log logrus.FieldLogger) error {
	a := c.b.Layout.Analyze(ctx, input)
	log = log.WithFields(logrus.Fields{
		"kind":        a.Kind,
		"pages":       a.TotalPages,
		"text_pages":  a.TextPages,
		"image_pages": a.ImagePages,
	})

	useText := a.Kind == types.DocumentText ||
		(a.Kind == types.DocumentHybrid && a.TextPages > a.ImagePages)
	if useText {
		log.Info("using text-based conversion")
		return c.text(ctx, input, output, log)
	}
	log.Info("using OCR conversion")
	return c.ocr(ctx, input, output, log)
}

func (c *Converter) libreOffice(ctx context.Context, input, output string) error {
	if c.b.Office == nil {
		return fmt.Errorf("libreoffice mode: LibreOffice not available")
	}
	_, err := c.b.Office.ImportPDF(ctx, input, output)
	return err
}
