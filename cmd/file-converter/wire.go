// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/file-converter/internal/ai"
	"github.com/pdiddy/file-converter/internal/browser"
	"github.com/pdiddy/file-converter/internal/convert"
	"github.com/pdiddy/file-converter/internal/docpdf"
	"github.com/pdiddy/file-converter/internal/history"
	"github.com/pdiddy/file-converter/internal/imaging"
	"github.com/pdiddy/file-converter/internal/layout"
	"github.com/pdiddy/file-converter/internal/markup"
	"github.com/pdiddy/file-converter/internal/ocr/tesseract"
	"github.com/pdiddy/file-converter/internal/office"
	"github.com/pdiddy/file-converter/internal/pdfdocx"
	"github.com/pdiddy/file-converter/internal/privacy"
	"github.com/pdiddy/file-converter/internal/raster"
	"github.com/pdiddy/file-converter/internal/raster/fitz"
	"github.com/pdiddy/file-converter/internal/sheet"
	"github.com/pdiddy/file-converter/pkg/types"
)

// app holds the wired converters for one CLI invocation.
type app struct {
	router *convert.Router
	store  *history.Store
}

func (a *app) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// newReconstructor returns the AI reconstructor, or nil when no API key is
// configured.
func newReconstructor(cfg types.AIConfig, log logrus.FieldLogger) (*ai.Reconstructor, error) {
	backend, err := ai.NewGroqBackend(cfg)
	if err != nil {
		return nil, err
	}
	return ai.NewReconstructor(backend, cfg, log), nil
}

func openHistory(cfg types.HistoryConfig, log logrus.FieldLogger) *history.Store {
	if !cfg.Enabled {
		return nil
	}
	store, err := history.NewStore(cfg)
	if err != nil {
		log.WithError(err).Warn("conversion history disabled")
		return nil
	}
	return store
}

// newApp wires every backend. Missing optional tools (LibreOffice, a
// browser, an API key) leave their routes returning descriptive errors.
func newApp(ctx context.Context, cfg types.ConverterConfig, log logrus.FieldLogger) *app {
	a := &app{store: openHistory(cfg.History, log)}

	var b convert.Backends
	extractor := layout.NewExtractor(log)
	b.Layout = extractor

	renderer := &raster.Chain{Renderers: []raster.Renderer{fitz.New(), raster.NewPoppler()}, Log: log}
	printer := browser.NewPrinter(cfg.Render, log)
	gate := privacy.NewGate(privacy.NewTerminalPrompter(), cfg.Privacy.AllowSensitive, log)

	var auditStore privacy.AuditRecorder
	if a.store != nil {
		auditStore = a.store
	}
	auditor := privacy.NewAuditor(cfg.Privacy, auditStore, log)

	pdfBackends := pdfdocx.Backends{
		Layout:   extractor,
		Gate:     gate,
		Auditor:  auditor,
		OCR:      tesseract.New(cfg.Render.OCRLanguage),
		Renderer: renderer,
	}

	officeConv, err := office.New(ctx, cfg.Office, log)
	switch {
	case err == nil:
		b.Office = officeConv
		pdfBackends.Office = officeConv
		log.WithField("backend", officeConv.Describe()).Debug("LibreOffice available")
	case errors.Is(err, office.ErrNotFound):
		log.Debug("LibreOffice not found; office routes disabled")
	default:
		log.WithError(err).Warn("LibreOffice unavailable")
	}

	recon, err := newReconstructor(cfg.AI, log)
	if err != nil {
		log.WithError(err).Debug("AI features disabled")
	}

	var (
		imageAI imaging.Suggester
		sheetAI sheet.Suggester
	)
	if recon != nil {
		pdfBackends.AI = recon
		imageAI = recon
		sheetAI = recon
	}

	b.PDFDocx = pdfdocx.NewConverter(pdfBackends, cfg.Render, cfg.Privacy, log)
	b.Images = imaging.NewConverter(renderer, imageAI, cfg.Render.ImageDPI, log)
	b.Sheets = sheet.NewConverter(sheetAI, gate, log)

	var (
		docOffice    docpdf.Office
		markupOffice markup.Office
	)
	if b.Office != nil {
		docOffice = officeConv
		markupOffice = officeConv
	}
	b.DocxPDF = docpdf.NewConverter(docOffice, printer, log)
	b.Markup = markup.NewConverter(printer, markupOffice, log)

	var rec convert.Recorder
	if a.store != nil {
		rec = a.store
	}
	a.router = convert.NewRouter(b, rec, log)
	return a
}
