// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package browser prints HTML to PDF with a headless Chromium driven over
// the DevTools protocol.
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/file-converter/pkg/types"
)

// DefaultTimeout bounds one print job, browser start-up included.
const DefaultTimeout = 60 * time.Second

// US Letter with 0.4in margins.
const (
	paperWidth  = 8.5
	paperHeight = 11.0
	margin      = 0.4
)

// Printer prints local HTML files to PDF. The browser is located on first
// use and started per job; the CLI converts one document at a time.
type Printer struct {
	cfg      types.RenderConfig
	execPath string
	timeout  time.Duration
	log      logrus.FieldLogger
}

// NewPrinter returns a Printer that finds its browser with Resolve(cfg).
func NewPrinter(cfg types.RenderConfig, log logrus.FieldLogger) *Printer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Printer{
		cfg:     cfg,
		timeout: DefaultTimeout,
		log:     log.WithField("component", "browser"),
	}
}

// Available reports whether a browser can be resolved.
func (p *Printer) Available() bool {
	return p.resolve() == nil
}

func (p *Printer) resolve() error {
	if p.execPath != "" {
		return nil
	}
	path, err := Resolve(p.cfg)
	if err != nil {
		return err
	}
	p.execPath = path
	p.log.WithField("browser", path).Debug("browser resolved")
	return nil
}

// PrintFile renders the HTML file at htmlPath and writes the PDF to outPDF.
func (p *Printer) PrintFile(ctx context.Context, htmlPath, outPDF string) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return err
	}
	if err := p.resolve(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", true),
	)
	opts = append(opts, chromedp.ExecPath(p.execPath))
	if os.Geteuid() == 0 {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	var buf []byte
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate("file://"+filepath.ToSlash(abs)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(margin).
				WithMarginRight(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithPrintBackground(true).
				Do(ctx)
			return err
		}),
	); err != nil {
		return fmt.Errorf("printing %s: %w", filepath.Base(htmlPath), err)
	}

	if err := os.MkdirAll(filepath.Dir(outPDF), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(outPDF, buf, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPDF, err)
	}
	p.log.WithFields(logrus.Fields{"input": filepath.Base(htmlPath), "bytes": len(buf)}).Info("printed to PDF")
	return nil
}

// PrintHTML writes html to a temporary file next to outPDF and prints it.
// Relative links in html resolve against baseDir when it is set.
func (p *Printer) PrintHTML(ctx context.Context, html, baseDir, outPDF string) error {
	dir := baseDir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, ".file-converter-*.html")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	return p.PrintFile(ctx, name, outPDF)
}
