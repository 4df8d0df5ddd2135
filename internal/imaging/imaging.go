// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imaging converts PDF pages to image files and single images to
// one-page PDFs.
package imaging

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp" // register decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/pdiddy/file-converter/internal/ai"
	"github.com/pdiddy/file-converter/internal/raster"
)

// Image→PDF modes.
const (
	ModeBasic = "basic"
	ModeAI    = "ai"
)

const (
	// DefaultPageDPI is the rasterisation resolution for pdf→image.
	DefaultPageDPI = 200

	basicDPI      = 100
	aiDefaultDPI  = 150
	suggestTokens = 1000
)

// Suggester asks the AI service for conversion settings.
type Suggester interface {
	Suggest(ctx context.Context, system, user string, maxTokens int) (map[string]any, error)
}

// Converter runs the image conversions.
type Converter struct {
	renderer raster.Renderer
	ai       Suggester
	dpi      int
	log      logrus.FieldLogger
}

// NewConverter returns a Converter. dpi is the page resolution for
// pdf→image (DefaultPageDPI when zero). ai may be nil.
func NewConverter(renderer raster.Renderer, ai Suggester, dpi int, log logrus.FieldLogger) *Converter {
	if dpi <= 0 {
		dpi = DefaultPageDPI
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Converter{renderer: renderer, ai: ai, dpi: dpi, log: log.WithField("component", "imaging")}
}

// PDFToImages writes every page of input as <stem>_page_<n>.<ext>. When
// output has an extension its directory receives the pages and the
// extension picks the format; otherwise output is the directory and pages
// are PNG. The first page's path is returned.
func (c *Converter) PDFToImages(ctx context.Context, input, output string) (string, error) {
	if c.renderer == nil {
		return "", fmt.Errorf("no page renderer configured")
	}
	dir, format := output, "png"
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), "."); ext != "" {
		dir, format = filepath.Dir(output), ext
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	log := c.log.WithFields(logrus.Fields{"input": input, "renderer": c.renderer.Name()})

	var first string
	err := c.renderer.Render(ctx, input, c.dpi, func(page int, img image.Image) error {
		data, err := raster.Encode(img, format)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_page_%d.%s", base, page, format))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if first == "" {
			first = path
		}
		log.WithField("page", page).Debug("wrote page image")
		return nil
	})
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", fmt.Errorf("%s has no pages", filepath.Base(input))
	}
	return first, nil
}

// ImageToPDF embeds input as a single page. basic uses 100 dpi; ai asks
// the model for a resolution and defaults to 150.
func (c *Converter) ImageToPDF(ctx context.Context, input, output, mode string) (string, error) {
	if mode == "" {
		mode = ModeBasic
	}
	log := c.log.WithFields(logrus.Fields{"input": input, "mode": mode})

	var dpi int
	switch mode {
	case ModeBasic:
		dpi = basicDPI
	case ModeAI:
		dpi = c.suggestDPI(ctx, input, log)
	default:
		return "", fmt.Errorf("unknown mode %q (valid: basic, ai)", mode)
	}

	img, _, err := decodeFile(input)
	if err != nil {
		return "", err
	}
	page, err := raster.Encode(flatten(img), "jpg")
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "file-converter-*.jpg")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(page); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	// ImportImagesFile appends to an existing PDF.
	if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
		return "", err
	}
	imp, err := api.Import(fmt.Sprintf("pos:full, dpi:%d", dpi), types.POINTS)
	if err != nil {
		return "", fmt.Errorf("import settings: %w", err)
	}
	if err := api.ImportImagesFile([]string{tmp.Name()}, output, imp, nil); err != nil {
		return "", fmt.Errorf("building PDF: %w", err)
	}
	log.WithField("dpi", dpi).Info("conversion complete")
	return output, nil
}

// PageCount returns the number of pages in a PDF.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("counting pages of %s: %w", filepath.Base(path), err)
	}
	return n, nil
}

// Metadata describes an image for the AI prompt.
type Metadata struct {
	Format      string  `json:"format"`
	Mode        string  `json:"mode"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	FileSizeKB  float64 `json:"file_size_kb"`
}

// ReadMetadata decodes the header of an image file.
func ReadMetadata(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, err
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Metadata{}, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	info, err := f.Stat()
	if err != nil {
		return Metadata{}, err
	}
	m := Metadata{
		Format:      strings.ToUpper(format),
		Mode:        colorMode(cfg.ColorModel),
		Width:       cfg.Width,
		Height:      cfg.Height,
		AspectRatio: 1,
		FileSizeKB:  round2(float64(info.Size()) / 1024),
	}
	if cfg.Height > 0 {
		m.AspectRatio = round2(float64(cfg.Width) / float64(cfg.Height))
	}
	return m, nil
}

func (c *Converter) suggestDPI(ctx context.Context, input string, log logrus.FieldLogger) int {
	if c.ai == nil {
		log.Warn("AI mode unavailable, using defaults")
		return aiDefaultDPI
	}
	meta, err := ReadMetadata(input)
	if err != nil {
		log.WithError(err).Warn("could not analyse image, using defaults")
		return aiDefaultDPI
	}
	log.WithFields(logrus.Fields{"width": meta.Width, "height": meta.Height, "format": meta.Format}).Info("analysed image")

	prompt, err := ai.ImagePrompt(meta)
	if err != nil {
		log.WithError(err).Warn("AI optimisation failed, using defaults")
		return aiDefaultDPI
	}
	settings, err := c.ai.Suggest(ctx, ai.ImageLayoutSystemPrompt, prompt, suggestTokens)
	if err != nil {
		log.WithError(err).Warn("AI optimisation failed, using defaults")
		return aiDefaultDPI
	}
	return dpiSetting(settings)
}

// dpiSetting reads a positive dpi from the suggestions, falling back to
// the ai default for missing or absurd values.
func dpiSetting(settings map[string]any) int {
	v, ok := settings["dpi"].(float64)
	if !ok || v < 36 || v > 1200 {
		return aiDefaultDPI
	}
	return int(math.Round(v))
}

func decodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return img, format, nil
}

// flatten composites img onto a white background, dropping alpha.
func flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
