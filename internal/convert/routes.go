// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pdiddy/file-converter/internal/docpdf"
	"github.com/pdiddy/file-converter/internal/imaging"
	"github.com/pdiddy/file-converter/internal/layout"
	"github.com/pdiddy/file-converter/internal/markup"
	"github.com/pdiddy/file-converter/internal/pdfdocx"
	"github.com/pdiddy/file-converter/internal/sheet"
)

// paramKind says which Options field a route consumes.
type paramKind int

const (
	paramNone paramKind = iota
	paramMode
	paramMethod
)

// handler runs one route and returns the path it wrote.
type handler func(r *Router, ctx context.Context, input, output, target, param string) (string, error)

type route struct {
	param       paramKind
	modes       []string
	defaultMode string
	run         handler
}

type routeKey struct{ src, dst string }

var (
	imageModes = []string{imaging.ModeBasic, imaging.ModeAI}
	sheetModes = []string{sheet.ModeBasic, sheet.ModeAI}
	docxMethod = []string{docpdf.MethodAuto, docpdf.MethodLibreOffice, docpdf.MethodDocx2PDF}
	htmlMethod = []string{markup.MethodAuto, markup.MethodChromium, markup.MethodLibreOffice}
)

var routes = buildRoutes()

func buildRoutes() map[routeKey]route {
	m := make(map[routeKey]route)
	add := func(srcs, dsts []string, rt route) {
		for _, s := range srcs {
			for _, d := range dsts {
				m[routeKey{s, d}] = rt
			}
		}
	}

	add([]string{"pdf"}, []string{"docx"}, route{param: paramMode, modes: pdfdocx.Modes, defaultMode: pdfdocx.ModeHybrid, run: runPDFToDocx})
	add([]string{"pdf"}, []string{"png", "jpg", "jpeg"}, route{run: runPDFToImages})
	add([]string{"pdf"}, []string{"md"}, route{run: runPDFToMarkdown})
	add([]string{"docx"}, []string{"pdf"}, route{param: paramMethod, modes: docxMethod, defaultMode: docpdf.MethodAuto, run: runDocxToPDF})
	add([]string{"jpg", "jpeg", "png", "bmp", "tiff", "webp"}, []string{"pdf"}, route{param: paramMode, modes: imageModes, run: runImageToPDF})
	add([]string{"csv"}, []string{"xlsx"}, route{param: paramMode, modes: sheetModes, run: runCSVToXLSX})
	add([]string{"xlsx"}, []string{"csv"}, route{run: runXLSXToCSV})
	add([]string{"md"}, []string{"html"}, route{run: runMarkdownToHTML})
	add([]string{"md"}, []string{"pdf"}, route{run: runMarkdownToPDF})
	add([]string{"html"}, []string{"md"}, route{run: runHTMLToMarkdown})
	add([]string{"html"}, []string{"pdf"}, route{param: paramMethod, modes: htmlMethod, defaultMode: markup.MethodAuto, run: runHTMLToPDF})

	office := route{run: runOffice}
	add([]string{"doc", "odt", "rtf"}, []string{"pdf", "docx"}, office)
	add([]string{"xls", "ods"}, []string{"pdf", "xlsx"}, office)
	add([]string{"xlsx"}, []string{"pdf"}, office)
	add([]string{"ppt"}, []string{"pdf", "pptx"}, office)
	add([]string{"pptx", "odp"}, []string{"pdf"}, office)
	add([]string{"html"}, []string{"docx"}, office)
	add([]string{"txt"}, []string{"pdf"}, office)
	return m
}

func lookup(src, dst string) (route, bool) {
	rt, ok := routes[routeKey{normalizeExt(src), normalizeExt(dst)}]
	return rt, ok
}

// normalizeExt lower-cases ext and drops a leading dot.
func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// SupportedConversions maps each source extension to its sorted targets.
func SupportedConversions() map[string][]string {
	out := make(map[string][]string)
	for k := range routes {
		out[k.src] = append(out[k.src], k.dst)
	}
	for _, targets := range out {
		sort.Strings(targets)
	}
	return out
}

// IsSupported reports whether src→dst has a route. Case and a leading dot
// are ignored.
func IsSupported(src, dst string) bool {
	_, ok := lookup(src, dst)
	return ok
}

// AvailableModes returns the modes or methods accepted by src→dst, or nil.
func AvailableModes(src, dst string) []string {
	rt, ok := lookup(src, dst)
	if !ok || len(rt.modes) == 0 {
		return nil
	}
	return append([]string(nil), rt.modes...)
}

// DefaultMode returns the mode used when none is given, or "" when the
// route takes no mode.
func DefaultMode(src, dst string) string {
	rt, ok := lookup(src, dst)
	if !ok || len(rt.modes) == 0 {
		return ""
	}
	if rt.defaultMode != "" {
		return rt.defaultMode
	}
	return rt.modes[0]
}

// ValidateMode returns ErrInvalidMode when mode is set and not accepted by
// src→dst. Callers treat it as a warning.
func ValidateMode(src, dst, mode string) error {
	if mode == "" {
		return nil
	}
	modes := AvailableModes(src, dst)
	for _, m := range modes {
		if m == mode {
			return nil
		}
	}
	if len(modes) == 0 {
		return fmt.Errorf("%w: %s→%s takes no mode, ignoring %q", ErrInvalidMode, normalizeExt(src), normalizeExt(dst), mode)
	}
	return fmt.Errorf("%w: %q for %s→%s (available: %s)", ErrInvalidMode, mode,
		normalizeExt(src), normalizeExt(dst), strings.Join(modes, ", "))
}

// ValidateOptions checks opts against the route src→dst: Mode must suit a
// mode route and Method a method route. A field the route does not read
// is reported as ignored. Callers treat the errors as warnings.
func ValidateOptions(src, dst string, opts Options) []error {
	rt, ok := lookup(src, dst)
	if !ok {
		return nil
	}
	route := normalizeExt(src) + "→" + normalizeExt(dst)
	var errs []error
	check := func(flag, value string, kind paramKind) {
		if value == "" {
			return
		}
		if rt.param != kind {
			errs = append(errs, fmt.Errorf("%w: --%s %q is ignored for %s%s", ErrInvalidMode, flag, value, route, paramHint(rt.param)))
			return
		}
		if err := ValidateMode(src, dst, value); err != nil {
			errs = append(errs, err)
		}
	}
	check("mode", opts.Mode, paramMode)
	check("method", opts.Method, paramMethod)
	return errs
}

func paramHint(kind paramKind) string {
	switch kind {
	case paramMode:
		return ", which takes --mode"
	case paramMethod:
		return ", which takes --method"
	}
	return ""
}

// supportedList formats the routing table one source per line, upper case.
func supportedList() string {
	conv := SupportedConversions()
	srcs := make([]string, 0, len(conv))
	for s := range conv {
		srcs = append(srcs, s)
	}
	sort.Strings(srcs)

	var b strings.Builder
	for _, s := range srcs {
		fmt.Fprintf(&b, "  %s → %s\n", strings.ToUpper(s), strings.ToUpper(strings.Join(conv[s], ", ")))
	}
	return b.String()
}

func runPDFToDocx(r *Router, ctx context.Context, input, output, _, mode string) (string, error) {
	if r.b.PDFDocx == nil {
		return "", errNoBackend("pdf→docx")
	}
	return r.b.PDFDocx.Convert(ctx, input, output, mode)
}

func runPDFToImages(r *Router, ctx context.Context, input, output, _, _ string) (string, error) {
	if r.b.Images == nil {
		return "", errNoBackend("pdf→image")
	}
	return r.b.Images.PDFToImages(ctx, input, output)
}

func runPDFToMarkdown(r *Router, ctx context.Context, input, output, _, _ string) (string, error) {
	if r.b.Layout == nil {
		return "", errNoBackend("pdf→md")
	}
	l, err := r.b.Layout.Extract(ctx, input)
	if err != nil {
		return "", fmt.Errorf("extracting layout: %w", err)
	}
	if err := os.WriteFile(output, []byte(layout.RenderMarkdown(l)), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", output, err)
	}
	return output, nil
}

func runDocxToPDF(r *Router, ctx context.Context, input, output, _, method string) (string, error) {
	if r.b.DocxPDF == nil {
		return "", errNoBackend("docx→pdf")
	}
	return r.b.DocxPDF.Convert(ctx, input, output, method)
}

func runImageToPDF(r *Router, ctx context.Context, input, output, _, mode string) (string, error) {
	if r.b.Images == nil {
		return "", errNoBackend("image→pdf")
	}
	return r.b.Images.ImageToPDF(ctx, input, output, mode)
}

func runCSVToXLSX(r *Router, ctx context.Context, input, output, _, mode string) (string, error) {
	if r.b.Sheets == nil {
		return "", errNoBackend("csv→xlsx")
	}
	return r.b.Sheets.CSVToXLSX(ctx, input, output, mode)
}

func runXLSXToCSV(r *Router, _ context.Context, input, output, _, _ string) (string, error) {
	if r.b.Sheets == nil {
		return "", errNoBackend("xlsx→csv")
	}
	return r.b.Sheets.XLSXToCSV(input, output)
}

func runMarkdownToHTML(r *Router, _ context.Context, input, output, _, _ string) (string, error) {
	if r.b.Markup == nil {
		return "", errNoBackend("md→html")
	}
	return r.b.Markup.MarkdownToHTMLFile(input, output)
}

func runMarkdownToPDF(r *Router, ctx context.Context, input, output, _, _ string) (string, error) {
	if r.b.Markup == nil {
		return "", errNoBackend("md→pdf")
	}
	return r.b.Markup.MarkdownToPDF(ctx, input, output)
}

func runHTMLToMarkdown(r *Router, _ context.Context, input, output, _, _ string) (string, error) {
	if r.b.Markup == nil {
		return "", errNoBackend("html→md")
	}
	return r.b.Markup.HTMLToMarkdownFile(input, output)
}

func runHTMLToPDF(r *Router, ctx context.Context, input, output, _, method string) (string, error) {
	if r.b.Markup == nil {
		return "", errNoBackend("html→pdf")
	}
	return r.b.Markup.HTMLToPDF(ctx, input, output, method)
}

func runOffice(r *Router, ctx context.Context, input, output, target, _ string) (string, error) {
	if r.b.Office == nil {
		return "", fmt.Errorf("%w: LibreOffice is required for this conversion", ErrNoBackend)
	}
	return r.b.Office.Convert(ctx, input, output, target)
}
