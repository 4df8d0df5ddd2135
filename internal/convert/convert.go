// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert routes a file conversion to the backend registered for
// its (source, target) extension pair.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/file-converter/pkg/types"
)

var (
	ErrUnsupported   = errors.New("unsupported conversion")
	ErrInputNotFound = errors.New("input file not found")
	ErrNoExtension   = errors.New("output file has no extension")
	ErrOutputMissing = errors.New("conversion reported success but output file is missing")
	ErrInvalidMode   = errors.New("invalid mode")
	ErrNoBackend     = errors.New("conversion backend not available")
)

func errNoBackend(route string) error {
	return fmt.Errorf("%w: %s", ErrNoBackend, route)
}

// PDFDocx converts PDF to DOCX in a named mode.
type PDFDocx interface {
	Convert(ctx context.Context, input, output, mode string) (string, error)
}

// DocxPDF converts DOCX to PDF with a named method.
type DocxPDF interface {
	Convert(ctx context.Context, input, output, method string) (string, error)
}

// Images rasterises PDFs and wraps images in PDFs.
type Images interface {
	PDFToImages(ctx context.Context, input, output string) (string, error)
	ImageToPDF(ctx context.Context, input, output, mode string) (string, error)
}

// Sheets converts between CSV and XLSX.
type Sheets interface {
	CSVToXLSX(ctx context.Context, input, output, mode string) (string, error)
	XLSXToCSV(input, output string) (string, error)
}

// Markup converts between Markdown, HTML and PDF.
type Markup interface {
	MarkdownToHTMLFile(input, output string) (string, error)
	HTMLToMarkdownFile(input, output string) (string, error)
	MarkdownToPDF(ctx context.Context, input, output string) (string, error)
	HTMLToPDF(ctx context.Context, input, output, method string) (string, error)
}

// Office runs LibreOffice conversions. format is the target extension.
type Office interface {
	Convert(ctx context.Context, input, output, format string) (string, error)
}

// LayoutSource extracts a positioned layout from a PDF.
type LayoutSource interface {
	Extract(ctx context.Context, path string) (*types.Layout, error)
}

// Recorder stores conversion outcomes.
type Recorder interface {
	Record(ctx context.Context, rec types.ConversionRecord) error
}

// Backends holds the converters a Router dispatches to. A nil backend makes
// its routes fail with ErrNoBackend.
type Backends struct {
	PDFDocx PDFDocx
	DocxPDF DocxPDF
	Images  Images
	Sheets  Sheets
	Markup  Markup
	Office  Office
	Layout  LayoutSource
}

// Options tune a single conversion.
type Options struct {
	// Mode is passed to routes that take a mode (pdf→docx, image→pdf,
	// csv→xlsx).
	Mode string
	// Method is passed to routes that take a method (docx→pdf, html→pdf).
	Method string
	// Overwrite replaces existing outputs during batch conversion.
	Overwrite bool
}

// Result describes a completed conversion.
type Result struct {
	Input    string
	Output   string
	Mode     string
	Bytes    int64
	Duration time.Duration
}

// Size formats Bytes as KB below 1 MiB and MB above.
func (r Result) Size() string {
	return formatSize(r.Bytes)
}

// Router dispatches conversions.
type Router struct {
	b        Backends
	recorder Recorder
	log      logrus.FieldLogger
}

// NewRouter returns a Router. recorder may be nil.
func NewRouter(b Backends, recorder Recorder, log logrus.FieldLogger) *Router {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Router{b: b, recorder: recorder, log: log.WithField("component", "convert")}
}

// Convert converts input to output, choosing the backend from the two
// extensions.
func (r *Router) Convert(ctx context.Context, input, output string, opts Options) (Result, error) {
	start := time.Now()
	src := normalizeExt(filepath.Ext(input))
	dst := normalizeExt(filepath.Ext(output))
	rec := types.ConversionRecord{Input: input, Output: output, SourceExt: src, TargetExt: dst}

	res, err := r.convert(ctx, input, output, src, dst, opts, &rec)
	res.Duration = time.Since(start)
	rec.Duration = res.Duration
	if err != nil {
		rec.Status = types.ConversionFailed
		rec.Error = err.Error()
	} else {
		rec.Status = types.ConversionDone
		rec.Output = res.Output
		rec.Bytes = res.Bytes
	}
	r.record(ctx, rec)
	if err != nil {
		return res, err
	}

	r.log.WithFields(logrus.Fields{
		"input":    input,
		"output":   res.Output,
		"size":     res.Size(),
		"duration": res.Duration.Round(time.Millisecond),
	}).Info("conversion complete")
	return res, nil
}

func (r *Router) convert(ctx context.Context, input, output, src, dst string, opts Options, rec *types.ConversionRecord) (Result, error) {
	res := Result{Input: input}
	info, err := os.Stat(input)
	if err != nil || info.IsDir() {
		return res, fmt.Errorf("%w: %s", ErrInputNotFound, input)
	}
	if dst == "" {
		return res, fmt.Errorf("%w: %s", ErrNoExtension, output)
	}
	rt, ok := lookup(src, dst)
	if !ok {
		return res, fmt.Errorf("%w: %s → %s\n\nSupported conversions:\n%s",
			ErrUnsupported, strings.ToUpper(src), strings.ToUpper(dst), supportedList())
	}

	var param string
	switch rt.param {
	case paramMode:
		param = opts.Mode
	case paramMethod:
		param = opts.Method
	}
	if param == "" {
		param = DefaultMode(src, dst)
	}
	res.Mode = param
	rec.Mode = param

	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return res, fmt.Errorf("creating output directory: %w", err)
		}
	}

	r.log.WithFields(logrus.Fields{"input": input, "route": src + "→" + dst, "mode": param}).Debug("converting")
	out, err := rt.run(r, ctx, input, output, dst, param)
	if err != nil {
		return res, err
	}
	if out == "" {
		out = output
	}
	info, err = os.Stat(out)
	if err != nil {
		return res, fmt.Errorf("%w: %s", ErrOutputMissing, out)
	}
	res.Output = out
	res.Bytes = info.Size()
	return res, nil
}

func (r *Router) record(ctx context.Context, rec types.ConversionRecord) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Record(ctx, rec); err != nil {
		r.log.WithError(err).Warn("recording conversion history")
	}
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the number of inputs processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any input failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertBatch converts each input to targetExt inside outDir, printing
// per-file status to w. Existing outputs are skipped unless
// opts.Overwrite is set.
func (r *Router) ConvertBatch(ctx context.Context, inputs []string, targetExt, outDir string, opts Options, w io.Writer) BatchResult {
	var result BatchResult
	target := normalizeExt(targetExt)
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			fmt.Fprintf(w, "failed: creating %s (%v)\n", outDir, err)
			result.Failed = len(inputs)
			return result
		}
	}
	for _, in := range inputs {
		if ctx.Err() != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", in, ctx.Err())
			result.Failed++
			continue
		}
		out := OutputPath(in, target, outDir)
		base := filepath.Base(in)
		if !opts.Overwrite {
			if _, err := os.Stat(out); err == nil {
				fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
				r.record(ctx, types.ConversionRecord{
					Input: in, Output: out, SourceExt: normalizeExt(filepath.Ext(in)), TargetExt: target,
					Status: types.ConversionSkipped,
				})
				result.Skipped++
				continue
			}
		}
		res, err := r.Convert(ctx, in, out, opts)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", base, firstLine(err))
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "converted: %s → %s (%s)\n", base, res.Output, res.Size())
		result.Converted++
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// OutputPath picks the output for input. An existing directory yields
// dir/<stem>.<target>; any other non-empty output is used as given; an empty
// output replaces the input's extension.
func OutputPath(input, target, output string) string {
	target = normalizeExt(target)
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input)) + "." + target
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, stem+"."+target)
	}
	return output
}

func formatSize(n int64) string {
	const mib = 1024 * 1024
	if n < mib {
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	}
	return fmt.Sprintf("%.1f MB", float64(n)/mib)
}

func firstLine(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
