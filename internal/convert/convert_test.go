// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/file-converter/pkg/types"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeBackend implements every backend interface. Each call records its
// parameter and writes a small output file unless err or skipWrite is set.
type fakeBackend struct {
	err       error
	skipWrite bool
	calls     []string
	params    []string
}

func (f *fakeBackend) do(name, output, param string) (string, error) {
	f.calls = append(f.calls, name)
	f.params = append(f.params, param)
	if f.err != nil {
		return "", f.err
	}
	if !f.skipWrite {
		if err := os.WriteFile(output, []byte("converted"), 0o644); err != nil {
			return "", err
		}
	}
	return output, nil
}

func (f *fakeBackend) Convert(_ context.Context, _, output, param string) (string, error) {
	return f.do("convert", output, param)
}

func (f *fakeBackend) PDFToImages(_ context.Context, _, output string) (string, error) {
	return f.do("pdf-to-images", output, "")
}

func (f *fakeBackend) ImageToPDF(_ context.Context, _, output, mode string) (string, error) {
	return f.do("image-to-pdf", output, mode)
}

func (f *fakeBackend) CSVToXLSX(_ context.Context, _, output, mode string) (string, error) {
	return f.do("csv-to-xlsx", output, mode)
}

func (f *fakeBackend) XLSXToCSV(_, output string) (string, error) {
	return f.do("xlsx-to-csv", output, "")
}

func (f *fakeBackend) MarkdownToHTMLFile(_, output string) (string, error) {
	return f.do("md-to-html", output, "")
}

func (f *fakeBackend) HTMLToMarkdownFile(_, output string) (string, error) {
	return f.do("html-to-md", output, "")
}

func (f *fakeBackend) MarkdownToPDF(_ context.Context, _, output string) (string, error) {
	return f.do("md-to-pdf", output, "")
}

func (f *fakeBackend) HTMLToPDF(_ context.Context, _, output, method string) (string, error) {
	return f.do("html-to-pdf", output, method)
}

type fakeLayout struct{ err error }

func (f fakeLayout) Extract(context.Context, string) (*types.Layout, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.Layout{TotalPages: 1, Pages: []types.PageLayout{{
		Page: 1,
		Blocks: []types.Block{
			{Text: "Title", CleanText: "Title", Size: 20, IsPotentialHeading: true},
		},
	}}}, nil
}

type fakeRecorder struct{ recs []types.ConversionRecord }

func (f *fakeRecorder) Record(_ context.Context, rec types.ConversionRecord) error {
	f.recs = append(f.recs, rec)
	return nil
}

func writeInput(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("input"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func allBackends(f *fakeBackend) Backends {
	return Backends{PDFDocx: f, DocxPDF: f, Images: f, Sheets: f, Markup: f, Office: f, Layout: fakeLayout{}}
}

func TestSupportedConversions(t *testing.T) {
	conv := SupportedConversions()

	want := map[string][]string{
		"pdf":  {"docx", "jpeg", "jpg", "md", "png"},
		"html": {"docx", "md", "pdf"},
		"xlsx": {"csv", "pdf"},
		"ppt":  {"pdf", "pptx"},
		"webp": {"pdf"},
	}
	for src, targets := range want {
		if !reflect.DeepEqual(conv[src], targets) {
			t.Errorf("%s targets = %v, want %v", src, conv[src], targets)
		}
	}
	for src, targets := range conv {
		seen := map[string]bool{}
		for i, d := range targets {
			if seen[d] {
				t.Errorf("%s has duplicate target %s", src, d)
			}
			seen[d] = true
			if i > 0 && targets[i-1] > d {
				t.Errorf("%s targets not sorted: %v", src, targets)
			}
		}
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		src, dst string
		want     bool
	}{
		{"pdf", "docx", true},
		{".PDF", ".DOCX", true},
		{"docx", "pdf", true},
		{"TIFF", "pdf", true},
		{"odp", "pdf", true},
		{"pdf", "xlsx", false},
		{"txt", "docx", false},
		{"", "pdf", false},
	}
	for _, tt := range tests {
		if got := IsSupported(tt.src, tt.dst); got != tt.want {
			t.Errorf("IsSupported(%q, %q) = %v, want %v", tt.src, tt.dst, got, tt.want)
		}
	}
}

func TestModes(t *testing.T) {
	tests := []struct {
		src, dst    string
		wantModes   []string
		wantDefault string
	}{
		{"pdf", "docx", []string{"auto", "text", "ocr", "image", "groq", "hybrid", "libreoffice"}, "hybrid"},
		{"docx", "pdf", []string{"auto", "libreoffice", "docx2pdf"}, "auto"},
		{"png", "pdf", []string{"basic", "ai"}, "basic"},
		{"csv", "xlsx", []string{"basic", "ai"}, "basic"},
		{"html", "pdf", []string{"auto", "chromium", "libreoffice"}, "auto"},
		{"md", "html", nil, ""},
		{"pdf", "xlsx", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.src+"→"+tt.dst, func(t *testing.T) {
			if got := AvailableModes(tt.src, tt.dst); !reflect.DeepEqual(got, tt.wantModes) {
				t.Errorf("AvailableModes = %v, want %v", got, tt.wantModes)
			}
			if got := DefaultMode(tt.src, tt.dst); got != tt.wantDefault {
				t.Errorf("DefaultMode = %q, want %q", got, tt.wantDefault)
			}
		})
	}

	modes := AvailableModes("pdf", "docx")
	modes[0] = "mutated"
	if AvailableModes("pdf", "docx")[0] != "auto" {
		t.Error("AvailableModes must return a copy")
	}
}

func TestValidateMode(t *testing.T) {
	if err := ValidateMode("pdf", "docx", "ocr"); err != nil {
		t.Errorf("valid mode: %v", err)
	}
	if err := ValidateMode("pdf", "docx", ""); err != nil {
		t.Errorf("empty mode: %v", err)
	}
	err := ValidateMode("pdf", "docx", "magic")
	if !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("got %v, want ErrInvalidMode", err)
	}
	if !strings.Contains(err.Error(), "hybrid") {
		t.Errorf("error should list available modes: %v", err)
	}
	if err := ValidateMode("md", "html", "ai"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("mode on modeless route: got %v", err)
	}
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name     string
		src, dst string
		opts     Options
		want     []string
	}{
		{"valid mode", "pdf", "docx", Options{Mode: "ocr"}, nil},
		{"valid method", "docx", "pdf", Options{Method: "libreoffice"}, nil},
		{"mode on method route", "docx", "pdf", Options{Mode: "libreoffice"}, []string{`--mode "libreoffice" is ignored for docx→pdf, which takes --method`}},
		{"method on mode route", "pdf", "docx", Options{Method: "chromium"}, []string{`--method "chromium" is ignored for pdf→docx, which takes --mode`}},
		{"mode on plain route", "md", "html", Options{Mode: "ai"}, []string{`--mode "ai" is ignored for md→html`}},
		{"bad method", "html", "pdf", Options{Method: "word"}, []string{"available: auto, chromium, libreoffice"}},
		{"unknown route", "txt", "mp3", Options{Mode: "ai"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateOptions(tt.src, tt.dst, tt.opts)
			if len(errs) != len(tt.want) {
				t.Fatalf("got %v, want %d error(s)", errs, len(tt.want))
			}
			for i, err := range errs {
				if !errors.Is(err, ErrInvalidMode) {
					t.Errorf("error %d is not ErrInvalidMode: %v", i, err)
				}
				if !strings.Contains(err.Error(), tt.want[i]) {
					t.Errorf("error %q does not contain %q", err, tt.want[i])
				}
			}
		})
	}
}

func TestRouterConvertDispatch(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		output    string
		opts      Options
		wantCall  string
		wantParam string
	}{
		{"pdf to docx default mode", "a.pdf", "a.docx", Options{}, "convert", "hybrid"},
		{"pdf to docx explicit mode", "a.pdf", "a.docx", Options{Mode: "ocr", Method: "chromium"}, "convert", "ocr"},
		{"docx to pdf uses method", "a.docx", "a.pdf", Options{Mode: "ai", Method: "docx2pdf"}, "convert", "docx2pdf"},
		{"html to pdf default method", "a.html", "a.pdf", Options{}, "html-to-pdf", "auto"},
		{"image to pdf", "a.PNG", "a.pdf", Options{Mode: "ai"}, "image-to-pdf", "ai"},
		{"csv to xlsx default", "a.csv", "a.xlsx", Options{}, "csv-to-xlsx", "basic"},
		{"pdf to png ignores mode", "a.pdf", "a.png", Options{Mode: "ocr"}, "pdf-to-images", ""},
		{"xlsx to csv", "a.xlsx", "a.csv", Options{}, "xlsx-to-csv", ""},
		{"md to html", "a.md", "a.html", Options{}, "md-to-html", ""},
		{"md to pdf", "a.md", "a.pdf", Options{}, "md-to-pdf", ""},
		{"html to md", "a.html", "a.md", Options{}, "html-to-md", ""},
		{"office route gets target", "a.odt", "a.docx", Options{}, "convert", "docx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := writeInput(t, dir, tt.input)
			f := &fakeBackend{}
			r := NewRouter(allBackends(f), nil, quietLogger())

			res, err := r.Convert(context.Background(), in, filepath.Join(dir, "out", tt.output), tt.opts)
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if len(f.calls) != 1 || f.calls[0] != tt.wantCall {
				t.Fatalf("calls = %v, want [%s]", f.calls, tt.wantCall)
			}
			if f.params[0] != tt.wantParam {
				t.Errorf("param = %q, want %q", f.params[0], tt.wantParam)
			}
			if res.Bytes != int64(len("converted")) {
				t.Errorf("bytes = %d", res.Bytes)
			}
			if res.Size() != "0.0 KB" {
				t.Errorf("size = %q", res.Size())
			}
		})
	}
}

func TestRouterPDFToMarkdown(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "paper.pdf")
	r := NewRouter(Backends{Layout: fakeLayout{}}, nil, quietLogger())

	res, err := r.Convert(context.Background(), in, filepath.Join(dir, "paper.md"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(res.Output)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "<!-- page 1 -->\n\n# Title\n"; got != want {
		t.Errorf("markdown = %q, want %q", got, want)
	}

	r = NewRouter(Backends{Layout: fakeLayout{err: errors.New("bad xref")}}, nil, quietLogger())
	if _, err := r.Convert(context.Background(), in, filepath.Join(dir, "x.md"), Options{}); err == nil || !strings.Contains(err.Error(), "bad xref") {
		t.Errorf("got %v, want extraction error", err)
	}
}

func TestRouterConvertErrors(t *testing.T) {
	dir := t.TempDir()
	pdf := writeInput(t, dir, "a.pdf")
	ctx := context.Background()

	tests := []struct {
		name    string
		backend *fakeBackend
		input   string
		output  string
		wantErr error
		wantMsg string
	}{
		{"missing input", &fakeBackend{}, filepath.Join(dir, "nope.pdf"), "x.docx", ErrInputNotFound, ""},
		{"directory input", &fakeBackend{}, dir, "x.docx", ErrInputNotFound, ""},
		{"no extension", &fakeBackend{}, pdf, filepath.Join(dir, "out"), ErrNoExtension, ""},
		{"unsupported", &fakeBackend{}, pdf, filepath.Join(dir, "a.xlsx"), ErrUnsupported, "PDF → DOCX, JPEG, JPG, MD, PNG"},
		{"output missing", &fakeBackend{skipWrite: true}, pdf, filepath.Join(dir, "a.docx"), ErrOutputMissing, ""},
		{"backend error", &fakeBackend{err: errors.New("soffice crashed")}, pdf, filepath.Join(dir, "a.docx"), nil, "soffice crashed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(allBackends(tt.backend), nil, quietLogger())
			_, err := r.Convert(ctx, tt.input, tt.output, Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestRouterMissingBackend(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "a.doc")
	r := NewRouter(Backends{}, nil, quietLogger())
	_, err := r.Convert(context.Background(), in, filepath.Join(dir, "a.pdf"), Options{})
	if !errors.Is(err, ErrNoBackend) || !strings.Contains(err.Error(), "LibreOffice") {
		t.Errorf("got %v, want ErrNoBackend naming LibreOffice", err)
	}
}

func TestRouterRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "a.csv")
	rec := &fakeRecorder{}
	r := NewRouter(allBackends(&fakeBackend{}), rec, quietLogger())

	if _, err := r.Convert(context.Background(), in, filepath.Join(dir, "a.xlsx"), Options{Mode: "ai"}); err != nil {
		t.Fatal(err)
	}
	r = NewRouter(allBackends(&fakeBackend{err: errors.New("boom")}), rec, quietLogger())
	if _, err := r.Convert(context.Background(), in, filepath.Join(dir, "b.xlsx"), Options{}); err == nil {
		t.Fatal("expected error")
	}

	if len(rec.recs) != 2 {
		t.Fatalf("got %d records, want 2", len(rec.recs))
	}
	ok, failed := rec.recs[0], rec.recs[1]
	if ok.Status != types.ConversionDone || ok.Mode != "ai" || ok.SourceExt != "csv" || ok.TargetExt != "xlsx" || ok.Bytes == 0 {
		t.Errorf("success record = %+v", ok)
	}
	if failed.Status != types.ConversionFailed || failed.Error != "boom" || failed.Mode != "basic" {
		t.Errorf("failure record = %+v", failed)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0.0 KB"},
		{512, "0.5 KB"},
		{1536, "1.5 KB"},
		{1024*1024 - 1, "1024.0 KB"},
		{1024 * 1024, "1.0 MB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		input  string
		target string
		output string
		want   string
	}{
		{"replace extension", "docs/report.pdf", "docx", "", "docs/report.docx"},
		{"dotted target", "docs/report.pdf", ".DOCX", "", "docs/report.docx"},
		{"explicit file", "report.pdf", "docx", "out/final.docx", "out/final.docx"},
		{"existing directory", "docs/report.pdf", "md", dir, filepath.Join(dir, "report.md")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputPath(tt.input, tt.target, tt.output); got != tt.want {
				t.Errorf("OutputPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvertBatch(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	inputs := []string{
		writeInput(t, dir, "a.md"),
		writeInput(t, dir, "b.md"),
		filepath.Join(dir, "missing.md"),
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "b.html"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := &fakeRecorder{}
	f := &fakeBackend{}
	r := NewRouter(allBackends(f), rec, quietLogger())
	var buf bytes.Buffer
	result := r.ConvertBatch(context.Background(), inputs, "html", outDir, Options{}, &buf)

	if result.Converted != 1 || result.Skipped != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want 1/1/1", result)
	}
	if !result.HasFailures() || result.Total() != 3 {
		t.Errorf("Total = %d, HasFailures = %v", result.Total(), result.HasFailures())
	}
	log := buf.String()
	for _, want := range []string{"converted: a.md", "skipped: b.md", "failed:  missing.md", "Batch summary: 1 converted, 1 skipped, 1 failed"} {
		if !strings.Contains(log, want) {
			t.Errorf("output missing %q:\n%s", want, log)
		}
	}
	if len(rec.recs) != 3 || rec.recs[1].Status != types.ConversionSkipped {
		t.Errorf("records = %+v", rec.recs)
	}

	buf.Reset()
	result = r.ConvertBatch(context.Background(), inputs[:2], "html", outDir, Options{Overwrite: true}, &buf)
	if result.Converted != 2 {
		t.Errorf("overwrite: result = %+v", result)
	}
	data, _ := os.ReadFile(filepath.Join(outDir, "b.html"))
	if string(data) != "converted" {
		t.Errorf("b.html not overwritten: %q", data)
	}
}
