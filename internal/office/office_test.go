// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package office

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/file-converter/internal/container"
	"github.com/pdiddy/file-converter/pkg/types"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeExec simulates soffice: it writes <outdir>/<stem>.<fmt> unless told
// to fail.
type fakeExec struct {
	onPath   map[string]string
	files    map[string]bool
	calls    [][]string
	stderr   string
	fail     bool
	noOutput bool
	block    bool
}

func (f *fakeExec) LookPath(file string) (string, error) {
	if p, ok := f.onPath[file]; ok {
		return p, nil
	}
	return "", errors.New("not found")
}

func (f *fakeExec) IsFile(path string) bool {
	if f.files[path] {
		return true
	}
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

func (f *fakeExec) Run(ctx context.Context, name string, args []string, _ io.Writer, stderr io.Writer) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.fail {
		_, _ = io.WriteString(stderr, f.stderr)
		return errors.New("exit status 1")
	}
	if f.noOutput {
		return nil
	}
	return writeProduced(args)
}

// writeProduced creates the file soffice would write for args.
func writeProduced(args []string) error {
	var format, outDir string
	for i, a := range args {
		switch a {
		case "--convert-to":
			format = args[i+1]
		case "--outdir":
			outDir = args[i+1]
		}
	}
	in := args[len(args)-1]
	stem := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return os.WriteFile(filepath.Join(outDir, stem+"."+format), []byte("converted"), 0o644)
}

func newTestConverter(t *testing.T, ex *fakeExec) *Converter {
	t.Helper()
	if ex.onPath == nil {
		ex.onPath = map[string]string{"soffice": "/usr/bin/soffice"}
	}
	c, err := newConverter(types.OfficeConfig{}, ex, "linux", nil, quietLogger())
	require.NoError(t, err)
	return c
}

func writeInput(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("input"), 0o644))
	return p
}

func TestDiscover(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		onPath     map[string]string
		files      map[string]bool
		goos       string
		want       string
	}{
		{
			name:   "soffice on PATH",
			onPath: map[string]string{"soffice": "/opt/bin/soffice", "libreoffice": "/opt/bin/libreoffice"},
			goos:   "linux",
			want:   "/opt/bin/soffice",
		},
		{
			name:   "libreoffice on PATH",
			onPath: map[string]string{"libreoffice": "/opt/bin/libreoffice"},
			goos:   "linux",
			want:   "/opt/bin/libreoffice",
		},
		{
			name:  "linux snap path",
			files: map[string]bool{"/snap/bin/libreoffice": true},
			goos:  "linux",
			want:  "/snap/bin/libreoffice",
		},
		{
			name:  "macOS app bundle",
			files: map[string]bool{"/Applications/LibreOffice.app/Contents/MacOS/soffice": true},
			goos:  "darwin",
			want:  "/Applications/LibreOffice.app/Contents/MacOS/soffice",
		},
		{
			name:       "configured path wins",
			configured: "/custom/soffice",
			onPath:     map[string]string{"soffice": "/usr/bin/soffice"},
			files:      map[string]bool{"/custom/soffice": true},
			goos:       "linux",
			want:       "/custom/soffice",
		},
		{
			name: "nothing found",
			goos: "plan9",
			want: "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ex := &fakeExec{onPath: tc.onPath, files: tc.files}
			assert.Equal(t, tc.want, discover(tc.configured, ex, tc.goos))
		})
	}
}

func TestNewNotFound(t *testing.T) {
	_, err := newConverter(types.OfficeConfig{}, &fakeExec{}, "plan9", nil, quietLogger())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConvertToFile(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "report.docx")
	out := filepath.Join(dir, "out", "final.pdf")

	ex := &fakeExec{}
	c := newTestConverter(t, ex)
	got, err := c.Convert(context.Background(), in, out, "")
	require.NoError(t, err)

	assert.Equal(t, out, got)
	assert.FileExists(t, out)
	assert.NoFileExists(t, filepath.Join(dir, "out", "report.pdf"))

	require.Len(t, ex.calls, 1)
	assert.Equal(t, []string{
		"/usr/bin/soffice", "--headless", "--convert-to", "pdf",
		"--outdir", filepath.Join(dir, "out"), in,
	}, ex.calls[0])
}

func TestConvertReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "sheet.xlsx")
	out := filepath.Join(dir, "target.pdf")
	require.NoError(t, os.WriteFile(out, []byte("old"), 0o644))

	got, err := newTestConverter(t, &fakeExec{}).Convert(context.Background(), in, out, "")
	require.NoError(t, err)
	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "converted", string(data))
}

func TestConvertToDirectory(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "deck.pptx")
	outDir := filepath.Join(dir, "pdfs")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	c := newTestConverter(t, &fakeExec{})
	_, err := c.Convert(context.Background(), in, outDir, "")
	assert.ErrorContains(t, err, "format required")

	got, err := c.Convert(context.Background(), in, outDir, "PDF")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "deck.pdf"), got)
}

func TestConvertErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "a.doc")

	_, err := newTestConverter(t, &fakeExec{}).Convert(context.Background(), filepath.Join(dir, "missing.doc"), filepath.Join(dir, "a.pdf"), "")
	assert.ErrorContains(t, err, "input file not found")

	_, err = newTestConverter(t, &fakeExec{fail: true, stderr: "source file could not be loaded"}).
		Convert(context.Background(), in, filepath.Join(dir, "a.pdf"), "")
	assert.ErrorContains(t, err, "source file could not be loaded")

	_, err = newTestConverter(t, &fakeExec{noOutput: true}).
		Convert(context.Background(), in, filepath.Join(dir, "a.pdf"), "")
	assert.ErrorContains(t, err, "output file not created")
}

func TestConvertTimeout(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "slow.odt")
	ex := &fakeExec{block: true, onPath: map[string]string{"soffice": "/usr/bin/soffice"}}
	c, err := newConverter(types.OfficeConfig{Timeout: 20 * time.Millisecond}, ex, "linux", nil, quietLogger())
	require.NoError(t, err)

	_, err = c.Convert(context.Background(), in, filepath.Join(dir, "slow.pdf"), "")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestImportPDF(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "scan.pdf")
	ex := &fakeExec{}
	got, err := newTestConverter(t, ex).ImportPDF(context.Background(), in, filepath.Join(dir, "scan.docx"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "scan.docx"), got)
	assert.Contains(t, ex.calls[0], "--infilter=writer_pdf_import")
}

func TestBatchConvert(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "a.docx")
	b := filepath.Join(dir, "missing.docx")
	c := writeInput(t, dir, "c.odt")

	outs, err := newTestConverter(t, &fakeExec{}).BatchConvert(context.Background(), []string{a, b, c}, filepath.Join(dir, "out"), "pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "out", "a.pdf"),
		filepath.Join(dir, "out", "c.pdf"),
	}, outs)
}

type fakeRuntime struct {
	opts container.RunOptions
}

func (f *fakeRuntime) Name() string                              { return "docker" }
func (f *fakeRuntime) Available(context.Context) bool            { return true }
func (f *fakeRuntime) ImageExists(context.Context, string) error { return nil }
func (f *fakeRuntime) Run(_ context.Context, o container.RunOptions) error {
	f.opts = o
	// The mounted out dir is the second mount.
	return os.WriteFile(filepath.Join(o.Mounts[1].Host, "memo.pdf"), []byte("pdf"), 0o644)
}

func TestContainerMode(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "memo.rtf")
	rt := &fakeRuntime{}
	c, err := newConverter(types.OfficeConfig{UseContainer: true}, &fakeExec{}, "plan9", rt, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "", c.Binary())
	assert.Contains(t, c.Describe(), "docker")

	got, err := c.Convert(context.Background(), in, filepath.Join(dir, "memo.pdf"), "")
	require.NoError(t, err)
	assert.FileExists(t, got)
	assert.Equal(t, DefaultImage, rt.opts.Image)
	assert.Equal(t, []string{"soffice", "--headless", "--convert-to", "pdf", "--outdir", "/out", "/in/memo.rtf"}, rt.opts.Args)
}

func TestSupportedFormats(t *testing.T) {
	f := SupportedFormats()
	assert.Len(t, f, 13)
	assert.Equal(t, []string{"pdf", "docx", "odt"}, f["html"])

	f["html"][0] = "mutated"
	assert.Equal(t, "pdf", SupportedFormats()["html"][0])

	assert.True(t, IsFormatSupported(".DOCX", "pdf"))
	assert.True(t, IsFormatSupported("csv", ".xlsx"))
	assert.False(t, IsFormatSupported("pdf", "docx"))
	assert.Equal(t, "csv", InputFormats()[0])
}
