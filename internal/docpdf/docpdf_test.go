// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docpdf

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/file-converter/internal/docx"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeOffice struct {
	err   error
	calls int
}

func (f *fakeOffice) Convert(_ context.Context, _, output, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return output, os.WriteFile(output, []byte("%PDF"), 0o644)
}

type fakePrinter struct {
	err  error
	html string
}

func (f *fakePrinter) PrintHTML(_ context.Context, html, _, outPDF string) error {
	if f.err != nil {
		return f.err
	}
	f.html = html
	return os.WriteFile(outPDF, []byte("%PDF"), 0o644)
}

func sampleDocx(t *testing.T) string {
	t.Helper()
	d := docx.New()
	d.AddParagraph("Annual Review", "Heading 1", docx.DefaultFormat("Heading 1"))
	d.AddParagraph("Revenue grew <fast>.", "Normal", docx.DefaultFormat("Normal"))
	path := filepath.Join(t.TempDir(), "review.docx")
	require.NoError(t, d.Save(path))
	return path
}

func TestConvertMethods(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		office       *fakeOffice
		printer      *fakePrinter
		wantErr      string
		wantOffice   int
		wantPrinted  bool
		wantNoMethod bool
	}{
		{name: "auto prefers LibreOffice", method: "", office: &fakeOffice{}, printer: &fakePrinter{}, wantOffice: 1},
		{name: "auto falls back to docx2pdf", method: MethodAuto, office: &fakeOffice{err: errors.New("soffice missing")}, printer: &fakePrinter{}, wantOffice: 1, wantPrinted: true},
		{name: "explicit docx2pdf", method: MethodDocx2PDF, office: &fakeOffice{}, printer: &fakePrinter{}, wantPrinted: true},
		{name: "explicit libreoffice failure", method: MethodLibreOffice, office: &fakeOffice{err: errors.New("boom")}, printer: &fakePrinter{}, wantOffice: 1, wantErr: "boom"},
		{
			name: "nothing available", method: MethodAuto,
			office: &fakeOffice{err: errors.New("soffice missing")}, printer: &fakePrinter{err: errors.New("no chromium")},
			wantOffice: 1, wantErr: "install LibreOffice", wantNoMethod: true,
		},
		{name: "unknown method", method: "word", office: &fakeOffice{}, printer: &fakePrinter{}, wantErr: "unknown method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleDocx(t)
			out := filepath.Join(filepath.Dir(in), "review.pdf")
			c := NewConverter(tt.office, tt.printer, quietLogger())

			got, err := c.Convert(context.Background(), in, out, tt.method)
			assert.Equal(t, tt.wantOffice, tt.office.calls)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Equal(t, tt.wantNoMethod, errors.Is(err, ErrNoMethod))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, out, got)
			assert.Equal(t, tt.wantPrinted, tt.printer.html != "")
		})
	}
}

func TestConvertNilBackends(t *testing.T) {
	_, err := NewConverter(nil, nil, quietLogger()).Convert(context.Background(), "a.docx", "a.pdf", MethodAuto)
	assert.ErrorIs(t, err, ErrNoMethod)
}

func TestNativeHTML(t *testing.T) {
	p := &fakePrinter{}
	in := sampleDocx(t)
	_, err := NewConverter(nil, p, quietLogger()).Convert(context.Background(), in, filepath.Join(t.TempDir(), "r.pdf"), MethodDocx2PDF)
	require.NoError(t, err)
	assert.Contains(t, p.html, "<title>review</title>")
	assert.Contains(t, p.html, "<h1>Annual Review</h1>")
	assert.Contains(t, p.html, `<p style="font-size: 11pt">Revenue grew &lt;fast&gt;.</p>`)
}

func TestRenderHTML(t *testing.T) {
	page, err := RenderHTML([]docx.Paragraph{
		{Text: "Cover", Style: "Title"},
		{Text: "Note", Bold: true},
		{Text: "a | b\n1 | 2", Table: true},
		{Text: "Deep", Style: "Heading9"},
	}, "t")
	require.NoError(t, err)
	html := string(page)
	assert.Contains(t, html, "<h1>Cover</h1>")
	assert.Contains(t, html, "<p><strong>Note</strong></p>")
	assert.Contains(t, html, "<table><tr><td>a</td><td>b</td></tr><tr><td>1</td><td>2</td></tr></table>")
	assert.Contains(t, html, "<h6>Deep</h6>")
}
