// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docpdf converts DOCX documents to PDF, either through LibreOffice
// or natively by rendering the paragraphs as HTML and printing them with a
// browser.
package docpdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/file-converter/internal/docx"
)

// DOCX→PDF methods.
const (
	MethodAuto        = "auto"
	MethodLibreOffice = "libreoffice"
	MethodDocx2PDF    = "docx2pdf"
)

// ErrNoMethod is returned when auto finds no working method.
var ErrNoMethod = errors.New("no DOCX to PDF converter available; install LibreOffice " +
	"(https://www.libreoffice.org/download/) or Chromium for the docx2pdf method")

// Office converts a document with LibreOffice.
type Office interface {
	Convert(ctx context.Context, input, output, format string) (string, error)
}

// Printer prints an HTML document to PDF.
type Printer interface {
	PrintHTML(ctx context.Context, html, baseDir, outPDF string) error
}

// Converter runs DOCX→PDF conversions.
type Converter struct {
	office  Office
	printer Printer
	log     logrus.FieldLogger
}

// NewConverter returns a Converter. Either backend may be nil.
func NewConverter(office Office, printer Printer, log logrus.FieldLogger) *Converter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Converter{office: office, printer: printer, log: log.WithField("component", "docpdf")}
}

// Convert writes input as a PDF at output using method.
func (c *Converter) Convert(ctx context.Context, input, output, method string) (string, error) {
	if method == "" {
		method = MethodAuto
	}
	log := c.log.WithFields(logrus.Fields{"input": input, "method": method})

	switch method {
	case MethodLibreOffice:
		return c.viaOffice(ctx, input, output)
	case MethodDocx2PDF:
		return c.viaBrowser(ctx, input, output)
	case MethodAuto:
		out, err := c.viaOffice(ctx, input, output)
		if err == nil {
			return out, nil
		}
		log.WithError(err).Warn("LibreOffice conversion failed, trying docx2pdf")
		out, nativeErr := c.viaBrowser(ctx, input, output)
		if nativeErr == nil {
			return out, nil
		}
		log.WithError(nativeErr).Warn("docx2pdf conversion failed")
		return "", fmt.Errorf("%w (libreoffice: %v; docx2pdf: %v)", ErrNoMethod, err, nativeErr)
	}
	return "", fmt.Errorf("unknown method %q (valid: auto, libreoffice, docx2pdf)", method)
}

func (c *Converter) viaOffice(ctx context.Context, input, output string) (string, error) {
	if c.office == nil {
		return "", errors.New("LibreOffice not available")
	}
	return c.office.Convert(ctx, input, output, "pdf")
}

func (c *Converter) viaBrowser(ctx context.Context, input, output string) (string, error) {
	if c.printer == nil {
		return "", errors.New("no browser available")
	}
	paras, err := docx.ParseText(input)
	if err != nil {
		return "", err
	}
	title := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	page, err := RenderHTML(paras, title)
	if err != nil {
		return "", err
	}
	if err := c.printer.PrintHTML(ctx, string(page), filepath.Dir(input), output); err != nil {
		return "", fmt.Errorf("printing %s: %w", filepath.Base(input), err)
	}
	c.log.WithFields(logrus.Fields{"input": input, "paragraphs": len(paras)}).Info("printed DOCX")
	return output, nil
}

type htmlBlock struct {
	Heading int
	Open    template.HTML
	Close   template.HTML
	Text    string
	Style   template.CSS
	Bold    bool
	Rows    [][]string
}

var page = template.Must(template.New("docx").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: Letter; margin: 1in; }
body { font-family: Calibri, Arial, sans-serif; font-size: 11pt; line-height: 1.15; }
p { margin: 0 0 6pt 0; white-space: pre-wrap; }
h1, h2, h3, h4, h5, h6 { margin: 12pt 0 6pt 0; }
table { border-collapse: collapse; margin: 0 0 6pt 0; }
td { border: 1px solid #999; padding: 2pt 6pt; }
</style>
</head>
<body>
{{- range .Blocks}}
{{if .Rows}}<table>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</table>
{{- else if .Heading}}{{.Open}}{{.Text}}{{.Close}}
{{- else}}<p{{if .Style}} style="{{.Style}}"{{end}}>{{if .Bold}}<strong>{{.Text}}</strong>{{else}}{{.Text}}{{end}}</p>{{end}}
{{- end}}
</body>
</html>
`))

// RenderHTML turns parsed DOCX paragraphs into a printable HTML page.
// Heading styles become h1 to h6; other paragraphs keep their bold and
// size hints; flattened tables become HTML tables.
func RenderHTML(paras []docx.Paragraph, title string) ([]byte, error) {
	blocks := make([]htmlBlock, 0, len(paras))
	for _, p := range paras {
		switch {
		case p.Table:
			blocks = append(blocks, htmlBlock{Rows: tableRows(p.Text)})
		case p.HeadingLevel() > 0:
			n := p.HeadingLevel()
			blocks = append(blocks, htmlBlock{
				Heading: n,
				Open:    template.HTML(fmt.Sprintf("<h%d>", n)),
				Close:   template.HTML(fmt.Sprintf("</h%d>", n)),
				Text:    p.Text,
			})
		default:
			b := htmlBlock{Text: p.Text, Bold: p.Bold}
			if p.Size > 0 {
				b.Style = template.CSS(fmt.Sprintf("font-size: %gpt", p.Size))
			}
			blocks = append(blocks, b)
		}
	}

	var buf bytes.Buffer
	err := page.Execute(&buf, struct {
		Title  string
		Blocks []htmlBlock
	}{title, blocks})
	if err != nil {
		return nil, fmt.Errorf("rendering html: %w", err)
	}
	return buf.Bytes(), nil
}

func tableRows(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		rows = append(rows, strings.Split(line, " | "))
	}
	return rows
}
