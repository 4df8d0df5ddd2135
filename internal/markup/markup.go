// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markup converts between Markdown and HTML and prints either to
// PDF through a browser, falling back to LibreOffice for HTML.
package markup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// HTML→PDF methods.
const (
	MethodAuto        = "auto"
	MethodChromium    = "chromium"
	MethodLibreOffice = "libreoffice"
)

// Printer prints an HTML file to PDF.
type Printer interface {
	PrintFile(ctx context.Context, htmlPath, outPDF string) error
	PrintHTML(ctx context.Context, html, baseDir, outPDF string) error
}

// Office converts a document with LibreOffice.
type Office interface {
	Convert(ctx context.Context, input, output, format string) (string, error)
}

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

var shell = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Calibri, Arial, sans-serif; font-size: 11pt; line-height: 1.4; margin: 0 auto; max-width: 48em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 4px 8px; }
pre, code { font-family: Consolas, monospace; background: #f4f4f4; }
pre { padding: 8px; overflow-x: auto; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// MarkdownToHTML renders Markdown (GitHub flavoured) as a standalone HTML
// page titled title.
func MarkdownToHTML(src []byte, title string) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert(src, &body); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	var page bytes.Buffer
	err := shell.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body.String())})
	if err != nil {
		return nil, err
	}
	return page.Bytes(), nil
}

// Sanitize strips scripts, event handlers and other unsafe markup.
func Sanitize(html string) string {
	return bluemonday.UGCPolicy().Sanitize(html)
}

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// HTMLToMarkdown sanitises html and converts it to CommonMark with tables.
func HTMLToMarkdown(html string) (string, error) {
	out, err := mdConverter.ConvertString(Sanitize(html))
	if err != nil {
		return "", fmt.Errorf("converting html: %w", err)
	}
	return strings.TrimSpace(out) + "\n", nil
}

// Converter runs the file-level markup conversions.
type Converter struct {
	printer Printer
	office  Office
	log     logrus.FieldLogger
}

// NewConverter returns a Converter. printer and office may be nil; the
// conversions needing them then fail or fall back.
func NewConverter(printer Printer, office Office, log logrus.FieldLogger) *Converter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Converter{printer: printer, office: office, log: log.WithField("component", "markup")}
}

// MarkdownToHTMLFile converts the Markdown file input to an HTML page at output.
func (c *Converter) MarkdownToHTMLFile(input, output string) (string, error) {
	src, err := os.ReadFile(input)
	if err != nil {
		return "", err
	}
	page, err := MarkdownToHTML(src, stem(input))
	if err != nil {
		return "", err
	}
	return output, writeFile(output, page)
}

// HTMLToMarkdownFile converts the HTML file input to Markdown at output.
func (c *Converter) HTMLToMarkdownFile(input, output string) (string, error) {
	src, err := os.ReadFile(input)
	if err != nil {
		return "", err
	}
	text, err := HTMLToMarkdown(string(src))
	if err != nil {
		return "", err
	}
	return output, writeFile(output, []byte(text))
}

// MarkdownToPDF renders input to HTML and prints it. Relative image paths
// resolve against the Markdown file's directory.
func (c *Converter) MarkdownToPDF(ctx context.Context, input, output string) (string, error) {
	if c.printer == nil {
		return "", errors.New("markdown to PDF needs a browser")
	}
	src, err := os.ReadFile(input)
	if err != nil {
		return "", err
	}
	page, err := MarkdownToHTML(src, stem(input))
	if err != nil {
		return "", err
	}
	if err := c.printer.PrintHTML(ctx, string(page), filepath.Dir(input), output); err != nil {
		return "", err
	}
	return output, nil
}

// HTMLToPDF prints input with the given method. auto tries the browser and
// then LibreOffice.
func (c *Converter) HTMLToPDF(ctx context.Context, input, output, method string) (string, error) {
	if method == "" {
		method = MethodAuto
	}
	switch method {
	case MethodChromium:
		return c.htmlViaBrowser(ctx, input, output)
	case MethodLibreOffice:
		return c.htmlViaOffice(ctx, input, output)
	case MethodAuto:
		out, err := c.htmlViaBrowser(ctx, input, output)
		if err == nil {
			return out, nil
		}
		c.log.WithError(err).Warn("browser print failed, trying LibreOffice")
		out, officeErr := c.htmlViaOffice(ctx, input, output)
		if officeErr != nil {
			return "", fmt.Errorf("no HTML to PDF method succeeded: browser: %v; LibreOffice: %w", err, officeErr)
		}
		return out, nil
	}
	return "", fmt.Errorf("unknown html to pdf method %q (valid: auto, chromium, libreoffice)", method)
}

func (c *Converter) htmlViaBrowser(ctx context.Context, input, output string) (string, error) {
	if c.printer == nil {
		return "", errors.New("no browser configured")
	}
	if err := c.printer.PrintFile(ctx, input, output); err != nil {
		return "", err
	}
	return output, nil
}

func (c *Converter) htmlViaOffice(ctx context.Context, input, output string) (string, error) {
	if c.office == nil {
		return "", errors.New("LibreOffice not available")
	}
	return c.office.Convert(ctx, input, output, "pdf")
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
