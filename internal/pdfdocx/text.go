// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdocx

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/file-converter/internal/docx"
	"github.com/pdiddy/file-converter/internal/layout"
	"github.com/pdiddy/file-converter/pkg/types"
)

// textBullets are the markers the text mode treats as bullets. It is a
// narrower set than layout.DetectList uses.
var textBullets = map[rune]bool{
	'•': true, '◦': true, '▪': true, '▫': true, '◾': true, '◽': true,
	'○': true, '●': true, '-': true, '*': true, '→': true, '►': true, '‣': true,
}

var textNumbered = regexp.MustCompile(`^(\d+[.)]|\([a-z]\)|\([ivx]+\)|[a-z][.)])\s+`)

// text rebuilds the document line by line from the PDF's words. If layout
// detection fails the PDF is imported with LibreOffice instead.
func (c *Converter) text(ctx context.Context, input, output string, log logrus.FieldLogger) error {
	err := c.textLayout(ctx, input, output, log)
	if err == nil {
		return nil
	}
	if c.b.Office == nil {
		return fmt.Errorf("text conversion: %w", err)
	}
	log.WithError(err).Warn("layout detection failed, falling back to LibreOffice import")
	if _, officeErr := c.b.Office.ImportPDF(ctx, input, output); officeErr != nil {
		return fmt.Errorf("text conversion: %w; LibreOffice import: %v", err, officeErr)
	}
	return nil
}

func (c *Converter) textLayout(ctx context.Context, input, output string, log logrus.FieldLogger) error {
	pages, err := c.b.Layout.Lines(ctx, input)
	if err != nil {
		return err
	}

	doc := docx.New()
	for _, p := range pages {
		log.WithField("page", p.Page).Debug("processing page with layout detection")
		minX0 := p.MinX0()
		for _, line := range p.Lines {
			text := strings.Join(line.Words, " ")
			if text == "" {
				continue
			}
			style, clean, marker := classifyLine(text)
			writeLine(doc, style, clean, marker, layout.RelativeIndent(line.X0, minX0))
		}
	}
	if err := doc.Save(output); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"pages": len(pages), "paragraphs": doc.Paragraphs()}).Info("text-based conversion complete")
	return nil
}

// classifyLine returns the paragraph style for a line, its text without
// the list marker, and the marker. A numbered match wins over a bullet.
func classifyLine(text string) (style, clean, marker string) {
	style, clean = types.StyleNormal, text
	if r, size := utf8.DecodeRuneInString(text); textBullets[r] {
		style, clean, marker = types.StyleListBullet, strings.TrimLeft(text[size:], " \t"), "•"
	}
	if m := textNumbered.FindStringSubmatchIndex(text); m != nil {
		style, clean, marker = types.StyleListNumber, strings.TrimLeft(text[m[1]:], " \t"), text[m[2]:m[3]]
	}
	return style, clean, marker
}

func writeLine(doc *docx.Document, style, text, marker string, indent int) {
	fm := docx.DefaultFormat(style)
	if indent > 0 {
		fm.LeftIndent = float64(indent) * 0.5
	}
	if marker != "" {
		fm.LeftIndent = max(fm.LeftIndent, 0.25)
		fm.Hanging = 0.25
		text = marker + "\t" + text
	}
	doc.AddParagraph(text, style, fm)
}
