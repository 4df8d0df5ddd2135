// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/file-converter/pkg/types"
)

// emptyPlaceholder is written when a reconstruction yields no text at all.
const emptyPlaceholder = "(Empty document)"

// lookupKeyRunes is how much of a block's text identifies it in the source
// layout.
const lookupKeyRunes = 100

// BuildOptions controls Reconstruct.
type BuildOptions struct {
	// Layout, when set, supplies the original typography for blocks whose
	// text is found in it.
	Layout *types.Layout

	// Properties are written to the package metadata.
	Properties *CoreProperties

	// Report also writes <output-without-ext>.report.txt.
	Report bool
}

// Reconstructor renders a styled block structure into a DOCX file.
type Reconstructor struct {
	log logrus.FieldLogger
}

// NewReconstructor returns a Reconstructor that logs through log.
func NewReconstructor(log logrus.FieldLogger) *Reconstructor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reconstructor{log: log.WithField("component", "docx")}
}

// Reconstruct writes rec to output. It returns the report path when one
// was requested.
func (r *Reconstructor) Reconstruct(rec *types.Reconstruction, output string, opts BuildOptions) (string, error) {
	blocks := Blocks(rec)
	lookup := styleLookup(opts.Layout)

	doc := New()
	if opts.Properties != nil {
		doc.SetCoreProperties(*opts.Properties)
	}

	w := newBlockWriter(doc, lookup)
	for i, b := range blocks {
		if !w.add(b) {
			r.log.WithField("block", i).Debug("skipping empty block")
		}
	}
	if doc.Paragraphs() == 0 {
		r.log.Warn("no blocks in reconstruction")
		doc.AddParagraph(emptyPlaceholder, types.StyleNormal, Format{})
	}

	if err := doc.Save(output); err != nil {
		return "", err
	}
	r.log.WithFields(logrus.Fields{
		"output":     output,
		"paragraphs": doc.Paragraphs(),
	}).Info("docx saved")

	if !opts.Report {
		return "", nil
	}
	reportPath := ReportPath(output)
	if err := WriteReport(rec, reportPath); err != nil {
		return "", err
	}
	r.log.WithField("report", reportPath).Info("conversion report saved")
	return reportPath, nil
}

// Blocks selects the blocks to render from a reconstruction. Successful and
// layout-derived reconstructions use their blocks; a parse error renders
// the raw model output as one Normal paragraph.
func Blocks(rec *types.Reconstruction) []types.StyledBlock {
	if rec == nil {
		return nil
	}
	switch {
	case rec.Status == types.ReconstructionSuccess, len(rec.Blocks) > 0:
		return rec.Blocks
	case rec.RawText != "":
		return []types.StyledBlock{{Text: rec.RawText, Style: types.StyleNormal}}
	}
	return nil
}

func styleLookup(l *types.Layout) map[string]types.Block {
	if l == nil {
		return nil
	}
	out := make(map[string]types.Block)
	for _, p := range l.Pages {
		for _, b := range p.Blocks {
			if k := lookupKey(b.Text); k != "" {
				out[k] = b
			}
		}
	}
	return out
}

func lookupKey(text string) string {
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > lookupKeyRunes {
		return string(r[:lookupKeyRunes])
	}
	return text
}

// blockWriter tracks list numbering across consecutive blocks.
type blockWriter struct {
	doc      *Document
	lookup   map[string]types.Block
	counters map[int]int
	lastList string
}

func newBlockWriter(doc *Document, lookup map[string]types.Block) *blockWriter {
	return &blockWriter{doc: doc, lookup: lookup, counters: map[int]int{}}
}

// add writes one block and reports whether anything was written.
func (w *blockWriter) add(b types.StyledBlock) bool {
	text := strings.TrimSpace(b.Text)
	if text == "" {
		return false
	}
	style := NormalizeStyle(b.Style)
	level := max(b.Level, 0)

	fm := DefaultFormat(style)
	if src, ok := w.lookup[lookupKey(text)]; ok {
		fm = LayoutFormat(src)
	}

	if !isList(style) {
		w.lastList = ""
		if level > 0 {
			fm.LeftIndent = float64(level) * 0.5
		}
		w.doc.AddParagraph(text, style, fm)
		return true
	}

	if style != w.lastList {
		clear(w.counters)
		w.lastList = style
	}
	fm.LeftIndent = 0.5 + float64(level)*0.25
	fm.Hanging = 0.25
	fm.SpaceBefore = 0
	fm.SpaceAfter = 3

	w.doc.AddParagraph(w.marker(style, level)+"\t"+text, style, fm)
	return true
}

func (w *blockWriter) marker(style string, level int) string {
	if style == types.StyleListBullet {
		return "•"
	}
	w.counters[level]++
	for l := range w.counters {
		if l > level {
			delete(w.counters, l)
		}
	}
	return fmt.Sprintf("%d.", w.counters[level])
}
