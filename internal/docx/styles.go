// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"strings"

	"github.com/pdiddy/file-converter/internal/layout"
	"github.com/pdiddy/file-converter/pkg/types"
)

// knownStyles maps accepted style names to Word style names.
var knownStyles = map[string]string{
	types.StyleTitle:        types.StyleTitle,
	types.StyleSubtitle:     types.StyleSubtitle,
	types.StyleHeading1:     types.StyleHeading1,
	types.StyleHeading2:     types.StyleHeading2,
	types.StyleHeading3:     types.StyleHeading3,
	types.StyleHeading4:     types.StyleHeading4,
	types.StyleHeading5:     types.StyleHeading5,
	types.StyleListBullet:   types.StyleListBullet,
	types.StyleListNumber:   types.StyleListNumber,
	types.StyleNormal:       types.StyleNormal,
	types.StyleQuote:        types.StyleQuote,
	types.StyleIntenseQuote: types.StyleIntenseQuote,
	types.StyleCaption:      types.StyleCaption,
}

// NormalizeStyle returns the Word style for name. Unknown names map to Normal.
func NormalizeStyle(name string) string {
	if s, ok := knownStyles[name]; ok {
		return s
	}
	return types.StyleNormal
}

// StyleID converts a style name to its OOXML id ("Heading 1" → "Heading1").
// Normal needs no explicit reference and returns "".
func StyleID(name string) string {
	if name == "" || name == types.StyleNormal {
		return ""
	}
	return strings.ReplaceAll(name, " ", "")
}

func isList(style string) bool {
	return style == types.StyleListBullet || style == types.StyleListNumber
}

func isHeading(style string) bool {
	return strings.HasPrefix(style, "Heading")
}

const (
	defaultFont        = "Calibri"
	defaultLineSpacing = 1.15
)

// DefaultFormat returns the formatting used when a block has no match in
// the source layout.
func DefaultFormat(style string) Format {
	fm := Format{Font: defaultFont, Size: 11, LineSpacing: defaultLineSpacing, SpaceAfter: 6}
	switch style {
	case types.StyleTitle:
		fm.Size, fm.Bold = 26, true
	case types.StyleHeading1:
		fm.Size, fm.Bold, fm.Color = 16, true, "1F4E78"
	case types.StyleHeading2:
		fm.Size, fm.Bold, fm.Color = 13, true, "4F81BD"
	case types.StyleHeading3:
		fm.Size, fm.Bold = 12, true
	}
	if isHeading(style) {
		fm.SpaceBefore = 12
	}
	return fm
}

// LayoutFormat returns the formatting carried over from a source block.
func LayoutFormat(b types.Block) Format {
	font := b.Font
	if font == "" {
		font = defaultFont
	}
	size := b.Size
	if size <= 0 {
		size = 11
	}
	return Format{
		Font:        BaseFont(font),
		Size:        size,
		Bold:        layout.IsBoldFont(font),
		Italic:      layout.IsItalicFont(font),
		SpaceAfter:  6,
		LineSpacing: defaultLineSpacing,
	}
}

// BaseFont strips weight and style suffixes ("Arial-BoldMT" → "Arial").
func BaseFont(font string) string {
	if i := strings.IndexByte(font, '-'); i > 0 {
		return font[:i]
	}
	return font
}
