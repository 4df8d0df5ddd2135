// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"strings"
	"unicode/utf8"
)

const (
	// baseMargin is the left edge (points) treated as indent level 0.
	baseMargin = 72.0
	// indentStep is the width (points) of one indent level.
	indentStep = 25.0
	// maxIndentLevel caps IndentLevel.
	maxIndentLevel = 5

	headingMinSize = 14.0
	headingMaxLen  = 100
)

// IndentLevel maps an absolute left edge to an indent level measured from
// a one-inch margin.
func IndentLevel(x0 float64) int {
	if x0 < baseMargin {
		return 0
	}
	level := int((x0 - baseMargin) / indentStep)
	if level > maxIndentLevel {
		return maxIndentLevel
	}
	return level
}

// RelativeIndent maps a left edge to an indent level relative to the
// leftmost text on the page. It is never negative and not capped.
func RelativeIndent(x0, minX0 float64) int {
	if x0 <= minX0 {
		return 0
	}
	return int((x0 - minX0) / indentStep)
}

// IsPotentialHeading reports whether at least two heading signals are
// present: a large size, a bold or black face, short text, and no
// terminating period.
func IsPotentialHeading(text, font string, size float64) bool {
	signals := 0
	if size >= headingMinSize {
		signals++
	}
	if IsBoldFont(font) {
		signals++
	}
	if utf8.RuneCountInString(text) < headingMaxLen {
		signals++
	}
	if !strings.HasSuffix(text, ".") {
		signals++
	}
	return signals >= 2
}

// IsBoldFont reports whether a font name denotes a bold or black face.
func IsBoldFont(font string) bool {
	f := strings.ToLower(font)
	return strings.Contains(f, "bold") || strings.Contains(f, "black")
}

// IsItalicFont reports whether a font name denotes an italic or oblique face.
func IsItalicFont(font string) bool {
	f := strings.ToLower(font)
	return strings.Contains(f, "italic") || strings.Contains(f, "oblique")
}
