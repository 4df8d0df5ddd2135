// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/file-converter/pkg/types"
)

// bulletMarkers are the leading runes recognised as bullet list markers.
var bulletMarkers = map[rune]bool{
	'•': true, '◦': true, '▪': true, '▫': true, '◾': true, '◽': true,
	'○': true, '●': true, '-': true, '*': true, '→': true, '►': true,
	'‣': true, '⦿': true, '⦾': true, '▸': true,
}

// numberedPatterns are tried in order; capture group 1 is the marker.
var numberedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d+[.)])\s+`),
	regexp.MustCompile(`^\(([a-z])\)\s+`),
	regexp.MustCompile(`^\(([ivx]+)\)\s+`),
	regexp.MustCompile(`^([a-z][.)])\s+`),
	regexp.MustCompile(`^([A-Z][.)])\s+`),
}

// ListInfo describes a detected list item.
type ListInfo struct {
	Type      types.ListType
	Marker    string
	CleanText string
}

// DetectList checks text for a bullet marker and then for a numbered
// marker. Text that matches neither is returned unchanged with ListNone.
func DetectList(text string) ListInfo {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ListInfo{CleanText: trimmed}
	}

	first, size := utf8.DecodeRuneInString(trimmed)
	if bulletMarkers[first] {
		return ListInfo{
			Type:      types.ListBullet,
			Marker:    string(first),
			CleanText: strings.TrimSpace(trimmed[size:]),
		}
	}

	for _, re := range numberedPatterns {
		if m := re.FindStringSubmatchIndex(trimmed); m != nil {
			return ListInfo{
				Type:      types.ListNumbered,
				Marker:    trimmed[m[2]:m[3]],
				CleanText: strings.TrimSpace(trimmed[m[1]:]),
			}
		}
	}

	return ListInfo{CleanText: trimmed}
}
