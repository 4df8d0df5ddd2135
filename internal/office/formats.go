// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package office

import (
	"slices"
	"sort"
	"strings"
)

var supportedFormats = map[string][]string{
	"docx": {"pdf", "odt", "html", "txt", "rtf"},
	"doc":  {"pdf", "docx", "odt", "html", "txt", "rtf"},
	"xlsx": {"pdf", "ods", "csv", "html"},
	"xls":  {"pdf", "xlsx", "ods", "csv", "html"},
	"pptx": {"pdf", "odp", "html"},
	"ppt":  {"pdf", "pptx", "odp", "html"},
	"odt":  {"pdf", "docx", "html", "txt", "rtf"},
	"ods":  {"pdf", "xlsx", "csv", "html"},
	"odp":  {"pdf", "pptx", "html"},
	"rtf":  {"pdf", "docx", "odt", "html", "txt"},
	"txt":  {"pdf", "docx", "odt", "html"},
	"html": {"pdf", "docx", "odt"},
	"csv":  {"pdf", "xlsx", "ods"},
}

// SupportedFormats returns the input formats LibreOffice handles, each
// with its output formats. The result is a copy.
func SupportedFormats() map[string][]string {
	out := make(map[string][]string, len(supportedFormats))
	for k, v := range supportedFormats {
		out[k] = slices.Clone(v)
	}
	return out
}

// IsFormatSupported reports whether LibreOffice converts in to out. A
// leading dot and letter case are ignored.
func IsFormatSupported(in, out string) bool {
	return slices.Contains(supportedFormats[normalize(in)], normalize(out))
}

// InputFormats returns the supported input formats, sorted.
func InputFormats() []string {
	keys := make([]string, 0, len(supportedFormats))
	for k := range supportedFormats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalize(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
