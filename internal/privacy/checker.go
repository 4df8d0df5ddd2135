// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package privacy detects sensitive content before documents are sent to
// an external AI service, anonymises payloads, and keeps an audit trail of
// what was sent.
package privacy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/file-converter/pkg/types"
)

type pattern struct {
	name string
	re   *regexp.Regexp
}

// patterns are matched case-insensitively, in report order.
var patterns = []pattern{
	{"ssn", regexp.MustCompile(`(?i)\b\d{3}-\d{2}-\d{4}\b`)},
	{"credit_card", regexp.MustCompile(`(?i)\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`)},
	{"email", regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)},
	{"phone", regexp.MustCompile(`(?i)\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)},
	{"ip_address", regexp.MustCompile(`(?i)\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)},
	{"api_key", regexp.MustCompile(`(?i)\b(sk|pk|api)[-_]?[a-zA-Z0-9]{20,}\b`)},
	{"password", regexp.MustCompile(`(?i)(password|passwd|pwd)[\s:=]+\S+`)},
}

// markers are confidentiality phrases searched as lower-case substrings.
var markers = []string{
	"confidential",
	"secret",
	"classified",
	"proprietary",
	"internal only",
	"do not distribute",
	"attorney-client",
	"hipaa",
	"private",
	"restricted",
}

// Report lists what the checker found.
type Report struct {
	Findings []string
}

// Sensitive reports whether anything was found.
func (r Report) Sensitive() bool { return len(r.Findings) > 0 }

func (r Report) String() string {
	if !r.Sensitive() {
		return "no sensitive content detected"
	}
	return strings.Join(r.Findings, "; ")
}

// Check scans text for personal data patterns and confidentiality markers.
func Check(text string) Report {
	var r Report
	for _, p := range patterns {
		if n := len(p.re.FindAllStringIndex(text, -1)); n > 0 {
			r.Findings = append(r.Findings, fmt.Sprintf("%s: %d occurrence(s)", p.name, n))
		}
	}
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			r.Findings = append(r.Findings, fmt.Sprintf("Confidentiality marker: '%s'", m))
		}
	}
	return r
}

// CheckLayout scans the text of every block in a layout.
func CheckLayout(l *types.Layout) Report {
	var texts []string
	for _, b := range l.Blocks() {
		if b.Text != "" {
			texts = append(texts, b.Text)
		}
	}
	return Check(strings.Join(texts, "\n"))
}
