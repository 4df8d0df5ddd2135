// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package privacy

import (
	"github.com/pdiddy/file-converter/pkg/types"
)

// replacements run in order; cards go first so that phone and SSN
// patterns cannot consume parts of a card number.
var replacements = []struct {
	name  string
	token string
}{
	{"credit_card", "[CARD]"},
	{"ssn", "[SSN]"},
	{"email", "[EMAIL]"},
	{"phone", "[PHONE]"},
}

func patternByName(name string) pattern {
	for _, p := range patterns {
		if p.name == name {
			return p
		}
	}
	panic("privacy: unknown pattern " + name)
}

// Anonymize replaces card numbers, SSNs, emails, and phone numbers with
// placeholder tokens.
func Anonymize(text string) string {
	for _, r := range replacements {
		text = patternByName(r.name).re.ReplaceAllString(text, r.token)
	}
	return text
}

// AnonymizeLayout returns a copy of l with file metadata removed and every
// block's text anonymised. The input is not modified.
func AnonymizeLayout(l *types.Layout) *types.Layout {
	out := &types.Layout{
		TotalPages: l.TotalPages,
		Pages:      make([]types.PageLayout, len(l.Pages)),
	}
	for i, p := range l.Pages {
		np := p
		np.Blocks = make([]types.Block, len(p.Blocks))
		for j, b := range p.Blocks {
			b.Text = Anonymize(b.Text)
			b.CleanText = Anonymize(b.CleanText)
			np.Blocks[j] = b
		}
		out.Pages[i] = np
	}
	return out
}

// ShouldUseLocal reports whether a layout must stay on the machine: it
// contains sensitive content and either AI processing is disabled or
// strict mode is on.
func ShouldUseLocal(l *types.Layout, strict, disableAI bool) bool {
	if !CheckLayout(l).Sensitive() {
		return false
	}
	return disableAI || strict
}
