// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/file-converter/pkg/types"
)

// paragraphGapRatio is the vertical gap, as a fraction of the font size,
// that separates two paragraphs.
const paragraphGapRatio = 0.8

// RenderMarkdown renders a layout as Markdown. Each page is introduced by
// a <!-- page N --> marker; headings are chosen from size and weight, list
// items keep their nesting, and consecutive body lines are joined into
// paragraphs.
func RenderMarkdown(l *types.Layout) string {
	var b strings.Builder
	for _, p := range l.Pages {
		fmt.Fprintf(&b, "<!-- page %d -->\n\n", p.Page)
		renderPage(&b, p.Blocks)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderPage(b *strings.Builder, blocks []types.Block) {
	var para []string
	inList := false
	var prev *types.Block

	flushPara := func() {
		if len(para) > 0 {
			b.WriteString(strings.Join(para, " "))
			b.WriteString("\n\n")
			para = nil
		}
	}
	endList := func() {
		if inList {
			b.WriteString("\n")
			inList = false
		}
	}

	for i := range blocks {
		blk := blocks[i]
		if heading := headingPrefix(blk); heading != "" {
			flushPara()
			endList()
			b.WriteString(heading + blk.CleanText + "\n\n")
			prev = &blocks[i]
			continue
		}

		switch blk.ListType {
		case types.ListBullet, types.ListNumbered:
			flushPara()
			marker := "-"
			if blk.ListType == types.ListNumbered {
				marker = orderedMarker(blk.ListMarker)
			}
			b.WriteString(strings.Repeat("  ", blk.IndentLevel))
			b.WriteString(marker + " " + blk.CleanText + "\n")
			inList = true
		default:
			endList()
			if prev != nil && len(para) > 0 && blk.Y0-prev.Y1 > prev.Size*paragraphGapRatio {
				flushPara()
			}
			para = append(para, blk.Text)
		}
		prev = &blocks[i]
	}
	flushPara()
	endList()
}

func headingPrefix(blk types.Block) string {
	if !blk.IsPotentialHeading || blk.ListType != types.ListNone {
		return ""
	}
	switch {
	case blk.Size >= 18:
		return "# "
	case blk.Size >= headingMinSize:
		return "## "
	case IsBoldFont(blk.Font):
		return "### "
	}
	return ""
}

// orderedMarker rewrites a detected list marker ("3)", "a", "ii", "B.")
// as a Markdown ordered-list marker carrying the item's ordinal.
func orderedMarker(marker string) string {
	m := strings.TrimRight(marker, ".)")
	n := 1
	switch {
	case m == "":
	case m[0] >= '0' && m[0] <= '9':
		if v, err := strconv.Atoi(m); err == nil {
			n = v
		}
	case len(m) == 1 && m[0] >= 'a' && m[0] <= 'z':
		n = int(m[0]-'a') + 1
	case len(m) == 1 && m[0] >= 'A' && m[0] <= 'Z':
		n = int(m[0]-'A') + 1
	default:
		n = romanValue(m)
	}
	return strconv.Itoa(n) + "."
}

// romanValue parses lower-case roman numerals made of i, v and x.
func romanValue(s string) int {
	values := map[byte]int{'i': 1, 'v': 5, 'x': 10}
	total := 0
	for i := 0; i < len(s); i++ {
		v := values[s[i]]
		if v == 0 {
			return 1
		}
		if i+1 < len(s) && values[s[i+1]] > v {
			total -= v
		} else {
			total += v
		}
	}
	return total
}
