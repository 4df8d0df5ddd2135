// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"math"
	"sort"
	"strings"
)

const (
	// lineTolerance is the vertical distance (points) beyond which a word
	// starts a new line.
	lineTolerance = 3.0

	// joinGap is the minimum horizontal gap (points) that gets a space
	// when words are joined into line text.
	joinGap = 2.0
)

// Line is a group of words that share a visual row.
type Line struct {
	Text   string
	Words  []string
	X0     float64
	Y0     float64
	X1     float64
	Y1     float64
	Font   string
	Size   float64
	source []Word
}

// GroupLines sorts words into reading order and groups them into lines.
// Words whose rounded top differs from the current line by more than
// lineTolerance start a new line.
func GroupLines(words []Word) []Line {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := round(sorted[i].Top, 1), round(sorted[j].Top, 1)
		if ti != tj {
			return ti < tj
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var lines []Line
	var current []Word
	currentY := math.Inf(-1)

	for _, w := range sorted {
		y := round(w.Top, 1)
		if len(current) > 0 && math.Abs(y-currentY) > lineTolerance {
			lines = append(lines, finalizeLine(current))
			current = nil
		}
		if len(current) == 0 {
			currentY = y
		}
		current = append(current, w)
	}
	if len(current) > 0 {
		lines = append(lines, finalizeLine(current))
	}
	return lines
}

// finalizeLine joins words left to right. A space is inserted where the
// PDF had one or where the gap to the previous word exceeds joinGap. The dominant font is the
// most frequent one, ties going to the first seen.
func finalizeLine(words []Word) Line {
	sort.SliceStable(words, func(i, j int) bool { return words[i].X0 < words[j].X0 })

	var b strings.Builder
	texts := make([]string, 0, len(words))
	var sizeSum float64
	for i, w := range words {
		if i > 0 && (w.SpaceBefore || w.X0-words[i-1].X1 > joinGap) {
			b.WriteByte(' ')
		}
		b.WriteString(w.Text)
		texts = append(texts, w.Text)
		sizeSum += w.Size
	}

	first, last := words[0], words[len(words)-1]
	return Line{
		Text:   b.String(),
		Words:  texts,
		X0:     first.X0,
		Y0:     first.Top,
		X1:     last.X1,
		Y1:     last.Bottom,
		Font:   dominantFont(words),
		Size:   round(sizeSum/float64(len(words)), 1),
		source: words,
	}
}

func dominantFont(words []Word) string {
	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		if _, seen := counts[w.Font]; !seen {
			order = append(order, w.Font)
		}
		counts[w.Font]++
	}
	best := ""
	bestN := 0
	for _, f := range order {
		if counts[f] > bestN {
			best, bestN = f, counts[f]
		}
	}
	if best == "" {
		return "unknown"
	}
	return best
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
