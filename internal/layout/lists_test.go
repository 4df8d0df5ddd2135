// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/file-converter/pkg/types"
)

func TestDetectList(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   types.ListType
		marker string
		clean  string
	}{
		{"bullet dot", "• First item", types.ListBullet, "•", "First item"},
		{"hyphen", "- dash item", types.ListBullet, "-", "dash item"},
		{"arrow", "→ next", types.ListBullet, "→", "next"},
		{"triangle", "▸ nested", types.ListBullet, "▸", "nested"},
		{"decimal dot", "1. Introduction", types.ListNumbered, "1.", "Introduction"},
		{"decimal paren", "12) Twelve", types.ListNumbered, "12)", "Twelve"},
		{"letter in parens", "(b) second", types.ListNumbered, "b", "second"},
		{"roman in parens", "(iv) fourth", types.ListNumbered, "iv", "fourth"},
		{"lower letter", "a. alpha", types.ListNumbered, "a.", "alpha"},
		{"upper letter", "B) Bravo", types.ListNumbered, "B)", "Bravo"},
		{"plain text", "Just a sentence.", types.ListNone, "", "Just a sentence."},
		{"number without space", "3.14 is pi", types.ListNone, "", "3.14 is pi"},
		{"empty", "   ", types.ListNone, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectList(tt.text)
			assert.Equal(t, tt.want, got.Type)
			assert.Equal(t, tt.marker, got.Marker)
			assert.Equal(t, tt.clean, got.CleanText)
		})
	}
}

func TestIndentLevel(t *testing.T) {
	tests := []struct {
		x0   float64
		want int
	}{
		{0, 0},
		{71.9, 0},
		{72, 0},
		{96.9, 0},
		{97, 1},
		{147, 3},
		{500, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IndentLevel(tt.x0), "x0=%v", tt.x0)
	}
}

func TestRelativeIndent(t *testing.T) {
	assert.Equal(t, 0, RelativeIndent(50, 50))
	assert.Equal(t, 0, RelativeIndent(40, 50))
	assert.Equal(t, 1, RelativeIndent(75, 50))
	assert.Equal(t, 8, RelativeIndent(250, 50))
}

func TestIsPotentialHeading(t *testing.T) {
	long := "This is a long sentence that keeps going well past one hundred characters so that it cannot be a heading."
	tests := []struct {
		name string
		text string
		font string
		size float64
		want bool
	}{
		{"short without period", "Overview", "Times", 11, true},
		{"large bold", long, "Arial-Bold", 16, true},
		{"long sentence body font", long, "Times", 11, false},
		{"short sentence with period", long[:40] + ".", "Times", 11, false},
		{"black face long", long, "Arial-Black", 11, false},
		{"black face short period", "Done.", "Arial-Black", 11, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPotentialHeading(tt.text, tt.font, tt.size))
		})
	}
}

func TestFontFaces(t *testing.T) {
	assert.True(t, IsBoldFont("TimesNewRoman-BoldItalic"))
	assert.True(t, IsItalicFont("TimesNewRoman-BoldItalic"))
	assert.True(t, IsItalicFont("Helvetica-Oblique"))
	assert.False(t, IsBoldFont("Helvetica"))
}
