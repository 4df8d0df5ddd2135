// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ListType classifies a block as a list item.
type ListType string

const (
	ListNone     ListType = ""
	ListBullet   ListType = "bullet"
	ListNumbered ListType = "numbered"
)

// DocumentKind classifies a PDF by the content of its pages.
type DocumentKind string

const (
	DocumentText   DocumentKind = "text"
	DocumentImage  DocumentKind = "image"
	DocumentHybrid DocumentKind = "hybrid"
)

// DocumentMetadata holds file-level facts about a PDF.
type DocumentMetadata struct {
	Filename   string  `json:"filename,omitempty" yaml:"filename,omitempty"`
	FileSizeMB float64 `json:"file_size_mb,omitempty" yaml:"file_size_mb,omitempty"`
	Title      string  `json:"title,omitempty" yaml:"title,omitempty"`
	Author     string  `json:"author,omitempty" yaml:"author,omitempty"`
	Creator    string  `json:"creator,omitempty" yaml:"creator,omitempty"`
	Producer   string  `json:"producer,omitempty" yaml:"producer,omitempty"`
}

// Block is one visual line of a page with its position and typography.
// Coordinates are PDF points with the origin at the top-left of the page.
type Block struct {
	Text      string `json:"text" yaml:"text"`
	CleanText string `json:"clean_text" yaml:"clean_text"`

	X0 float64 `json:"x0" yaml:"x0"`
	Y0 float64 `json:"y0" yaml:"y0"`
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`

	Font string  `json:"font" yaml:"font"`
	Size float64 `json:"size" yaml:"size"`

	// IndentLevel is derived from the left edge (0 to 5).
	IndentLevel int `json:"indent_level" yaml:"indent_level"`

	ListType   ListType `json:"list_type,omitempty" yaml:"list_type,omitempty"`
	ListMarker string   `json:"list_marker,omitempty" yaml:"list_marker,omitempty"`

	IsPotentialHeading bool `json:"is_potential_heading" yaml:"is_potential_heading"`
	CharCount          int  `json:"char_count" yaml:"char_count"`
	WordCount          int  `json:"word_count" yaml:"word_count"`
}

// PageLayout holds the blocks of a single page.
type PageLayout struct {
	Page   int     `json:"page" yaml:"page"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Blocks []Block `json:"blocks" yaml:"blocks"`
}

// Layout is the positional model of a whole PDF.
type Layout struct {
	Metadata   DocumentMetadata `json:"metadata" yaml:"metadata"`
	TotalPages int              `json:"total_pages" yaml:"total_pages"`
	Pages      []PageLayout     `json:"pages" yaml:"pages"`
}

// Blocks returns every block of every page in reading order.
func (l *Layout) Blocks() []Block {
	var out []Block
	for _, p := range l.Pages {
		out = append(out, p.Blocks...)
	}
	return out
}

// TotalBlocks returns the number of blocks across all pages.
func (l *Layout) TotalBlocks() int {
	n := 0
	for _, p := range l.Pages {
		n += len(p.Blocks)
	}
	return n
}

// PDFAnalysis is the result of classifying each page as text or image.
type PDFAnalysis struct {
	Kind       DocumentKind `json:"kind" yaml:"kind"`
	TotalPages int          `json:"total_pages" yaml:"total_pages"`
	TextPages  int          `json:"text_pages" yaml:"text_pages"`
	ImagePages int          `json:"image_pages" yaml:"image_pages"`
}
