// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ReconstructionStatus reports how an AI reconstruction response was handled.
type ReconstructionStatus string

const (
	ReconstructionSuccess    ReconstructionStatus = "success"
	ReconstructionParseError ReconstructionStatus = "parse_error"
	// ReconstructionLayout marks a structure built from raw layout blocks
	// without any AI involvement.
	ReconstructionLayout ReconstructionStatus = "layout"
)

// Paragraph styles understood by the DOCX builder.
const (
	StyleTitle        = "Title"
	StyleSubtitle     = "Subtitle"
	StyleHeading1     = "Heading 1"
	StyleHeading2     = "Heading 2"
	StyleHeading3     = "Heading 3"
	StyleHeading4     = "Heading 4"
	StyleHeading5     = "Heading 5"
	StyleListBullet   = "List Bullet"
	StyleListNumber   = "List Number"
	StyleNormal       = "Normal"
	StyleQuote        = "Quote"
	StyleIntenseQuote = "Intense Quote"
	StyleCaption      = "Caption"
)

// StyledBlock is a paragraph with a semantic style, as returned by the AI
// service or derived from layout heuristics.
type StyledBlock struct {
	Text            string `json:"text" yaml:"text"`
	Style           string `json:"style,omitempty" yaml:"style,omitempty"`
	Level           int    `json:"level,omitempty" yaml:"level,omitempty"`
	OriginalIndices []int  `json:"original_indices,omitempty" yaml:"original_indices,omitempty"`
}

// Reconstruction is the document structure handed to the DOCX builder.
type Reconstruction struct {
	Status ReconstructionStatus `json:"status" yaml:"status"`
	Blocks []StyledBlock        `json:"blocks,omitempty" yaml:"blocks,omitempty"`

	// Notes carries free-form remarks from the model (ai_notes).
	Notes string `json:"ai_notes,omitempty" yaml:"ai_notes,omitempty"`

	// RawText is the unparsed model output when Status is parse_error.
	RawText string `json:"raw_text,omitempty" yaml:"raw_text,omitempty"`

	// Issues lists structural problems found while decoding the response.
	Issues []string `json:"issues,omitempty" yaml:"issues,omitempty"`
}
