// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates the outcome of a single file conversion.
type ConversionStatus string

const (
	ConversionNone    ConversionStatus = "none"
	ConversionDone    ConversionStatus = "converted"
	ConversionSkipped ConversionStatus = "skipped"
	ConversionFailed  ConversionStatus = "failed"
)

// ConversionRecord is one row of conversion history.
type ConversionRecord struct {
	// ID is assigned by the history store.
	ID int64 `json:"id" yaml:"id"`

	// Input is the source file path as given on the command line.
	Input string `json:"input" yaml:"input"`

	// Output is the path the backend produced.
	Output string `json:"output" yaml:"output"`

	// SourceExt and TargetExt are lower-case extensions without the dot.
	SourceExt string `json:"source_ext" yaml:"source_ext"`
	TargetExt string `json:"target_ext" yaml:"target_ext"`

	// Mode is the strategy or method that was requested (may be empty).
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`

	Status ConversionStatus `json:"status" yaml:"status"`

	// Error holds the failure message when Status is ConversionFailed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Bytes is the size of the output file.
	Bytes int64 `json:"bytes" yaml:"bytes"`

	Duration  time.Duration `json:"duration" yaml:"duration"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
}

// AuditEntry records a payload that was about to be sent to the AI service.
type AuditEntry struct {
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	TotalPages  int       `json:"total_pages" yaml:"total_pages"`
	TotalBlocks int       `json:"total_blocks" yaml:"total_blocks"`
	Data        *Layout   `json:"data" yaml:"data"`
}
