// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tesseract implements ocr.Engine with the Tesseract library.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/pdiddy/file-converter/internal/ocr"
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "eng"

// Engine runs Tesseract through gosseract. A fresh client is created per
// image; clients are not safe for concurrent use.
type Engine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// New returns an Engine for the given languages (for example "eng" or
// "eng+deu").
func New(language string) *Engine {
	if language == "" {
		language = DefaultLanguage
	}
	return &Engine{
		languages:     strings.Split(language, "+"),
		clientFactory: gosseract.NewClient,
	}
}

// Words implements ocr.Engine.
func (e *Engine) Words(ctx context.Context, img []byte) ([]ocr.Word, error) {
	c, err := e.client(ctx, img)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	boxes, err := c.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("recognize words: %w", err)
	}
	words := make([]ocr.Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, ocr.Word{
			Text:       b.Word,
			Confidence: b.Confidence,
			Block:      b.BlockNum,
			Paragraph:  b.ParNum,
			Line:       b.LineNum,
		})
	}
	return words, nil
}

// Text implements ocr.Engine.
func (e *Engine) Text(ctx context.Context, img []byte) (string, error) {
	c, err := e.client(ctx, img)
	if err != nil {
		return "", err
	}
	defer c.Close()

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (e *Engine) client(ctx context.Context, img []byte) (*gosseract.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := e.clientFactory()
	if err := c.SetLanguage(e.languages...); err != nil {
		c.Close()
		return nil, fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetImageFromBytes(img); err != nil {
		c.Close()
		return nil, fmt.Errorf("set image: %w", err)
	}
	return c, nil
}

// Version reports the linked Tesseract version.
func Version() string { return gosseract.Version() }
