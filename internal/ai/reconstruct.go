// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/file-converter/pkg/types"
)

// Pass selects what the model is asked to do with a layout.
type Pass string

const (
	PassLayout Pass = "layout"
	PassStyle  Pass = "style"
	PassHybrid Pass = "hybrid"
)

// ErrInvalidReconstruction is returned by Validate.
var ErrInvalidReconstruction = errors.New("invalid AI reconstruction")

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Reconstructor turns layouts into styled document structures.
type Reconstructor struct {
	backend     Backend
	maxRetries  int
	temperature float64
	maxTokens   int
	log         logrus.FieldLogger
}

// NewReconstructor returns a Reconstructor that calls backend with the
// sampling settings from cfg.
func NewReconstructor(backend Backend, cfg types.AIConfig, log logrus.FieldLogger) *Reconstructor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Reconstructor{
		backend:     backend,
		maxRetries:  cfg.MaxRetries,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         log.WithField("component", "ai"),
	}
	if r.maxRetries <= 0 {
		r.maxRetries = 3
	}
	if r.temperature <= 0 {
		r.temperature = DefaultTemperature
	}
	if r.maxTokens <= 0 {
		r.maxTokens = DefaultMaxTokens
	}
	return r
}

// Reconstruct sends l to the model for the given pass and parses the
// answer. A response that is not JSON yields a parse_error reconstruction
// rather than an error; only transport failures are returned as errors.
func (r *Reconstructor) Reconstruct(ctx context.Context, l *types.Layout, pass Pass) (types.Reconstruction, error) {
	system, user, err := buildPrompt(l, pass)
	if err != nil {
		return types.Reconstruction{}, err
	}

	log := r.log.WithFields(logrus.Fields{
		"pass":           pass,
		"pages":          l.TotalPages,
		"blocks":         l.TotalBlocks(),
		"prompt_version": PromptVersion,
	})
	log.Info("requesting AI reconstruction")

	text, err := callWithRetry(ctx, r.backend, system, user, CallOptions{
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
	}, r.maxRetries)
	if err != nil {
		return types.Reconstruction{}, fmt.Errorf("AI %s pass: %w", pass, err)
	}

	rec := ParseReconstruction(text)
	log.WithFields(logrus.Fields{
		"status":        rec.Status,
		"result_blocks": len(rec.Blocks),
	}).Info("AI reconstruction finished")
	return rec, nil
}

// Suggest asks the model for free-form JSON suggestions. A response that
// cannot be parsed yields an empty map; only transport failures are errors.
func (r *Reconstructor) Suggest(ctx context.Context, system, user string, maxTokens int) (map[string]any, error) {
	text, err := callWithRetry(ctx, r.backend, system, user, CallOptions{
		Temperature: r.temperature,
		MaxTokens:   maxTokens,
	}, r.maxRetries)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(StripFences(text)), &out); err != nil {
		r.log.WithError(err).Warn("AI suggestions were not valid JSON")
		return map[string]any{}, nil
	}
	return out, nil
}

// Ping sends a tiny document through the hybrid pass and validates the
// answer, as a connectivity check.
func (r *Reconstructor) Ping(ctx context.Context) (types.Reconstruction, error) {
	sample := &types.Layout{
		TotalPages: 1,
		Pages: []types.PageLayout{{
			Page: 1,
			Blocks: []types.Block{
				{Text: "Project Overview", X0: 72, Y0: 72, Font: "Arial-Bold", Size: 18},
				{Text: "• Scope and goals", X0: 90, Y0: 110, Font: "Arial", Size: 11, IndentLevel: 0},
				{Text: "• Timeline", X0: 90, Y0: 125, Font: "Arial", Size: 11, IndentLevel: 0},
				{Text: "The project starts in March.", X0: 72, Y0: 150, Font: "Arial", Size: 11},
			},
		}},
	}
	rec, err := r.Reconstruct(ctx, sample, PassHybrid)
	if err != nil {
		return rec, err
	}
	return rec, Validate(rec)
}

func callWithRetry(ctx context.Context, backend Backend, system, user string, opts CallOptions, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := backend.Complete(ctx, system, user, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// StripFences returns the content of the first fenced code block in s,
// preferring a ```json fence, or s trimmed when there is no fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	for _, open := range []string{"```json", "```"} {
		i := strings.Index(s, open)
		if i < 0 {
			continue
		}
		rest := s[i+len(open):]
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	return s
}

// ParseReconstruction decodes a model response. The response may be an
// object with a "blocks" list or a bare list. Structural problems are
// recorded in Issues rather than failing the parse.
func ParseReconstruction(raw string) types.Reconstruction {
	var doc any
	if err := json.Unmarshal([]byte(StripFences(raw)), &doc); err != nil {
		return types.Reconstruction{Status: types.ReconstructionParseError, RawText: raw}
	}

	rec := types.Reconstruction{Status: types.ReconstructionSuccess}

	var list any
	switch v := doc.(type) {
	case map[string]any:
		if notes, ok := v["ai_notes"].(string); ok {
			rec.Notes = notes
		}
		b, ok := v["blocks"]
		if !ok {
			rec.Issues = append(rec.Issues, "missing blocks field")
			return rec
		}
		list = b
	case []any:
		list = v
	default:
		rec.Issues = append(rec.Issues, "response is neither an object nor a list")
		return rec
	}

	items, ok := list.([]any)
	if !ok {
		rec.Issues = append(rec.Issues, "blocks is not a list")
		return rec
	}

	rec.Blocks = make([]types.StyledBlock, 0, len(items))
	for i, item := range items {
		sb, usable, problem := decodeBlock(item)
		if problem != "" {
			rec.Issues = append(rec.Issues, fmt.Sprintf("block %d: %s", i, problem))
		}
		if usable {
			rec.Blocks = append(rec.Blocks, sb)
		}
	}
	return rec
}

// decodeBlock reads one block object. A block that only carries
// original_text is still usable by callers that skip Validate, but it is
// reported as missing its text field.
func decodeBlock(item any) (sb types.StyledBlock, usable bool, problem string) {
	m, ok := item.(map[string]any)
	if !ok {
		return sb, false, "not an object"
	}
	raw, ok := m["text"]
	if !ok {
		problem = "missing text field"
		if raw, ok = m["original_text"]; !ok {
			return sb, false, problem
		}
	}
	text, ok := raw.(string)
	if !ok {
		return sb, false, "text is not a string"
	}

	sb.Text = text
	if style, ok := m["style"].(string); ok {
		sb.Style = style
	}
	if level, ok := m["level"].(float64); ok {
		sb.Level = int(level)
	}
	if idx, ok := m["original_indices"].([]any); ok {
		for _, v := range idx {
			if f, ok := v.(float64); ok {
				sb.OriginalIndices = append(sb.OriginalIndices, int(f))
			}
		}
	}
	return sb, true, problem
}

// Validate checks that a reconstruction parsed successfully and that every
// block carried a text field.
func Validate(rec types.Reconstruction) error {
	if rec.Status != types.ReconstructionSuccess {
		return fmt.Errorf("%w: status %s", ErrInvalidReconstruction, rec.Status)
	}
	if len(rec.Issues) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidReconstruction, strings.Join(rec.Issues, "; "))
	}
	return nil
}
