// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ai talks to an OpenAI-compatible chat completion service (Groq
// by default) to reconstruct document structure and to suggest
// formatting for spreadsheets and images.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pdiddy/file-converter/internal/httputil"
	"github.com/pdiddy/file-converter/pkg/types"
)

const (
	DefaultModel       = "llama-3.3-70b-versatile"
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 8000
)

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("AI API key not configured: set GROQ_API_KEY or .secrets/groq-api-key")

// CallOptions tune a single completion.
type CallOptions struct {
	Temperature float64
	MaxTokens   int
}

// Backend abstracts the chat completion service so tests can supply a mock.
type Backend interface {
	Complete(ctx context.Context, system, user string, opts CallOptions) (string, error)
}

// GroqBackend calls Groq through langchaingo's OpenAI client.
type GroqBackend struct {
	llm   llms.Model
	model string
}

// NewGroqBackend builds a backend from cfg. Missing model and base URL
// fall back to the Groq defaults.
func NewGroqBackend(cfg types.AIConfig) (*GroqBackend, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	llm, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithModel(model),
		openai.WithBaseURL(baseURL),
		openai.WithHTTPClient(newDoer(cfg)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating AI client: %w", err)
	}
	return &GroqBackend{llm: llm, model: model}, nil
}

// newDoer sends each completion request once. Reconstructor and Suggest
// retry whole calls with backoff, so a second retry layer here would
// multiply the attempts.
func newDoer(cfg types.AIConfig) *httputil.RetryClient {
	return &httputil.RetryClient{
		Client:     &http.Client{Timeout: cfg.Timeout},
		MaxRetries: httputil.NoRetry,
	}
}

// Model returns the model identifier in use.
func (g *GroqBackend) Model() string { return g.model }

// Complete sends a system and a user message and returns the text of the
// first choice.
func (g *GroqBackend) Complete(ctx context.Context, system, user string, opts CallOptions) (string, error) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	var callOpts []llms.CallOption
	callOpts = append(callOpts, llms.WithTemperature(opts.Temperature))
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}

	resp, err := g.llm.GenerateContent(ctx, msgs, callOpts...)
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", g.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("calling %s: empty response", g.model)
	}
	return resp.Choices[0].Content, nil
}
