// Package provider asks large language models for document content.
//
// Each backend (OpenAI, OpenRouter, Anthropic, Gemini) implements
// ContentProvider. The helpers in this package build the formatting prompt,
// chain continuation requests for long documents and derive titles; they
// work against the interface and never against a concrete SDK.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider names.
const (
	NameGemini     = "gemini"
	NameOpenAI     = "openai"
	NameOpenRouter = "openrouter"
	NameAnthropic  = "anthropic"
)

// Generation defaults.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
)

// Sentinel errors.
var (
	ErrEmptyResponse   = errors.New("provider returned an empty response")
	ErrMissingAPIKey   = errors.New("missing API key")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrEmptyPrompt     = errors.New("prompt cannot be empty")
)

// Request is a single completion request. Prompt is sent verbatim.
type Request struct {
	Prompt      string
	Model       string  // empty = provider default
	Temperature float64 // 0 = DefaultTemperature
	MaxTokens   int     // 0 = DefaultMaxTokens
}

// Response is the text and accounting of one completion.
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

// ContentProvider generates text from a prompt.
type ContentProvider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Config selects and authenticates one provider.
type Config struct {
	Name    string
	APIKey  string
	Model   string // empty = the provider's default model
	BaseURL string // empty = the public endpoint
}

// New builds the provider named by cfg.Name.
func New(ctx context.Context, cfg Config) (ContentProvider, error) {
	var (
		p   ContentProvider
		err error
	)
	switch strings.ToLower(cfg.Name) {
	case NameOpenAI:
		p, err = NewOpenAI(cfg)
	case NameOpenRouter:
		p, err = NewOpenRouter(cfg)
	case NameAnthropic:
		p, err = NewAnthropic(cfg)
	case NameGemini:
		p, err = NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Name)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// withDefaults fills zero fields of req.
func (r Request) withDefaults(model string) Request {
	if r.Model == "" {
		r.Model = model
	}
	if r.Temperature == 0 {
		r.Temperature = DefaultTemperature
	}
	if r.MaxTokens == 0 {
		r.MaxTokens = DefaultMaxTokens
	}
	return r
}

// requireKey returns ErrMissingAPIKey when cfg has no key.
func requireKey(cfg Config) error {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return fmt.Errorf("%s: %w", cfg.Name, ErrMissingAPIKey)
	}
	return nil
}

// emptyResponse wraps ErrEmptyResponse with the finish reason.
func emptyResponse(name, finishReason string) error {
	if finishReason == "" {
		finishReason = "unknown"
	}
	return fmt.Errorf("%s: %w (finish reason: %s)", name, ErrEmptyResponse, finishReason)
}
