package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini talks to the Gemini Developer API.
type Gemini struct {
	model  string
	client *genai.Client
}

// NewGemini returns a provider for the Gemini API. The context only bounds
// client construction.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	cfg.Name = NameGemini
	if err := requireKey(cfg); err != nil {
		return nil, err
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{model: model, client: client}, nil
}

// Name implements ContentProvider.
func (p *Gemini) Name() string { return NameGemini }

// Model returns the model used when a request names none.
func (p *Gemini) Model() string { return p.model }

// Generate implements ContentProvider.
func (p *Gemini) Generate(ctx context.Context, req Request) (*Response, error) {
	req = req.withDefaults(p.model)
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", describe(NameGemini, req.Model), err)
	}

	var finish string
	if len(resp.Candidates) > 0 {
		finish = string(resp.Candidates[0].FinishReason)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, emptyResponse(NameGemini, finish)
	}

	out := &Response{
		Text:         text,
		Model:        req.Model,
		FinishReason: finish,
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		out.InputTokens = int(u.PromptTokenCount)
		out.OutputTokens = int(u.CandidatesTokenCount)
	}
	return out, nil
}
