package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-sonnet-4-5"

// Anthropic talks to the Messages API.
type Anthropic struct {
	model  string
	client anthropic.Client
}

// NewAnthropic returns a provider for api.anthropic.com.
func NewAnthropic(cfg Config) (*Anthropic, error) {
	cfg.Name = NameAnthropic
	if err := requireKey(cfg); err != nil {
		return nil, err
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &Anthropic{model: model, client: anthropic.NewClient(opts...)}, nil
}

// Name implements ContentProvider.
func (p *Anthropic) Name() string { return NameAnthropic }

// Model returns the model used when a request names none.
func (p *Anthropic) Model() string { return p.model }

// Generate implements ContentProvider.
func (p *Anthropic) Generate(ctx context.Context, req Request) (*Response, error) {
	req = req.withDefaults(p.model)
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", describe(NameAnthropic, req.Model), err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, emptyResponse(NameAnthropic, string(msg.StopReason))
	}

	model := string(msg.Model)
	if model == "" {
		model = req.Model
	}
	return &Response{
		Text:         text.String(),
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
		Model:        model,
		FinishReason: string(msg.StopReason),
	}, nil
}
