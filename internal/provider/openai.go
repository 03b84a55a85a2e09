package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Default models for the OpenAI-compatible backends.
const (
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultOpenRouterModel = "amazon/nova-2-lite-v1:free"
	openRouterBaseURL      = "https://openrouter.ai/api/v1/"
)

// OpenAI talks to the Chat Completions API. OpenRouter speaks the same
// protocol and is served by this type with a different base URL.
type OpenAI struct {
	name   string
	model  string
	client openai.Client
}

// NewOpenAI returns a provider for api.openai.com.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	cfg.Name = NameOpenAI
	return newChatCompletions(cfg, DefaultOpenAIModel)
}

// NewOpenRouter returns a provider for openrouter.ai.
func NewOpenRouter(cfg Config) (*OpenAI, error) {
	cfg.Name = NameOpenRouter
	if cfg.BaseURL == "" {
		cfg.BaseURL = openRouterBaseURL
	}
	return newChatCompletions(cfg, DefaultOpenRouterModel,
		option.WithHeader("X-Title", "go-docgen"),
	)
}

func newChatCompletions(cfg Config, defaultModel string, extra ...option.RequestOption) (*OpenAI, error) {
	if err := requireKey(cfg); err != nil {
		return nil, err
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extra...)

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &OpenAI{
		name:   cfg.Name,
		model:  model,
		client: openai.NewClient(opts...),
	}, nil
}

// Name implements ContentProvider.
func (p *OpenAI) Name() string { return p.name }

// Model returns the model used when a request names none.
func (p *OpenAI) Model() string { return p.model }

// Generate implements ContentProvider.
func (p *OpenAI) Generate(ctx context.Context, req Request) (*Response, error) {
	req = req.withDefaults(p.model)
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", describe(p.name, req.Model), err)
	}
	if len(completion.Choices) == 0 {
		return nil, emptyResponse(p.name, "")
	}

	choice := completion.Choices[0]
	text := choice.Message.Content
	if strings.TrimSpace(text) == "" {
		return nil, emptyResponse(p.name, string(choice.FinishReason))
	}

	model := string(completion.Model)
	if model == "" {
		model = req.Model
	}
	return &Response{
		Text:         text,
		InputTokens:  int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
		Model:        model,
		FinishReason: string(choice.FinishReason),
	}, nil
}
