package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Notes:
// - SDK adapters are exercised against httptest servers that mimic the
//   vendor wire format; no test reaches a real endpoint.

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr error
	}{
		{"openai", Config{Name: "openai", APIKey: "k"}, NameOpenAI, nil},
		{"openrouter", Config{Name: "OpenRouter", APIKey: "k"}, NameOpenRouter, nil},
		{"anthropic", Config{Name: "anthropic", APIKey: "k"}, NameAnthropic, nil},
		{"gemini", Config{Name: "gemini", APIKey: "k"}, NameGemini, nil},
		{"missing key", Config{Name: "openai"}, "", ErrMissingAPIKey},
		{"gemini missing key", Config{Name: "gemini", APIKey: " "}, "", ErrMissingAPIKey},
		{"unknown", Config{Name: "mistral", APIKey: "k"}, "", ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := New(context.Background(), tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				if p != nil {
					t.Error("provider should be nil on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if p.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.want)
			}
		})
	}
}

func TestDefaultModels(t *testing.T) {
	t.Parallel()

	or, err := NewOpenRouter(Config{APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	if or.Model() != DefaultOpenRouterModel {
		t.Errorf("OpenRouter model = %q", or.Model())
	}

	oa, err := NewOpenAI(Config{APIKey: "k", Model: "gpt-4o"})
	if err != nil {
		t.Fatal(err)
	}
	if oa.Model() != "gpt-4o" {
		t.Errorf("OpenAI model = %q, want configured override", oa.Model())
	}
}

func TestOpenAI_Generate(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini-2024",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "EXECUTIVE SUMMARY"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
		}`)
	}))
	defer srv.Close()

	p, err := NewOpenAI(Config{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := p.Generate(context.Background(), Request{Prompt: "Write", MaxTokens: 300})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Text != "EXECUTIVE SUMMARY" || resp.InputTokens != 12 || resp.OutputTokens != 4 {
		t.Errorf("response = %+v", resp)
	}
	if resp.Model != "gpt-4o-mini-2024" || resp.FinishReason != "stop" {
		t.Errorf("model/finish = %q/%q", resp.Model, resp.FinishReason)
	}
	if gotBody["model"] != DefaultOpenAIModel {
		t.Errorf("request model = %v, want %s", gotBody["model"], DefaultOpenAIModel)
	}
	if gotBody["max_tokens"] != float64(300) {
		t.Errorf("request max_tokens = %v", gotBody["max_tokens"])
	}
}

func TestOpenAI_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "empty content",
			status:  http.StatusOK,
			body:    `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"message":{"role":"assistant","content":""},"finish_reason":"length"}]}`,
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "no choices",
			status:  http.StatusOK,
			body:    `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`,
			wantErr: ErrEmptyResponse,
		},
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			body:   `{"error":{"message":"bad model","type":"invalid_request_error"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			p, err := NewOpenRouter(Config{APIKey: "k", BaseURL: srv.URL + "/"})
			if err != nil {
				t.Fatal(err)
			}
			_, err = p.Generate(context.Background(), Request{Prompt: "hi"})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if !strings.HasPrefix(err.Error(), NameOpenRouter) {
				t.Errorf("error should name the provider: %v", err)
			}
		})
	}
}

func TestAnthropic_Generate(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Api-Key") != "ak-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5",
			"content": [{"type": "text", "text": "Key Points:"}, {"type": "text", "text": "\n- Fast"}],
			"stop_reason": "end_turn",
			"stop_sequence": null,
			"usage": {"input_tokens": 9, "output_tokens": 5}
		}`)
	}))
	defer srv.Close()

	p, err := NewAnthropic(Config{APIKey: "ak-test", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := p.Generate(context.Background(), Request{Prompt: "List"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Text != "Key Points:\n- Fast" {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.InputTokens != 9 || resp.OutputTokens != 5 || resp.FinishReason != "end_turn" {
		t.Errorf("response = %+v", resp)
	}
	if gotBody["max_tokens"] != float64(DefaultMaxTokens) {
		t.Errorf("request max_tokens = %v, want default", gotBody["max_tokens"])
	}
}

func TestGemini_Generate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "MARKET OVERVIEW"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 7, "candidatesTokenCount": 3},
			"modelVersion": "gemini-2.5-flash"
		}`)
	}))
	defer srv.Close()

	p, err := NewGemini(context.Background(), Config{APIKey: "g-test", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := p.Generate(context.Background(), Request{Prompt: "Write"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Text != "MARKET OVERVIEW" || resp.InputTokens != 7 || resp.OutputTokens != 3 {
		t.Errorf("response = %+v", resp)
	}
	if resp.FinishReason != "STOP" {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
}
