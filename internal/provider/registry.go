package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Model is one selectable model.
type Model struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Info describes a configured provider for listing.
type Info struct {
	Name         string  `json:"-"`
	DisplayName  string  `json:"name"`
	DefaultModel string  `json:"default"`
	Models       []Model `json:"models"`
}

// catalog holds display names and suggested models per provider.
var catalog = map[string]Info{
	NameGemini: {
		DisplayName: "Google Gemini",
		Models: []Model{
			{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash"},
			{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro"},
			{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash"},
		},
	},
	NameOpenAI: {
		DisplayName: "OpenAI",
		Models: []Model{
			{ID: "gpt-4o-mini", Name: "GPT-4o Mini"},
			{ID: "gpt-4o", Name: "GPT-4o"},
			{ID: "gpt-4-turbo", Name: "GPT-4 Turbo"},
			{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo"},
		},
	},
	NameOpenRouter: {
		DisplayName: "OpenRouter",
		Models: []Model{
			{ID: "amazon/nova-2-lite-v1:free", Name: "Amazon Nova 2 Lite v1 (free)"},
			{ID: "tngtech/deepseek-r1t-chimera:free", Name: "DeepSeek R1T Chimera (free)"},
			{ID: "openai/gpt-oss-20b:free", Name: "GPT-OSS 20B (free)"},
			{ID: "qwen/qwen3-coder:free", Name: "Qwen3 Coder (free)"},
			{ID: "nvidia/nemotron-nano-9b-v2:free", Name: "NemoTron Nano 9B v2 (free)"},
		},
	},
	NameAnthropic: {
		DisplayName: "Anthropic",
		Models: []Model{
			{ID: "claude-sonnet-4-5", Name: "Claude Sonnet 4.5"},
			{ID: "claude-haiku-4-5", Name: "Claude Haiku 4.5"},
		},
	},
}

// modeler is implemented by providers that report their default model.
type modeler interface {
	Model() string
}

// Registry maps provider names to ready providers. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ContentProvider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]ContentProvider)}
}

// Add registers p under its name, replacing any previous entry.
func (r *Registry) Add(p ContentProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[strings.ToLower(p.Name())] = p
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (ContentProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// Available describes every registered provider, sorted by name.
// The configured default model is listed even when the catalog omits it.
func (r *Registry) Available() []Info {
	names := r.Names()
	infos := make([]Info, 0, len(names))
	for _, name := range names {
		p, _ := r.Get(name)
		info := catalog[name]
		info.Name = name
		if info.DisplayName == "" {
			info.DisplayName = name
		}
		info.Models = append([]Model(nil), info.Models...)
		if m, ok := p.(modeler); ok {
			info.DefaultModel = m.Model()
		}
		if info.DefaultModel != "" && !hasModel(info.Models, info.DefaultModel) {
			info.Models = append([]Model{{ID: info.DefaultModel, Name: info.DefaultModel}}, info.Models...)
		}
		infos = append(infos, info)
	}
	return infos
}

func hasModel(models []Model, id string) bool {
	for _, m := range models {
		if m.ID == id {
			return true
		}
	}
	return false
}

// FromConfigs builds a registry from every config carrying an API key.
// Configs without a key are skipped; any other construction error aborts.
func FromConfigs(ctx context.Context, cfgs []Config) (*Registry, error) {
	r := NewRegistry()
	for _, cfg := range cfgs {
		if strings.TrimSpace(cfg.APIKey) == "" {
			continue
		}
		p, err := New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		r.Add(p)
	}
	return r, nil
}
