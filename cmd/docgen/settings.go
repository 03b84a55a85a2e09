package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/config"
	"github.com/alnah/go-docgen/internal/fileutil"
	"github.com/alnah/go-docgen/internal/hints"
	"github.com/alnah/go-docgen/internal/provider"
)

// loadConfig resolves the configuration shared by every command.
// Precedence: CLI flags > environment > config file > defaults; flags are
// merged by the caller.
func loadConfig(common commonFlags, env *Environment) (*config.Config, error) {
	e, err := config.LoadEnv(env.DotenvFiles...)
	if err != nil {
		return nil, err
	}
	if !common.quiet {
		for _, name := range config.UnknownEnvVars() {
			fmt.Fprintf(env.Stderr, "warning: unknown environment variable %s\n", name)
		}
	}

	name := common.config
	if name == "" {
		name = e.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		cfg, err = config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	e.Apply(cfg)
	return cfg, nil
}

// mergeDocumentFlags overrides document defaults with CLI values.
func mergeDocumentFlags(cfg *config.Config, f documentFlags) {
	setIfNotEmpty(&cfg.Document.Title, f.title)
	setIfNotEmpty(&cfg.Document.Author, f.author)
	setIfNotEmpty(&cfg.Document.Subject, f.subject)
}

// mergePageFlags overrides page settings with CLI values.
func mergePageFlags(cfg *config.Config, f pageFlags) {
	setIfNotEmpty(&cfg.Page.Size, f.size)
	setIfNotEmpty(&cfg.Page.Orientation, f.orientation)
	if f.margin != 0 {
		cfg.Page.Margin = f.margin
	}
}

// mergeBackendFlags overrides render settings with CLI values.
func mergeBackendFlags(cfg *config.Config, f backendFlags) {
	setIfNotEmpty(&cfg.Render.Backend, f.backend)
	setIfNotEmpty(&cfg.Render.Timeout, f.timeout)
	setIfNotEmpty(&cfg.Render.CSSFile, f.css)
}

// mergeProviderFlags overrides generation settings with CLI values.
func mergeProviderFlags(cfg *config.Config, f providerFlags) {
	setIfNotEmpty(&cfg.Provider.Default, f.name)
	if f.model != "" {
		cfg.Provider.Models[strings.ToLower(cfg.Provider.Default)] = f.model
	}
	if f.temperatureSet {
		cfg.Provider.Temperature = f.temperature
	}
	if f.maxTokens != 0 {
		cfg.Provider.MaxTokens = f.maxTokens
	}
	if f.chunks != 0 {
		cfg.Provider.Chunks = f.chunks
	}
}

// pageSettings builds validated page settings from cfg.
func pageSettings(cfg *config.Config) (*docgen.PageSettings, error) {
	page := docgen.DefaultPageSettings()
	setIfNotEmpty(&page.Size, cfg.Page.Size)
	setIfNotEmpty(&page.Orientation, cfg.Page.Orientation)
	if cfg.Page.Margin != 0 {
		page.Margin = cfg.Page.Margin
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return page, nil
}

// converterOptions translates render settings into converter options.
func converterOptions(cfg *config.Config) []docgen.Option {
	opts := []docgen.Option{docgen.WithBackend(cfg.Render.Backend)}
	if d := cfg.RenderTimeout(); d > 0 {
		opts = append(opts, docgen.WithTimeout(d))
	}
	return opts
}

// readCSS returns the content of the extra CSS file, if any.
func readCSS(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-specified CSS file
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadCSS, err)
	}
	return string(data), nil
}

// providerConfig returns the provider settings for name.
func providerConfig(cfg *config.Config, name string) (provider.Config, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, pc := range providerConfigs(cfg) {
		if pc.Name == name {
			return pc, nil
		}
	}
	return provider.Config{}, fmt.Errorf("%w: %q%s", provider.ErrUnknownProvider, name,
		hints.ForUnknownProvider(configuredProviders(cfg)))
}

// providerConfigs lists every supported provider with its key and model.
func providerConfigs(cfg *config.Config) []provider.Config {
	s := cfg.Secrets
	return []provider.Config{
		{Name: provider.NameGemini, APIKey: s.GeminiAPIKey, Model: cfg.Model(provider.NameGemini)},
		{Name: provider.NameOpenAI, APIKey: s.OpenAIAPIKey, Model: cfg.Model(provider.NameOpenAI)},
		{Name: provider.NameOpenRouter, APIKey: s.OpenRouterAPIKey, Model: cfg.Model(provider.NameOpenRouter)},
		{Name: provider.NameAnthropic, APIKey: s.AnthropicAPIKey, Model: cfg.Model(provider.NameAnthropic)},
	}
}

// configuredProviders names the providers that have an API key.
func configuredProviders(cfg *config.Config) []string {
	var names []string
	for _, pc := range providerConfigs(cfg) {
		if strings.TrimSpace(pc.APIKey) != "" {
			names = append(names, pc.Name)
		}
	}
	return names
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > docgen.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, docgen.MaxPoolSize)
	}
	return nil
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
