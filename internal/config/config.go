package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-docgen/internal/fileutil"
	"github.com/alnah/go-docgen/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDir is the directory name under the user config directory.
const AppDir = "go-docgen"

// Field length limits for multi-tenant safety.
const (
	MaxTitleLength       = 200  // Document title
	MaxNameLength        = 200  // Author
	MaxSubjectLength     = 200  // Subject line
	MaxPageSizeLength    = 10   // "letter", "a4", "legal"
	MaxOrientationLength = 10   // "portrait", "landscape"
	MaxPathLength        = 4096 // Filesystem paths
	MaxModelLength       = 200  // "amazon/nova-2-lite-v1:free"
)

// Provider generation bounds.
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
	MinMaxTokens   = 100
	MaxMaxTokens   = 4096
	MinChunks      = 1
	MaxChunks      = 5
)

// Config holds all configuration for document generation and serving.
type Config struct {
	Document DocumentConfig `yaml:"document"`
	Page     PageConfig     `yaml:"page"`
	Render   RenderConfig   `yaml:"render"`
	Provider ProviderConfig `yaml:"provider"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`

	// Secrets only ever come from the environment.
	Secrets Secrets `yaml:"-"`
}

// DocumentConfig holds metadata defaults.
type DocumentConfig struct {
	Title   string `yaml:"title"`   // Empty = derived from file name or generated
	Author  string `yaml:"author"`  // Optional
	Subject string `yaml:"subject"` // Optional
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal" (default: "letter")
	Orientation string  `yaml:"orientation"` // "portrait", "landscape" (default: "portrait")
	Margin      float64 `yaml:"margin"`      // inches (default: 0.75)
}

// RenderConfig selects the PDF backend.
type RenderConfig struct {
	Backend string `yaml:"backend"` // "native" or "chrome"
	Timeout string `yaml:"timeout"` // Go duration, e.g. "30s"
	CSSFile string `yaml:"cssFile"` // Extra CSS for the chrome backend
	Workers int    `yaml:"workers"` // 0 = auto
}

// ProviderConfig holds content generation defaults.
type ProviderConfig struct {
	Default     string            `yaml:"default"`     // Provider used when none is named
	Models      map[string]string `yaml:"models"`      // Provider name -> model override
	Temperature float64           `yaml:"temperature"` // 0-2
	MaxTokens   int               `yaml:"maxTokens"`   // Per request
	Chunks      int               `yaml:"chunks"`      // Continuation chunks, 1-5
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr          string   `yaml:"addr"`
	JobTTL        string   `yaml:"jobTTL"`        // Go duration
	ArtifactDir   string   `yaml:"artifactDir"`   // Used when S3 is not configured
	Retention     string   `yaml:"retention"`     // Go duration; artifacts older than this are swept
	SweepSchedule string   `yaml:"sweepSchedule"` // cron spec or descriptor
	RedisAddr     string   `yaml:"redisAddr"`     // Empty = in-memory jobs
	S3            S3Config `yaml:"s3"`
}

// S3Config locates the artifact bucket. Credentials come from Secrets or
// the default AWS chain.
type S3Config struct {
	Bucket   string `yaml:"bucket"` // Empty = file store
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // S3-compatible endpoints
}

// LogConfig selects the logger mode.
type LogConfig struct {
	Mode string `yaml:"mode"` // "dev" or "prod"
}

// Secrets are never read from or written to YAML.
type Secrets struct {
	GeminiAPIKey     string
	OpenAIAPIKey     string
	OpenRouterAPIKey string
	AnthropicAPIKey  string
	ServerAPIKey     string
	S3AccessKey      string
	S3SecretKey      string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Page: PageConfig{
			Size:        "letter",
			Orientation: "portrait",
			Margin:      0.75,
		},
		Render: RenderConfig{
			Backend: "native",
			Timeout: "30s",
		},
		Provider: ProviderConfig{
			Default:     "gemini",
			Models:      map[string]string{},
			Temperature: 0.7,
			MaxTokens:   2048,
			Chunks:      1,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			JobTTL:        "24h",
			ArtifactDir:   "artifacts",
			Retention:     "24h",
			SweepSchedule: "@every 10m",
		},
		Log: LogConfig{Mode: "dev"},
	}
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("document.title", c.Document.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("document.author", c.Document.Author, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("document.subject", c.Document.Subject, MaxSubjectLength); err != nil {
		return err
	}

	if err := validateFieldLength("page.size", c.Page.Size, MaxPageSizeLength); err != nil {
		return err
	}
	if err := validateFieldLength("page.orientation", c.Page.Orientation, MaxOrientationLength); err != nil {
		return err
	}

	switch strings.ToLower(c.Render.Backend) {
	case "", "native", "chrome":
	default:
		return fmt.Errorf("%w: render.backend %q (must be native or chrome)", ErrInvalidValue, c.Render.Backend)
	}
	if err := validateFieldLength("render.cssFile", c.Render.CSSFile, MaxPathLength); err != nil {
		return err
	}
	if c.Render.Workers < 0 {
		return fmt.Errorf("%w: render.workers must not be negative, got %d", ErrInvalidValue, c.Render.Workers)
	}

	if c.Provider.Temperature < MinTemperature || c.Provider.Temperature > MaxTemperature {
		return fmt.Errorf("%w: provider.temperature must be between %.0f and %.0f, got %.2f",
			ErrInvalidValue, MinTemperature, MaxTemperature, c.Provider.Temperature)
	}
	if c.Provider.MaxTokens != 0 && (c.Provider.MaxTokens < MinMaxTokens || c.Provider.MaxTokens > MaxMaxTokens) {
		return fmt.Errorf("%w: provider.maxTokens must be between %d and %d, got %d",
			ErrInvalidValue, MinMaxTokens, MaxMaxTokens, c.Provider.MaxTokens)
	}
	if c.Provider.Chunks != 0 && (c.Provider.Chunks < MinChunks || c.Provider.Chunks > MaxChunks) {
		return fmt.Errorf("%w: provider.chunks must be between %d and %d, got %d",
			ErrInvalidValue, MinChunks, MaxChunks, c.Provider.Chunks)
	}
	for name, model := range c.Provider.Models {
		if err := validateFieldLength("provider.models."+name, model, MaxModelLength); err != nil {
			return err
		}
	}

	durations := []struct{ field, value string }{
		{"render.timeout", c.Render.Timeout},
		{"server.jobTTL", c.Server.JobTTL},
		{"server.retention", c.Server.Retention},
	}
	for _, d := range durations {
		if _, err := parsePositiveDuration(d.field, d.value); err != nil {
			return err
		}
	}
	if err := validateFieldLength("server.artifactDir", c.Server.ArtifactDir, MaxPathLength); err != nil {
		return err
	}

	return nil
}

// RenderTimeout returns render.timeout, or 0 when unset.
func (c *Config) RenderTimeout() time.Duration {
	d, _ := parsePositiveDuration("render.timeout", c.Render.Timeout)
	return d
}

// JobTTL returns server.jobTTL, or 0 when unset.
func (c *Config) JobTTL() time.Duration {
	d, _ := parsePositiveDuration("server.jobTTL", c.Server.JobTTL)
	return d
}

// Retention returns server.retention, or 0 when unset.
func (c *Config) Retention() time.Duration {
	d, _ := parsePositiveDuration("server.retention", c.Server.Retention)
	return d
}

// Model returns the configured model override for provider, if any.
func (c *Config) Model(provider string) string {
	return c.Provider.Models[strings.ToLower(provider)]
}

// parsePositiveDuration parses value, treating empty as zero.
func parsePositiveDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, field, value)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values missing from the file keep their defaults.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.ReadFileStrict(configPath, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if cfg.Provider.Models == nil {
		cfg.Provider.Models = map[string]string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists where a config name is looked up, in order.
// Tries extensions .yaml then .yml, in the current directory first and
// then in the user config directory.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing SearchPaths entry.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
