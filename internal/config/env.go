package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix marks the variables this module owns.
const EnvPrefix = "DOCGEN_"

// Env holds configuration read from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type Env struct {
	ConfigPath string        `envconfig:"DOCGEN_CONFIG"`
	Backend    string        `envconfig:"DOCGEN_BACKEND"`
	Timeout    time.Duration `envconfig:"DOCGEN_TIMEOUT"`
	Workers    int           `envconfig:"DOCGEN_WORKERS"`
	PageSize   string        `envconfig:"DOCGEN_PAGE_SIZE"`
	Author     string        `envconfig:"DOCGEN_AUTHOR"`
	Provider   string        `envconfig:"DOCGEN_PROVIDER"`
	LogMode    string        `envconfig:"DOCGEN_LOG_MODE"`

	Addr          string `envconfig:"DOCGEN_ADDR"`
	APIKey        string `envconfig:"DOCGEN_API_KEY"`
	ArtifactDir   string `envconfig:"DOCGEN_ARTIFACT_DIR"`
	SweepSchedule string `envconfig:"DOCGEN_SWEEP_SCHEDULE"`
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	S3Bucket      string `envconfig:"DOCGEN_S3_BUCKET"`
	S3Prefix      string `envconfig:"DOCGEN_S3_PREFIX"`
	S3Region      string `envconfig:"DOCGEN_S3_REGION"`
	S3Endpoint    string `envconfig:"DOCGEN_S3_ENDPOINT"`
	S3AccessKey   string `envconfig:"DOCGEN_S3_ACCESS_KEY"`
	S3SecretKey   string `envconfig:"DOCGEN_S3_SECRET_KEY"`

	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY"`
	GeminiModel      string `envconfig:"GEMINI_MODEL"`
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel      string `envconfig:"OPENAI_MODEL"`
	OpenRouterAPIKey string `envconfig:"OPENROUTER_API_KEY"`
	OpenRouterModel  string `envconfig:"OPENROUTER_MODEL"`
	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicModel   string `envconfig:"ANTHROPIC_MODEL"`
}

// knownEnvVars lists valid DOCGEN_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOCGEN_CONFIG":         true,
	"DOCGEN_BACKEND":        true,
	"DOCGEN_TIMEOUT":        true,
	"DOCGEN_WORKERS":        true,
	"DOCGEN_PAGE_SIZE":      true,
	"DOCGEN_AUTHOR":         true,
	"DOCGEN_PROVIDER":       true,
	"DOCGEN_LOG_MODE":       true,
	"DOCGEN_ADDR":           true,
	"DOCGEN_API_KEY":        true,
	"DOCGEN_ARTIFACT_DIR":   true,
	"DOCGEN_SWEEP_SCHEDULE": true,
	"DOCGEN_S3_BUCKET":      true,
	"DOCGEN_S3_PREFIX":      true,
	"DOCGEN_S3_REGION":      true,
	"DOCGEN_S3_ENDPOINT":    true,
	"DOCGEN_S3_ACCESS_KEY":  true,
	"DOCGEN_S3_SECRET_KEY":  true,
}

// LoadEnv loads dotenv files (".env" when none are named) without
// overriding variables already set, then reads the environment.
// Missing dotenv files are not an error.
func LoadEnv(dotenvFiles ...string) (*Env, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: loading %s: %v", ErrConfigParse, f, err)
		}
	}

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return &env, nil
}

// UnknownEnvVars returns unrecognized DOCGEN_* variable names, sorted.
// Helps catch typos like DOCGEN_BAKCEND.
func UnknownEnvVars() []string {
	var unknown []string
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, EnvPrefix) && !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Apply overlays non-empty environment values onto c.
// Precedence: CLI flags > environment > config file > defaults
// (flags are applied later by the CLI).
func (e *Env) Apply(c *Config) {
	setString(&c.Render.Backend, e.Backend)
	if e.Timeout > 0 {
		c.Render.Timeout = e.Timeout.String()
	}
	if e.Workers > 0 {
		c.Render.Workers = e.Workers
	}
	setString(&c.Page.Size, e.PageSize)
	setString(&c.Document.Author, e.Author)
	setString(&c.Provider.Default, e.Provider)
	setString(&c.Log.Mode, e.LogMode)

	setString(&c.Server.Addr, e.Addr)
	setString(&c.Server.ArtifactDir, e.ArtifactDir)
	setString(&c.Server.SweepSchedule, e.SweepSchedule)
	setString(&c.Server.RedisAddr, e.RedisAddr)
	setString(&c.Server.S3.Bucket, e.S3Bucket)
	setString(&c.Server.S3.Prefix, e.S3Prefix)
	setString(&c.Server.S3.Region, e.S3Region)
	setString(&c.Server.S3.Endpoint, e.S3Endpoint)

	if c.Provider.Models == nil {
		c.Provider.Models = map[string]string{}
	}
	for name, model := range map[string]string{
		"gemini":     e.GeminiModel,
		"openai":     e.OpenAIModel,
		"openrouter": e.OpenRouterModel,
		"anthropic":  e.AnthropicModel,
	} {
		if model != "" {
			c.Provider.Models[name] = model
		}
	}

	c.Secrets = Secrets{
		GeminiAPIKey:     e.GeminiAPIKey,
		OpenAIAPIKey:     e.OpenAIAPIKey,
		OpenRouterAPIKey: e.OpenRouterAPIKey,
		AnthropicAPIKey:  e.AnthropicAPIKey,
		ServerAPIKey:     e.APIKey,
		S3AccessKey:      e.S3AccessKey,
		S3SecretKey:      e.S3SecretKey,
	}
}

// setString assigns v to dst when v is not empty.
func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
