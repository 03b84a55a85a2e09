// Package logger wraps zap with the key-value API used by the CLI, the HTTP
// server and the job runner. Values logged under secret-looking keys are
// redacted before they reach the encoder.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Modes accepted by New.
const (
	ModeDevelopment = "dev"
	ModeProduction  = "prod"
)

// Redacted replaces the value of a secret key.
const Redacted = "[REDACTED]"

// Logger is a structured logger taking alternating key-value pairs.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a logger for mode ("dev" or "prod", case-insensitive).
// Development mode logs at debug level with a console encoder; production
// mode logs JSON at info level. Verbose lowers production to debug.
func New(mode string, verbose bool) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
	case "", "dev", "development":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("logger: unknown mode %q (want dev or prod)", mode)
	}

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return &Logger{sugar: z.Sugar()}, nil
}

// NewFromCore wraps an existing core. Tests use it with zaptest/observer.
func NewFromCore(core zapcore.Core) *Logger {
	return &Logger{sugar: zap.New(core).Sugar()}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// Zap exposes the underlying logger for libraries that want one.
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, sanitizeKVs(keysAndValues)...)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, sanitizeKVs(keysAndValues)...)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, sanitizeKVs(keysAndValues)...)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, sanitizeKVs(keysAndValues)...)
}

// With returns a child logger that adds keysAndValues to every entry.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{sugar: l.sugar.With(sanitizeKVs(keysAndValues)...)}
}

// sanitizeKVs copies kv, redacting values whose key names a secret.
// A trailing key without a value is passed through for zap to report.
func sanitizeKVs(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key, ok := kv[i].(string)
		if ok && IsSecretKey(key) {
			out = append(out, key, Redacted)
			continue
		}
		out = append(out, kv[i], kv[i+1])
	}
	return out
}

// secretMarkers name secret keys. A key matches when, lower-cased and with
// dashes read as underscores, it equals a marker or ends in "_" + marker, so
// refresh_token is redacted and input_tokens is not.
var secretMarkers = []string{
	"token",
	"authorization",
	"password",
	"secret",
	"cookie",
	"api_key",
	"apikey",
}

// IsSecretKey reports whether values under key must not be logged.
func IsSecretKey(key string) bool {
	k := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
	for _, m := range secretMarkers {
		if k == m || strings.HasSuffix(k, "_"+m) {
			return true
		}
	}
	return false
}
