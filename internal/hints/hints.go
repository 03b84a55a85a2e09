// Package hints builds the "hint:" suffixes the docgen CLI appends to errors.
// Every hint renders as "\n  hint: <text>" so it lines up under the error.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-docgen/internal/fileutil"
)

const prefix = "\n  hint: "

// providerKeyVars lists the variables that enable each content provider.
var providerKeyVars = []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY", "ANTHROPIC_API_KEY"}

// ciMarkers are variables set by common CI runners.
var ciMarkers = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// IsInContainer reports whether /.dockerenv exists. Tests replace it.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// InCI reports whether a CI runner marker is set.
func InCI() bool {
	for _, name := range ciMarkers {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect suggests the rod variables that usually fix a failed
// Chrome launch, then the native backend as a way around Chrome entirely.
func ForBrowserConnect() string {
	var tips []string
	if (InCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		tips = append(tips, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		tips = append(tips, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	if len(tips) == 0 {
		return ""
	}
	return join(append(tips, "or use --backend native"))
}

// ForUnsupportedGlyph is shown when the native font cannot draw a character.
func ForUnsupportedGlyph() string {
	return wrap("the native backend's font covers Latin, Greek and Cyrillic; use --backend chrome for other scripts")
}

// ForTimeout suggests a longer render timeout.
func ForTimeout() string {
	return wrap("for large documents, raise --timeout (e.g. --timeout 2m)")
}

// ForConfigNotFound points at --config and, when one of the searched paths is
// the per-user config directory, offers that path as a place to create it.
func ForConfigNotFound(searchedPaths []string) string {
	tip := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(strings.ReplaceAll(p, `\`, "/"), ".config/go-docgen") {
			tip += " or create " + p
			break
		}
	}
	return wrap(tip)
}

// ForOutputDirectory is shown when the output directory cannot be created.
func ForOutputDirectory() string {
	return wrap("check parent directory exists and is writable")
}

// ForAPIKey names the variable holding the key for provider.
func ForAPIKey(provider string) string {
	if provider == "" {
		return ""
	}
	return wrap("set " + strings.ToUpper(provider) + "_API_KEY in the environment or in a .env file")
}

// ForUnknownProvider lists the configured providers, or the variables that
// configure one when there are none.
func ForUnknownProvider(available []string) string {
	if len(available) == 0 {
		return wrap("no provider is configured; set one of " + strings.Join(providerKeyVars, ", "))
	}
	return wrap("available: " + strings.Join(available, ", "))
}

// ForRedis is shown when the job store cannot reach Redis.
func ForRedis(addr string) string {
	return wrap("check that Redis listens on " + addr + ", or unset REDIS_ADDR to keep jobs in memory")
}

// ForS3 is shown when the artifact bucket cannot be configured.
func ForS3() string {
	return wrap("check DOCGEN_S3_REGION and credentials, or unset DOCGEN_S3_BUCKET to store PDFs on disk")
}

func wrap(tip string) string {
	if tip == "" {
		return ""
	}
	return prefix + tip
}

func join(tips []string) string {
	if len(tips) == 0 {
		return ""
	}
	return wrap(strings.Join(tips, "; "))
}
