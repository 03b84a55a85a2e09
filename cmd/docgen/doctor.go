package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/config"
	"github.com/alnah/go-docgen/internal/hints"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// ErrNotReady is returned when doctor finds blocking problems.
var ErrNotReady = errors.New("environment not ready")

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string       `json:"status"`
	Backend   string       `json:"backend"`
	Chrome    chromeInfo   `json:"chrome"`
	Env       envInfo      `json:"environment"`
	System    systemInfo   `json:"system"`
	Providers providerInfo `json:"providers"`
	Warnings  []string     `json:"warnings,omitempty"`
	Errors    []string     `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable     bool   `json:"temp_writable"`
	ArtifactDir      string `json:"artifact_dir"`
	ArtifactWritable bool   `json:"artifact_writable"`
}

// providerInfo lists the providers that have credentials.
type providerInfo struct {
	Default    string   `json:"default"`
	Configured []string `json:"configured"`
}

// runDoctor checks that the environment can render and generate.
// Problems with Chrome are errors only when the chrome backend is selected.
func runDoctor(args []string, env *Environment) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	var common commonFlags
	var jsonOutput bool
	addCommonFlags(fs, &common)
	fs.BoolVar(&jsonOutput, "json", false, "print the report as JSON")
	fs.Usage = func() { printDoctorUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		return usageError(err)
	}

	cfg, err := loadConfig(common, env)
	if err != nil {
		return err
	}

	result := diagnose(cfg)
	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ErrNotReady
	}
	return nil
}

// diagnose performs all checks against cfg.
func diagnose(cfg *config.Config) *doctorResult {
	result := &doctorResult{
		Status:  statusReady,
		Backend: strings.ToLower(cfg.Render.Backend),
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
		Providers: providerInfo{
			Default:    cfg.Provider.Default,
			Configured: configuredProviders(cfg),
		},
	}

	checkChrome(result)
	checkEnvironment(result)
	checkSystem(result, cfg.Server.ArtifactDir)
	checkProviders(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	required := result.Backend == docgen.BackendChrome
	report := func(msg string) {
		if required {
			result.Errors = append(result.Errors, msg)
		} else {
			result.Warnings = append(result.Warnings, msg+" (only needed for --backend chrome)")
		}
	}

	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			report("Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(chromePath); err != nil {
		report(fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath
	result.Chrome.Sandbox = result.Env.NoSandbox != "1"

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- path from launcher or ROD_BROWSER_BIN
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
		return
	}
	result.Chrome.Version = strings.TrimSpace(string(out))
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	result.Env.CI = hints.InCI()

	if result.Backend == docgen.BackendChrome && (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("DOCGEN_CONTAINER") == "1" {
		return true, "DOCGEN_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp and artifact directories are writable.
func checkSystem(result *doctorResult, artifactDir string) {
	if dirWritable(os.TempDir()) {
		result.System.TempWritable = true
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
	}

	result.System.ArtifactDir = artifactDir
	if artifactDir == "" {
		return
	}
	checkDir := artifactDir
	if _, err := os.Stat(artifactDir); err != nil {
		// serve creates the directory; its parent must accept it.
		checkDir = filepath.Dir(artifactDir)
	}
	if dirWritable(checkDir) {
		result.System.ArtifactWritable = true
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Artifact directory not writable: %s", artifactDir))
	}
}

// checkProviders warns when generation cannot work.
func checkProviders(result *doctorResult) {
	configured := result.Providers.Configured
	if len(configured) == 0 {
		result.Warnings = append(result.Warnings,
			"No content provider configured. Set GEMINI_API_KEY, OPENAI_API_KEY, OPENROUTER_API_KEY or ANTHROPIC_API_KEY")
		return
	}
	def := strings.ToLower(result.Providers.Default)
	for _, name := range configured {
		if name == def {
			return
		}
	}
	result.Warnings = append(result.Warnings,
		fmt.Sprintf("Default provider %q has no API key (configured: %s)", result.Providers.Default, strings.Join(configured, ", ")))
}

// dirWritable reports whether a file can be created in dir.
func dirWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".docgen-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "docgen doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Rendering")
	fmt.Fprintf(w, "  [OK] Backend: %s\n", r.Backend)
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Chrome: %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [--] Chrome: not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	if r.System.ArtifactWritable {
		fmt.Fprintf(w, "  [OK] Artifact directory: %s\n", r.System.ArtifactDir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Providers")
	if len(r.Providers.Configured) == 0 {
		fmt.Fprintln(w, "  [--] None configured")
	} else {
		fmt.Fprintf(w, "  [OK] Configured: %s (default %s)\n", strings.Join(r.Providers.Configured, ", "), r.Providers.Default)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docgen doctor [--json] [-c <name>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, directories and provider credentials.")
	fmt.Fprintln(w, "Exits non-zero when the selected backend cannot run.")
}
