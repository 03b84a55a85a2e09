package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// documentFlags holds document metadata flags.
type documentFlags struct {
	title   string
	author  string
	subject string
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64 // 0 = unset
}

// backendFlags holds PDF backend flags.
type backendFlags struct {
	backend string
	timeout string
	css     string
	html    bool // also write the HTML layer
}

// providerFlags holds content generation flags.
type providerFlags struct {
	name           string
	model          string
	temperature    float64
	temperatureSet bool
	maxTokens      int
	chunks         int
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common   commonFlags
	output   string
	workers  int
	document documentFlags
	page     pageFlags
	backend  backendFlags
}

// generateFlags holds all flags for the generate command.
type generateFlags struct {
	common    commonFlags
	output    string
	prompt    string
	source    string
	autoTitle bool
	document  documentFlags
	page      pageFlags
	backend   backendFlags
	provider  providerFlags
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common  commonFlags
	addr    string
	workers int
	backend backendFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addDocumentFlags adds document metadata flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.title, "title", "", "document title")
	fs.StringVar(&f.author, "author", "", "document author")
	fs.StringVar(&f.subject, "subject", "", "document subject")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "margin in inches (0.25-3.0)")
}

// addBackendFlags adds PDF backend flags to a FlagSet.
func addBackendFlags(fs *flag.FlagSet, f *backendFlags) {
	fs.StringVarP(&f.backend, "backend", "b", "", "PDF backend: native, chrome")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.css, "css", "", "extra CSS file (chrome backend)")
	fs.BoolVar(&f.html, "html", false, "write the HTML alongside the PDF")
}

// addProviderFlags adds content generation flags to a FlagSet.
func addProviderFlags(fs *flag.FlagSet, f *providerFlags) {
	fs.StringVar(&f.name, "provider", "", "provider: gemini, openai, openrouter, anthropic")
	fs.StringVarP(&f.model, "model", "m", "", "model (default: provider default)")
	fs.Float64Var(&f.temperature, "temperature", 0, "sampling temperature (0-2)")
	fs.IntVar(&f.maxTokens, "max-tokens", 0, "max tokens per request (100-4096)")
	fs.IntVar(&f.chunks, "chunks", 0, "continuation chunks (1-5)")
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &renderFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")

	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addPageFlags(fs, &f.page)
	addBackendFlags(fs, &f.backend)

	fs.Usage = func() { printRenderUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

// parseGenerateFlags parses generate command flags and returns positional args.
func parseGenerateFlags(args []string, stderr io.Writer) (*generateFlags, []string, error) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &generateFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output PDF path")
	fs.StringVarP(&f.prompt, "prompt", "P", "", "what the document should be about")
	fs.StringVarP(&f.source, "source", "s", "", "source material file")
	fs.BoolVar(&f.autoTitle, "auto-title", false, "ask the provider for a title")

	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addPageFlags(fs, &f.page)
	addBackendFlags(fs, &f.backend)
	addProviderFlags(fs, &f.provider)

	fs.Usage = func() { printGenerateUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	f.provider.temperatureSet = fs.Changed("temperature")
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &serveFlags{}

	fs.StringVar(&f.addr, "addr", "", "listen address (default :8080)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel renderers (0 = auto)")

	addCommonFlags(fs, &f.common)
	addBackendFlags(fs, &f.backend)

	fs.Usage = func() { printServeUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	return f, nil
}

// parseConfigFlags parses config command flags.
func parseConfigFlags(args []string, stderr io.Writer) (*commonFlags, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &commonFlags{}
	addCommonFlags(fs, f)

	fs.Usage = func() { printConfigUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	return f, nil
}
