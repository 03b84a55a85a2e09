package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/fileutil"
	"github.com/alnah/go-docgen/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// stdinArg selects standard input as the render source.
const stdinArg = "-"

// Renderer converts one document. *docgen.ConverterPool and
// *docgen.Converter both satisfy it.
type Renderer interface {
	Convert(ctx context.Context, doc docgen.Document) (*docgen.Result, error)
}

// Compile-time interface implementation checks.
var (
	_ Renderer = (*docgen.ConverterPool)(nil)
	_ Renderer = (*docgen.Converter)(nil)
)

// RenderResult holds the outcome of a single render.
type RenderResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// renderParams groups the settings shared by every file of a batch.
type renderParams struct {
	template docgen.Document // Content is filled per file; empty Title means "from file name"
	html     bool
}

// runRender renders text files, a directory of them, or standard input.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	if len(positional) == 0 {
		printRenderUsage(env.Stderr)
		return ErrNoInput
	}

	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	mergeDocumentFlags(cfg, flags.document)
	mergePageFlags(cfg, flags.page)
	mergeBackendFlags(cfg, flags.backend)
	if flags.workers > 0 {
		cfg.Render.Workers = flags.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	page, err := pageSettings(cfg)
	if err != nil {
		return err
	}
	css, err := readCSS(cfg.Render.CSSFile)
	if err != nil {
		return err
	}
	params := &renderParams{
		template: docgen.Document{
			Title:   cfg.Document.Title,
			Author:  cfg.Document.Author,
			Subject: cfg.Document.Subject,
			CSS:     css,
			Page:    page,
		},
		html: flags.backend.html,
	}

	if positional[0] == stdinArg {
		return renderStdin(ctx, env, flags.output, params, converterOptions(cfg))
	}

	files, err := discoverFiles(positional[0], flags.output)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no text files found in %s", ErrNoInput, positional[0])
	}

	size := min(docgen.ResolvePoolSize(cfg.Render.Workers), len(files))
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d (%s backend)\n", size, cfg.Render.Backend)
	}
	pool := docgen.NewConverterPool(size, converterOptions(cfg)...)
	defer pool.Close()

	results := renderBatch(ctx, pool, size, files, params)
	if len(results) == 1 && results[0].Err != nil {
		return results[0].Err
	}
	if failed := printResults(results, flags.common.quiet, flags.common.verbose, env); failed > 0 {
		return fmt.Errorf("%d render(s) failed", failed)
	}
	return nil
}

// renderStdin renders standard input to output, or to standard output when
// output is empty or "-".
func renderStdin(ctx context.Context, env *Environment, output string, params *renderParams, opts []docgen.Option) error {
	data, err := io.ReadAll(env.Stdin)
	if err != nil {
		return fmt.Errorf("%w: stdin: %w", ErrReadInput, err)
	}

	conv, err := docgen.NewConverter(opts...)
	if err != nil {
		return err
	}
	defer conv.Close()

	doc := params.template
	doc.Content = string(data)
	res, err := conv.Convert(ctx, doc)
	if err != nil {
		return err
	}

	if output == "" || output == stdinArg {
		if _, err := env.Stdout.Write(res.PDF); err != nil {
			return fmt.Errorf("%w: stdout: %w", ErrWritePDF, err)
		}
		return nil
	}
	return writeOutputs(output, res, params.html)
}

// renderBatch processes files concurrently. Each worker blocks on the pool
// until a converter is free.
func renderBatch(ctx context.Context, r Renderer, workers int, files []FileToRender, params *renderParams) []RenderResult {
	if len(files) == 0 {
		return nil
	}
	workers = min(max(workers, 1), len(files))

	results := make([]RenderResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = RenderResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = renderFile(ctx, r, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// renderFile processes a single file and returns the result.
func renderFile(ctx context.Context, r Renderer, f FileToRender, params *renderParams) RenderResult {
	start := time.Now()
	result := RenderResult{InputPath: f.InputPath, OutputPath: f.OutputPath}
	fail := func(err error) RenderResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered input file
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrReadInput, err))
	}

	doc := params.template
	doc.Content = string(content)
	if doc.Title == "" {
		doc.Title = titleFromPath(f.InputPath)
	}

	res, err := r.Convert(ctx, doc)
	if err != nil {
		return fail(err)
	}
	if err := writeOutputs(f.OutputPath, res, params.html); err != nil {
		return fail(err)
	}

	result.Duration = time.Since(start)
	return result
}

// writeOutputs writes the PDF, and the HTML next to it when html is set.
func writeOutputs(pdfPath string, res *docgen.Result, html bool) error {
	if err := os.MkdirAll(filepath.Dir(pdfPath), dirPermissions); err != nil {
		return fmt.Errorf("%w: creating output directory: %w%s", ErrWritePDF, err, hints.ForOutputDirectory())
	}
	if html {
		if err := fileutil.WriteFileAtomic(htmlOutputPath(pdfPath), res.HTML, filePermissions); err != nil {
			return fmt.Errorf("failed to write HTML file: %w", err)
		}
	}
	if err := fileutil.WriteFileAtomic(pdfPath, res.PDF, filePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWritePDF, err)
	}
	return nil
}

// titleFromPath derives a title from a file name: "q3_report.txt" becomes
// "q3 report".
func titleFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}

// ResultSummary holds the count of succeeded and failed renders.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed renders.
func countResults(results []RenderResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs render results and returns the failure count.
func printResults(results []RenderResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}
		if quiet {
			continue
		}
		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
