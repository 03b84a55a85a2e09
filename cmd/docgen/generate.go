package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/fileutil"
	"github.com/alnah/go-docgen/internal/hints"
	"github.com/alnah/go-docgen/internal/jobs"
	"github.com/alnah/go-docgen/internal/provider"
)

// runGenerate asks a provider for content, then renders it to PDF.
func runGenerate(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseGenerateFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	prompt := flags.prompt
	if prompt == "" {
		prompt = strings.Join(positional, " ")
	}
	if strings.TrimSpace(prompt) == "" {
		printGenerateUsage(env.Stderr)
		return fmt.Errorf("%w: use --prompt", provider.ErrEmptyPrompt)
	}

	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	mergeDocumentFlags(cfg, flags.document)
	mergePageFlags(cfg, flags.page)
	mergeBackendFlags(cfg, flags.backend)
	mergeProviderFlags(cfg, flags.provider)
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
	var source string
	if flags.source != "" {
		data, err := os.ReadFile(flags.source) // #nosec G304 -- user-specified source file
		if err != nil {
			return fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		source = string(data)
	}

	pcfg, err := providerConfig(cfg, cfg.Provider.Default)
	if err != nil {
		return err
	}
	p, err := env.NewProvider(ctx, pcfg)
	if err != nil {
		if errors.Is(err, provider.ErrMissingAPIKey) {
			return fmt.Errorf("%w%s", err, hints.ForAPIKey(pcfg.Name))
		}
		return err
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "Generating with %s...\n", pcfg.Name)
	}
	req := provider.Request{
		Prompt:      provider.BuildPrompt(prompt, source),
		Model:       pcfg.Model,
		Temperature: cfg.Provider.Temperature,
		MaxTokens:   cfg.Provider.MaxTokens,
	}
	onChunk := func(done, total int) {
		if flags.common.verbose {
			fmt.Fprintf(env.Stderr, "chunk %d/%d\n", done, total)
		}
	}
	long, err := provider.GenerateLong(ctx, p, req, cfg.Provider.Chunks, onChunk)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGenerate, err)
	}

	title := cfg.Document.Title
	if title == "" {
		if flags.autoTitle {
			title = provider.GenerateTitle(ctx, p, long.Text, pcfg.Model)
		} else {
			title = jobs.DefaultTitle
		}
	}

	output := flags.output
	if output == "" {
		output = fileutil.SafeFilename(title, "generated") + ".pdf"
	}

	conv, err := docgen.NewConverter(converterOptions(cfg)...)
	if err != nil {
		return err
	}
	defer conv.Close()

	res, err := conv.Convert(ctx, docgen.Document{
		Content: long.Text,
		Title:   title,
		Author:  cfg.Document.Author,
		Subject: cfg.Document.Subject,
		CSS:     css,
		Page:    page,
		Metadata: map[string]any{
			"provider": pcfg.Name,
			"model":    long.Model,
			"chunks":   long.Chunks,
		},
	})
	if err != nil {
		return err
	}
	if err := writeOutputs(output, res, flags.backend.html); err != nil {
		return err
	}

	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "model %s, %d chunk(s), %d input / %d output tokens\n",
			long.Model, long.Chunks, long.InputTokens, long.OutputTokens)
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", output)
	}
	return nil
}
