package main

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/hints"
	"github.com/alnah/go-docgen/internal/process"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrNoInput            = errors.New("no input specified")
	ErrReadInput          = errors.New("failed to read input file")
	ErrReadCSS            = errors.New("failed to read CSS file")
	ErrWritePDF           = errors.New("failed to write PDF file")
	ErrInvalidExtension   = errors.New("file must have .txt, .text or .md extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrGenerate           = errors.New("content generation failed")
)

// runMain runs the CLI and returns the process exit code.
func runMain(args []string, env *Environment) int {
	err := run(args, env)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "docgen: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}

// run dispatches to the command named by args[1].
func run(args []string, env *Environment) error {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return fmt.Errorf("%w: no command given", ErrUsage)
	}

	ctx, stop := process.NotifyContext(context.Background())
	defer stop()

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "render":
		return runRender(ctx, rest, env)
	case "generate":
		return runGenerate(ctx, rest, env)
	case "serve":
		return runServe(ctx, rest, env)
	case "config":
		return runConfig(rest, env)
	case "doctor":
		return runDoctor(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "docgen %s\n", Version)
		return nil
	case "help", "-h", "--help":
		return runHelp(rest, env)
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, docgen.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, docgen.ErrUnsupportedGlyph):
		return hints.ForUnsupportedGlyph()
	}
	return ""
}

// usageError marks a flag parsing error as a usage error.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUsage, err)
}
