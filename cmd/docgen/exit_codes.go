package main

import (
	"errors"
	"os"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/config"
	"github.com/alnah/go-docgen/internal/provider"
)

// Exit codes for the docgen CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Successful run
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or validation
	ExitIO       = 3 // File not found, permission denied
	ExitBrowser  = 4 // Browser and PDF rendering errors
	ExitProvider = 5 // Content provider errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser/render errors (exit 4)
	if errors.Is(err, docgen.ErrBrowserConnect) ||
		errors.Is(err, docgen.ErrPageCreate) ||
		errors.Is(err, docgen.ErrPageLoad) ||
		errors.Is(err, docgen.ErrPDFGeneration) {
		return ExitBrowser
	}

	// Provider errors (exit 5)
	if errors.Is(err, provider.ErrMissingAPIKey) ||
		errors.Is(err, provider.ErrUnknownProvider) ||
		errors.Is(err, provider.ErrEmptyResponse) ||
		errors.Is(err, ErrGenerate) {
		return ExitProvider
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, docgen.ErrInvalidPageSize) ||
		errors.Is(err, docgen.ErrInvalidOrientation) ||
		errors.Is(err, docgen.ErrInvalidMargin) ||
		errors.Is(err, docgen.ErrInvalidBackend) ||
		errors.Is(err, docgen.ErrFieldTooLong) ||
		errors.Is(err, provider.ErrEmptyPrompt) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}
