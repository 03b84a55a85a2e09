package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alnah/go-docgen/internal/provider"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// DotenvFiles are loaded before reading the environment.
	// Empty means ".env" in the working directory.
	DotenvFiles []string

	// NewProvider builds a content provider; tests swap in a stub.
	NewProvider func(ctx context.Context, cfg provider.Config) (provider.ContentProvider, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		NewProvider: provider.New,
	}
}
