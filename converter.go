package docgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-docgen/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pdfBackend  = (*fpdfBackend)(nil)
	_ pdfBackend  = (*rodConverter)(nil)
	_ pdfRenderer = (*rodRenderer)(nil)
)

// pdfBackend turns a laid-out document into PDF bytes.
type pdfBackend interface {
	Render(ctx context.Context, job *renderJob) ([]byte, error)
	Close() error
}

// renderJob is everything a backend needs for one document.
// Blocks start with the title block.
type renderJob struct {
	HTML   string
	Blocks []Block
	Meta   Metadata
	Page   *PageSettings
	Sheet  *StyleSheet
}

// Converter orchestrates the text-to-PDF pipeline.
// Create with NewConverter(), use Convert() or Render(), and Close() when done.
// A Converter runs one conversion at a time; use ConverterPool for parallel
// work.
type Converter struct {
	cfg     converterConfig
	backend pdfBackend
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithBackend).
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout: defaultTimeout,
			backend: BackendNative,
			sheet:   pipeline.DefaultStyleSheet(),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	// Create backend if not injected (e.g., by tests)
	if c.backend == nil {
		switch strings.ToLower(c.cfg.backend) {
		case BackendNative:
			c.backend = newFpdfBackend(c.cfg.creationDate)
		case BackendChrome:
			c.backend = newRodConverter(c.cfg.timeout)
		default:
			return nil, fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidBackend, c.cfg.backend, BackendNative, BackendChrome)
		}
	}

	return c, nil
}

// Backend returns the name of the configured backend.
func (c *Converter) Backend() string {
	return strings.ToLower(c.cfg.backend)
}

// Convert normalizes and classifies doc.Content, then renders the result.
// Empty content yields a title-only document. The context is used for
// cancellation and timeout. Recovers from internal panics to prevent crashes
// from propagating to callers.
func (c *Converter) Convert(ctx context.Context, doc Document) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	normalized := pipeline.Normalize(doc.Content)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blocks := pipeline.Classify(normalized)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return c.render(ctx, blocks, doc.Meta(), doc.Page, doc.CSS, doc.HTMLOnly)
}

// Render lays out already classified blocks under a title built from meta.
// blocks must not contain a title block.
func (c *Converter) Render(ctx context.Context, blocks []Block, meta Metadata) (pdf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := meta.Validate(); err != nil {
		return nil, err
	}

	res, err := c.render(ctx, blocks, meta, nil, "", false)
	if err != nil {
		return nil, err
	}
	return res.PDF, nil
}

// render builds the HTML layer and, unless htmlOnly, the PDF.
func (c *Converter) render(ctx context.Context, blocks []Block, meta Metadata, page *PageSettings, css string, htmlOnly bool) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	meta = meta.withDefaults()
	laidOut := pipeline.WithTitle(meta.Title, blocks)
	htmlContent := pipeline.RenderHTML(laidOut, pipeline.Meta(meta), c.cfg.sheet, css)

	res := &Result{
		HTML:   []byte(htmlContent),
		Blocks: len(blocks),
	}

	// Skip PDF generation if HTMLOnly mode
	if htmlOnly {
		return res, nil
	}

	pdfBytes, err := c.backend.Render(ctx, &renderJob{
		HTML:   htmlContent,
		Blocks: laidOut,
		Meta:   meta,
		Page:   page.orDefault(),
		Sheet:  c.cfg.sheet,
	})
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}

	res.PDF = pdfBytes
	return res, nil
}

// Close releases backend resources (headless Chrome for the chrome backend).
func (c *Converter) Close() error {
	if c.backend != nil {
		return c.backend.Close()
	}
	return nil
}

// validateDocument checks that document fields are valid.
//
// This is a TRUST BOUNDARY for direct library users who build Document
// manually. CLI and HTTP users have their input validated earlier, and both
// paths converge here.
func validateDocument(doc Document) error {
	if err := doc.Meta().Validate(); err != nil {
		return err
	}
	return doc.Page.Validate()
}
