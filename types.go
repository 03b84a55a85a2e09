package docgen

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alnah/go-docgen/internal/pipeline"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.75
)

// Backend names.
const (
	BackendNative = "native" // pure Go, no browser
	BackendChrome = "chrome" // headless Chrome via go-rod
)

// Metadata field length limits, in runes.
const (
	MaxTitleLength   = 200
	MaxAuthorLength  = 200
	MaxSubjectLength = 200
)

// Creator is written into the PDF Info dictionary.
const Creator = "go-docgen"

// Layout types re-exported from the pipeline.
type (
	Block      = pipeline.Block
	Kind       = pipeline.Kind
	StyleSheet = pipeline.StyleSheet
	Style      = pipeline.Style
	TableStyle = pipeline.TableStyle
	Color      = pipeline.Color
	Align      = pipeline.Align
)

// Block kinds.
const (
	KindTitle             = pipeline.KindTitle
	KindMajorHeading      = pipeline.KindMajorHeading
	KindSectionHeading    = pipeline.KindSectionHeading
	KindSubsectionHeading = pipeline.KindSubsectionHeading
	KindParagraph         = pipeline.KindParagraph
	KindListItem          = pipeline.KindListItem
	KindTable             = pipeline.KindTable
)

// Normalize strips AI conversational artifacts and leftover markup from raw
// model output. It is idempotent.
func Normalize(raw string) string { return pipeline.Normalize(raw) }

// Classify splits normalized text into layout blocks, in document order.
func Classify(normalized string) []Block { return pipeline.Classify(normalized) }

// DefaultStyleSheet returns a copy of the default style sheet.
func DefaultStyleSheet() *StyleSheet { return pipeline.DefaultStyleSheet() }

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
// Does not mutate - uses case-insensitive comparison.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// dimensions returns the paper width and height in inches.
func (p *PageSettings) dimensions() (width, height float64) {
	switch strings.ToLower(p.Size) {
	case PageSizeA4:
		width, height = 8.27, 11.69
	case PageSizeLegal:
		width, height = 8.5, 14
	default:
		width, height = 8.5, 11
	}
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		width, height = height, width
	}
	return width, height
}

// orDefault returns p, or the default settings if p is nil.
func (p *PageSettings) orDefault() *PageSettings {
	if p == nil {
		return DefaultPageSettings()
	}
	return p
}

// isValidPageSize checks if size is a known page size (case-insensitive).
func isValidPageSize(size string) bool {
	switch strings.ToLower(size) {
	case PageSizeLetter, PageSizeA4, PageSizeLegal:
		return true
	}
	return false
}

// isValidOrientation checks if orientation is valid (case-insensitive).
func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// Metadata is the document information written into the PDF.
type Metadata struct {
	Title   string
	Author  string
	Subject string
}

// Validate checks metadata field lengths.
func (m Metadata) Validate() error {
	if err := validateFieldLength("title", m.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("author", m.Author, MaxAuthorLength); err != nil {
		return err
	}
	return validateFieldLength("subject", m.Subject, MaxSubjectLength)
}

// validateFieldLength checks that a field does not exceed its maximum length.
func validateFieldLength(name, value string, limit int) error {
	if n := utf8.RuneCountInString(value); n > limit {
		return fmt.Errorf("%w: %s has %d characters (max %d)", ErrFieldTooLong, name, n, limit)
	}
	return nil
}

// withDefaults fills an empty title.
func (m Metadata) withDefaults() Metadata {
	if strings.TrimSpace(m.Title) == "" {
		m.Title = pipeline.DefaultTitle
	}
	m.Title = strings.TrimSpace(m.Title)
	return m
}

// Document contains conversion parameters.
type Document struct {
	Content  string         // loosely formatted text (may be empty)
	Title    string         // defaults to "Document"
	Author   string         // optional
	Subject  string         // optional
	Metadata map[string]any // informational only, never rendered
	CSS      string         // extra CSS for the chrome backend (optional)
	Page     *PageSettings  // page settings (optional, nil = defaults)
	HTMLOnly bool           // skip PDF generation
}

// Meta returns the document's PDF metadata.
func (d Document) Meta() Metadata {
	return Metadata{Title: d.Title, Author: d.Author, Subject: d.Subject}
}

// Result holds the output of a conversion.
type Result struct {
	PDF    []byte // empty when HTMLOnly is set
	HTML   []byte // the markup layer, useful for debugging
	Blocks int    // classified blocks, title excluded
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout      time.Duration
	backend      string
	sheet        *StyleSheet
	creationDate time.Time
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("docgen: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithBackend selects the PDF backend: BackendNative (default) or
// BackendChrome. Unknown names make NewConverter fail with ErrInvalidBackend.
func WithBackend(name string) Option {
	return func(c *Converter) {
		c.cfg.backend = name
	}
}

// WithStyleSheet replaces the default style sheet.
// The sheet must not be modified after the converter is created.
func WithStyleSheet(sheet *StyleSheet) Option {
	return func(c *Converter) {
		if sheet != nil {
			c.cfg.sheet = sheet
		}
	}
}

// WithCreationDate fixes the creation date written by the native backend,
// making its output byte-for-byte reproducible.
func WithCreationDate(t time.Time) Option {
	return func(c *Converter) {
		c.cfg.creationDate = t
	}
}
