package docgen

import "errors"

// Sentinel errors for library operations.
var (
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// ErrUnsupportedGlyph is wrapped with ErrPDFGeneration when the native
	// backend's font has no glyph for a character.
	ErrUnsupportedGlyph = errors.New("character not covered by the native font")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// Converter configuration errors.
	ErrInvalidBackend = errors.New("invalid render backend")

	// Metadata validation errors.
	ErrFieldTooLong = errors.New("field exceeds maximum length")
)
