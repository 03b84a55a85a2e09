// Package pipeline implements the text-to-layout conversion pipeline.
//
// This package handles the stages that turn loosely formatted AI output into
// a styled HTML document:
//   - Normalization (conversational preambles, leftover Markdown, whitespace)
//   - Line classification into typed layout blocks
//   - Style sheet resolution (block kind to typography and spacing)
//   - HTML rendering with single-pass escaping
//
// PDF generation is handled separately by the root docgen package, either by
// printing the HTML with headless Chrome or by drawing the blocks directly
// with a pure Go PDF writer. Both backends share the Block model and the
// StyleSheet defined here.
package pipeline
