// Package docgen turns loosely formatted AI-generated text into a styled,
// paginated PDF.
//
// # Quick Start
//
// Create a converter, convert text, and close when done:
//
//	conv, err := docgen.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, docgen.Document{
//	    Title:   "Quarterly Report",
//	    Content: "REVENUE AND EXPENSES\n\nRevenue grew 12%.",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("report.pdf", result.PDF, 0644)
//
// The result contains both the PDF bytes (result.PDF) and the intermediate
// HTML (result.HTML) for debugging. Use Document.HTMLOnly to skip PDF
// generation.
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Normalization: conversational preambles, leftover Markdown and extra
//     whitespace are removed; Markdown headings become plain-text headings
//  2. Classification: each line becomes a title, heading, list item, table
//     or paragraph block
//  3. HTML rendering: every text fragment is escaped once and styled from
//     the StyleSheet
//  4. PDF rendering via the native backend (gofpdf) or headless Chrome
//
// The plain-text conventions recognized by the classifier are:
//
//	REVENUE AND EXPENSES       major heading (ALL CAPS, several words)
//	Quarterly Review:          section heading (ends with a colon)
//	1. First Finding           sub-section heading
//	- item / • item / 1) item  list items
//	| Name | Age |             table rows (separator rows are skipped)
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := docgen.NewConverter(
//	    docgen.WithTimeout(2 * time.Minute),
//	    docgen.WithBackend(docgen.BackendChrome),
//	)
//
// Per-document options are passed via Document:
//
//	result, err := conv.Convert(ctx, docgen.Document{
//	    Content: content,
//	    Title:   "Report",
//	    Author:  "Research Team",
//	    Page:    &docgen.PageSettings{Size: "a4", Orientation: "portrait", Margin: 0.75},
//	})
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool to manage multiple converters:
//
//	pool := docgen.NewConverterPool(4)
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//	result, err := conv.Convert(ctx, doc)
//
// # Browser Requirements
//
// The chrome backend requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
// The native backend has no external requirements.
package docgen
