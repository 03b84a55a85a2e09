package pipeline

import (
	"fmt"
	"html"
	"strings"
)

// DefaultTitle is used when a document has no title.
const DefaultTitle = "Document"

// Meta is the document information rendered into the HTML head.
type Meta struct {
	Title   string
	Author  string
	Subject string
}

// WithTitle prepends the title block to blocks.
// An empty title falls back to DefaultTitle.
func WithTitle(title string, blocks []Block) []Block {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	out := make([]Block, 0, len(blocks)+1)
	out = append(out, Block{Kind: KindTitle, Text: title})
	return append(out, blocks...)
}

// RenderHTML builds a standalone HTML document from blocks.
// Every text fragment is escaped exactly once, where it is written into the
// markup. extraCSS is appended after the style sheet's CSS so it can override
// it.
func RenderHTML(blocks []Block, meta Meta, sheet *StyleSheet, extraCSS string) string {
	css := DefaultCSS()
	if sheet != nil {
		css = sheet.CSS()
	}
	if extraCSS != "" {
		css += "\n" + extraCSS
	}

	var buf strings.Builder
	buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(meta.Title))
	if meta.Author != "" {
		fmt.Fprintf(&buf, "<meta name=\"author\" content=\"%s\">\n", html.EscapeString(meta.Author))
	}
	if meta.Subject != "" {
		fmt.Fprintf(&buf, "<meta name=\"description\" content=\"%s\">\n", html.EscapeString(meta.Subject))
	}
	buf.WriteString("<style>" + sanitizeCSS(css) + "</style>\n</head>\n<body>\n")

	for _, b := range blocks {
		writeBlock(&buf, b)
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.String()
}

// writeBlock writes the markup for one block.
func writeBlock(buf *strings.Builder, b Block) {
	text := html.EscapeString(b.Text)

	switch b.Kind {
	case KindTitle:
		fmt.Fprintf(buf, "<h1 class=\"title\">%s</h1>\n<div class=\"title-gap\"></div>\n", text)
	case KindMajorHeading:
		fmt.Fprintf(buf, "<h2 class=\"major-heading\">%s</h2>\n", text)
	case KindSectionHeading:
		fmt.Fprintf(buf, "<h3 class=\"section-heading\">%s</h3>\n", text)
	case KindSubsectionHeading:
		fmt.Fprintf(buf, "<h4 class=\"subsection-heading\">%s</h4>\n", text)
	case KindListItem:
		fmt.Fprintf(buf, "<p class=\"list-item\"><span class=\"marker\">%s</span>%s</p>\n",
			html.EscapeString(b.Marker), text)
	case KindTable:
		writeTable(buf, b.Rows)
	default:
		fmt.Fprintf(buf, "<p class=\"paragraph\">%s</p>\n", text)
	}
}

// writeTable writes a fixed-layout table with equal column widths.
// The first row goes into <thead> so Chrome repeats it on every page.
func writeTable(buf *strings.Builder, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	cols := len(rows[0])
	width := 100.0 / float64(cols)

	buf.WriteString("<table class=\"grid\">\n<colgroup>")
	for range cols {
		fmt.Fprintf(buf, "<col style=\"width: %.4f%%\">", width)
	}
	buf.WriteString("</colgroup>\n<thead>\n<tr>")
	for _, cell := range rows[0] {
		fmt.Fprintf(buf, "<th>%s</th>", html.EscapeString(cell))
	}
	buf.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, row := range rows[1:] {
		buf.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(buf, "<td>%s</td>", html.EscapeString(cell))
		}
		buf.WriteString("</tr>\n")
	}
	buf.WriteString("</tbody>\n</table>\n")
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
