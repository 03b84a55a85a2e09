package pipeline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Heading and list length bounds, in runes.
const (
	majorHeadingMinLen   = 5  // exclusive
	majorHeadingMaxLen   = 80 // exclusive
	sectionHeadingMinLen = 3  // exclusive
	sectionHeadingMaxLen = 100
	tableTriggerMinLen   = 5 // exclusive
	minTableRows         = 2 // header + one data row
	minTableColumns      = 2
)

// bulletPrefixes are the unordered list markers, all followed by a space.
var bulletPrefixes = []string{"- ", "• ", "* "}

var (
	// "1. First Finding": numbered sub-section heading.
	subsectionPattern = regexp.MustCompile(`^\d+\.\s+[\p{L}\p{N}_]`)

	// "1. item" or "1) item": numbered list item.
	numberedItemPattern = regexp.MustCompile(`^(\d+[.)]) `)

	// Any numbered lead, with or without the space.
	numberedLeadPattern = regexp.MustCompile(`^\d+[.)]`)

	// Table separator rows: only pipes, dashes, colons and spaces.
	separatorPattern = regexp.MustCompile(`^[ \t:|-]+$`)
)

// classifier is a cursor over the trimmed lines of normalized text.
// Each step consumes one or more lines atomically and emits zero or more
// blocks; the cursor only moves forward.
type classifier struct {
	lines  []string
	pos    int
	blocks []Block
}

// Classify scans normalized text and returns its layout blocks in document
// order. Blank lines produce no block. Rules are tried in a fixed priority:
// table > major heading > section heading > sub-section heading > list item >
// paragraph.
func Classify(normalized string) []Block {
	if strings.TrimSpace(normalized) == "" {
		return nil
	}

	raw := strings.Split(normalized, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}

	c := &classifier{lines: lines}
	for c.pos < len(c.lines) {
		c.step()
	}
	return c.blocks
}

// step classifies the line under the cursor.
func (c *classifier) step() {
	line := c.lines[c.pos]

	switch {
	case line == "":
		c.pos++
	case isTableTrigger(line):
		c.consumeTable()
	case isMajorHeading(line):
		c.emitLine(KindMajorHeading, line)
	case isSectionHeading(line):
		c.emitLine(KindSectionHeading, line)
	case isSubsectionHeading(line):
		c.emitLine(KindSubsectionHeading, line)
	case isListItem(line):
		c.consumeList()
	default:
		c.consumeParagraph()
	}
}

// emitLine emits a single-line block and advances past it.
func (c *classifier) emitLine(kind Kind, text string) {
	c.blocks = append(c.blocks, Block{Kind: kind, Text: text})
	c.pos++
}

// tableLine is one collected line of a pipe run: a data row, or a pipe line
// that does not parse as one.
type tableLine struct {
	cells  []string
	source string
}

// consumeTable collects the run of pipe lines under the cursor. The run ends
// at a blank line (consumed) or a line without a pipe; separator rows are
// skipped. A malformed row inside a table becomes a paragraph in place and the
// rows after it continue under the same header. Runs with fewer than two data
// rows are re-read as paragraphs.
func (c *classifier) consumeTable() {
	var run []tableLine
	data := 0

	start, j := c.pos, c.pos
	end := j
	for j < len(c.lines) {
		line := c.lines[j]
		if line == "" {
			j++
			break
		}
		if !strings.Contains(line, "|") {
			break
		}
		j++
		end = j
		if isSeparatorRow(line) {
			continue
		}
		cells, ok := parseTableRow(line)
		if ok {
			data++
		}
		run = append(run, tableLine{cells: cells, source: line})
	}

	if data < minTableRows {
		c.pos = start
		for c.pos < end {
			if isSeparatorRow(c.lines[c.pos]) {
				c.pos++
				continue
			}
			c.consumeParagraph()
		}
		return
	}

	c.pos = j
	var header []string
	var body [][]string
	flush := func() {
		if len(body) > 0 {
			rows := append([][]string{header}, body...)
			c.blocks = append(c.blocks, Block{Kind: KindTable, Rows: squareRows(rows)})
			body = nil
		}
	}
	for _, tl := range run {
		switch {
		case tl.cells == nil:
			flush()
			c.blocks = append(c.blocks, Block{Kind: KindParagraph, Text: tl.source})
		case header == nil:
			header = tl.cells
		default:
			body = append(body, tl.cells)
		}
	}
	flush()
}

// consumeList emits one block per consecutive list line.
// A blank line ends the run and is consumed with it.
func (c *classifier) consumeList() {
	for c.pos < len(c.lines) {
		line := c.lines[c.pos]
		if line == "" {
			c.pos++
			return
		}
		if !isListItem(line) {
			return
		}
		marker, text := splitListItem(line)
		c.blocks = append(c.blocks, Block{Kind: KindListItem, Marker: marker, Text: text})
		c.pos++
	}
}

// consumeParagraph joins the current line with the following lines until a
// blank line or a line that starts another kind of block.
func (c *classifier) consumeParagraph() {
	parts := []string{c.lines[c.pos]}
	c.pos++

	for c.pos < len(c.lines) {
		next := c.lines[c.pos]
		if next == "" || startsNewBlock(next) {
			break
		}
		parts = append(parts, next)
		c.pos++
	}

	c.blocks = append(c.blocks, Block{Kind: KindParagraph, Text: strings.Join(parts, " ")})
}

// isTableTrigger reports whether line opens a table run.
func isTableTrigger(line string) bool {
	return strings.Contains(line, "|") && utf8.RuneCountInString(line) > tableTriggerMinLen
}

// isMajorHeading reports whether line is an ALL CAPS multi-word heading.
func isMajorHeading(line string) bool {
	n := utf8.RuneCountInString(line)
	return isUpper(line) &&
		n > majorHeadingMinLen && n < majorHeadingMaxLen &&
		!strings.HasSuffix(line, ".") &&
		!strings.HasSuffix(line, ":") &&
		!hasBulletPrefix(line) &&
		!numberedLeadPattern.MatchString(line) &&
		strings.Contains(line, " ")
}

// isSectionHeading reports whether line is a colon-terminated heading.
func isSectionHeading(line string) bool {
	n := utf8.RuneCountInString(line)
	return strings.HasSuffix(line, ":") &&
		n > sectionHeadingMinLen && n < sectionHeadingMaxLen &&
		!isUpper(line) &&
		!hasBulletPrefix(line)
}

// isSubsectionHeading reports whether line is a numbered heading such as
// "1. First Finding". A trailing period makes it a sentence instead.
func isSubsectionHeading(line string) bool {
	return subsectionPattern.MatchString(line) && !strings.HasSuffix(line, ".")
}

// isListItem reports whether line starts with a bullet or a numbered marker.
func isListItem(line string) bool {
	return hasBulletPrefix(line) || numberedItemPattern.MatchString(line)
}

// startsNewBlock reports whether a line must not be merged into a running
// paragraph because it looks like a heading, list item or table row.
func startsNewBlock(line string) bool {
	return strings.Contains(line, "|") ||
		strings.HasSuffix(line, ":") ||
		hasBulletPrefix(line) ||
		numberedLeadPattern.MatchString(line) ||
		(isUpper(line) && utf8.RuneCountInString(line) > majorHeadingMinLen && strings.Contains(line, " "))
}

// hasBulletPrefix reports whether line starts with an unordered list marker.
func hasBulletPrefix(line string) bool {
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// splitListItem separates the list marker from the item text.
// Bullets are canonicalized to "•"; numbers are kept as written.
func splitListItem(line string) (marker, text string) {
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(line, p) {
			return "•", strings.TrimSpace(line[len(p):])
		}
	}
	if m := numberedItemPattern.FindStringSubmatch(line); m != nil {
		return m[1], strings.TrimSpace(line[len(m[0]):])
	}
	return "", line
}

// isUpper reports whether s has at least one cased letter and no lower-case
// or title-case letters.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}

// isSeparatorRow reports whether line is a table rule such as |---|:--:|.
func isSeparatorRow(line string) bool {
	return strings.Contains(line, "|") &&
		strings.Contains(line, "-") &&
		separatorPattern.MatchString(line)
}

// parseTableRow splits a pipe-delimited line into trimmed cells, dropping the
// empty cells produced by border pipes. Rows with fewer than two non-empty
// cells are malformed.
func parseTableRow(line string) ([]string, bool) {
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}

	if len(cells) > 0 && cells[0] == "" {
		cells = cells[1:]
	}
	if len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}

	nonEmpty := 0
	for _, cell := range cells {
		if cell != "" {
			nonEmpty++
		}
	}
	if nonEmpty < minTableColumns {
		return nil, false
	}
	return cells, true
}

// squareRows gives every row the header's column count. Short rows are padded
// with empty cells; surplus cells are folded into the last column so no text
// is lost.
func squareRows(rows [][]string) [][]string {
	width := len(rows[0])
	out := make([][]string, len(rows))
	for i, row := range rows {
		switch {
		case len(row) == width:
			out[i] = row
		case len(row) < width:
			padded := make([]string, width)
			copy(padded, row)
			out[i] = padded
		default:
			folded := make([]string, width)
			copy(folded, row[:width-1])
			folded[width-1] = strings.Join(row[width-1:], " | ")
			out[i] = folded
		}
	}
	return out
}
