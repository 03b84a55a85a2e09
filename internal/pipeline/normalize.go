package pipeline

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// maxNormalizePasses bounds the fixed-point loop in Normalize. Every pass that
// changes the text also shortens it, so the bound is never reached in practice.
const maxNormalizePasses = 32

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Conversational opener sentences, matched at the start of a line.
	preamblePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:okay|sure|of course|certainly|here(?:'s| is| are)|i(?:'ll| will| can| have)|let me)\b[^.\n]*?[.:!]`),
		regexp.MustCompile(`(?i)^based on (?:the|your)\b[^.\n]*?[.:!]`),
		regexp.MustCompile(`(?i)^this (?:document|report|summary)\b[^.\n]*?[.:!]`),
	}

	// Horizontal rules: three or more dashes or asterisks alone on a line.
	horizontalRule = regexp.MustCompile(`(?m)^[ \t]*(?:-{3,}|\*{3,})[ \t]*$`)

	// Heading conversions, applied in order.
	h3WithColon   = regexp.MustCompile(`(?m)^###[ \t]+(.+?):[ \t]*$`)
	h3Alphabetic  = regexp.MustCompile(`(?m)^###[ \t]+([\p{L}&][\p{L} \t&]*?)(:?)[ \t]*$`)
	h2Heading     = regexp.MustCompile(`(?m)^##[ \t]+(.+?):?[ \t]*$`)
	h1Heading     = regexp.MustCompile(`(?m)^#[ \t]+(.+?):?[ \t]*$`)
	headingMarker = regexp.MustCompile(`(?m)^#{1,6}[ \t]*`)

	// Fenced code blocks, removed with their content.
	fencedCode = regexp.MustCompile("(?s)```.*?```")

	// Whitespace cleanup.
	horizontalSpace    = regexp.MustCompile(`[ \t]+`)
	trailingSpace      = regexp.MustCompile(`(?m)[ \t]+$`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
)

// Normalize strips AI conversational artifacts and leftover lightweight markup
// from raw model output, canonicalizing headings into the plain-text
// conventions the classifier recognizes.
//
// The cleanup pass is repeated until the text stops changing, which makes
// Normalize idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	text := raw
	for i := 0; i < maxNormalizePasses; i++ {
		next := normalizeOnce(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}

// normalizeOnce applies every cleanup rule once, in the fixed order later
// rules depend on.
func normalizeOnce(text string) string {
	text = norm.NFC.String(crlfOrCR.ReplaceAllString(text, "\n"))
	text = stripPreamble(text)
	text = horizontalRule.ReplaceAllString(text, "")
	text = convertHeadings(text)
	text = stripMarkup(text)
	return collapseWhitespace(text)
}

// stripPreamble removes the leading run of conversational lines. A line is
// dropped only when it consists entirely of opener sentences, so a preamble
// sharing its line with content is kept whole.
func stripPreamble(text string) string {
	rest := strings.TrimLeft(text, " \t\n")
	stripped := false
	for rest != "" {
		line, after, _ := strings.Cut(rest, "\n")
		if !isPreambleLine(line) {
			break
		}
		rest = strings.TrimLeft(after, " \t\n")
		stripped = true
	}
	if !stripped {
		return text
	}
	return rest
}

// isPreambleLine reports whether line is made only of opener sentences.
func isPreambleLine(line string) bool {
	rest := strings.TrimSpace(line)
	if rest == "" {
		return false
	}
	for rest != "" {
		loc := matchPreamble(rest)
		if loc == nil {
			return false
		}
		rest = strings.TrimSpace(rest[loc[1]:])
	}
	return true
}

func matchPreamble(s string) []int {
	for _, p := range preamblePatterns {
		if loc := p.FindStringIndex(s); loc != nil {
			return loc
		}
	}
	return nil
}

// convertHeadings turns Markdown heading lines into the three plain-text
// heading conventions: ALL CAPS majors and colon-terminated sections.
func convertHeadings(text string) string {
	text = h3WithColon.ReplaceAllString(text, "$1:")
	text = h3Alphabetic.ReplaceAllStringFunc(text, func(m string) string {
		sub := h3Alphabetic.FindStringSubmatch(m)
		return upper(strings.TrimSpace(sub[1])) + sub[2]
	})
	text = h2Heading.ReplaceAllString(text, "$1:")
	text = h1Heading.ReplaceAllStringFunc(text, func(m string) string {
		sub := h1Heading.FindStringSubmatch(m)
		return upper(sub[1])
	})
	return headingMarker.ReplaceAllString(text, "")
}

// stripMarkup removes emphasis, code and link syntax, keeping the text.
// Fenced blocks go first so their backticks are not read as inline code.
func stripMarkup(text string) string {
	return stripInlineMarkup(fencedCode.ReplaceAllString(text, ""))
}

// collapseWhitespace squeezes horizontal whitespace, removes trailing spaces
// and limits blank line runs to a single blank line.
func collapseWhitespace(text string) string {
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = trailingSpace.ReplaceAllString(text, "")
	text = multipleBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// upper upper-cases s with Unicode-aware casing rules.
// A Caser is stateful, so one is created per call.
func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}
