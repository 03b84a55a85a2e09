package provider

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Continuation and title bounds.
const (
	MinChunks        = 1
	MaxChunks        = 5
	continuationTail = 500 // runes of the previous chunk echoed back
	titlePreviewLen  = 500 // runes of content shown to the title prompt
	titleMaxLen      = 60
	titleTemperature = 0.3
	titleMaxTokens   = 20
	DefaultTitle     = "Document"
)

const formattingRules = `You are a professional document writer. Create well-structured, polished content with proper hierarchy and flow.

FORMATTING REQUIREMENTS (IMPORTANT - NO MARKDOWN SYNTAX):
- Do NOT use markdown syntax (no #, ##, ###, **, __, *, _, ` + "`" + `).
- Use THREE levels of headings as PLAIN TEXT:
  * MAJOR SECTION HEADINGS IN ALL CAPS for main topics
  * Section Heading: Use colon at end for subsections
  * 1. Numbered Item for sub-subsections
- Write coherent paragraphs between sections
- Bullet/list items use format: - Item (dash space)
- Create tables using PLAIN TEXT pipe format: | Column 1 | Column 2 | Column 3 |
- Each table row on new line with | separators
- Avoid AI preambles like "Here is...", "Based on...", "In this document...", etc.
- Write naturally and professionally, plain text only
`

// BuildPrompt wraps the user's instruction with the plain-text formatting
// rules the classifier understands, embedding source material when given.
func BuildPrompt(instruction, source string) string {
	var b strings.Builder
	b.WriteString(formattingRules)
	if s := strings.TrimSpace(source); s != "" {
		b.WriteString("\nSOURCE MATERIAL:\n")
		b.WriteString(s)
		b.WriteString("\n\n---\n")
	}
	b.WriteString("\nUSER INSTRUCTION:\n")
	b.WriteString(strings.TrimSpace(instruction))
	b.WriteString("\n\nGenerate the document content now:")
	return b.String()
}

// continuationPrompt asks for more content following tail.
func continuationPrompt(tail string) string {
	return "Continue and expand on the previous response. Provide additional details, examples, or related information that completes the document comprehensively.\n\n" +
		"Previous content:\n" + tail + "\n\nContinue with more content:"
}

// LongResult aggregates a chained generation.
type LongResult struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Model        string
	Chunks       int
}

// GenerateLong asks p for the document described by req, then for up to
// chunks-1 continuations, each seeded with the tail of the previous chunk.
// chunks is clamped to [MinChunks, MaxChunks]. The first request must
// succeed; a failing continuation ends the chain and keeps what was
// produced. onChunk, if set, is called after each successful chunk.
func GenerateLong(ctx context.Context, p ContentProvider, req Request, chunks int, onChunk func(done, total int)) (*LongResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	chunks = min(max(chunks, MinChunks), MaxChunks)

	first, err := p.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(first.Text) == "" {
		return nil, emptyResponse(p.Name(), first.FinishReason)
	}

	res := &LongResult{Model: first.Model, Chunks: 1}
	parts := []string{first.Text}
	res.InputTokens += first.InputTokens
	res.OutputTokens += first.OutputTokens
	if onChunk != nil {
		onChunk(1, chunks)
	}

	for i := 1; i < chunks; i++ {
		if ctx.Err() != nil {
			break
		}
		next := req
		next.Prompt = continuationPrompt(lastRunes(parts[len(parts)-1], continuationTail))
		resp, err := p.Generate(ctx, next)
		if err != nil || strings.TrimSpace(resp.Text) == "" {
			break
		}
		parts = append(parts, resp.Text)
		res.InputTokens += resp.InputTokens
		res.OutputTokens += resp.OutputTokens
		res.Chunks++
		if onChunk != nil {
			onChunk(res.Chunks, chunks)
		}
	}

	res.Text = strings.Join(parts, "\n\n")
	return res, nil
}

// GenerateTitle asks p for a short title for content. Any failure yields
// DefaultTitle; titles longer than 60 characters are cut to 57 plus "...".
func GenerateTitle(ctx context.Context, p ContentProvider, content, model string) string {
	prompt := "Generate a concise, professional title (max 6 words) for this document content.\n" +
		"Return ONLY the title, nothing else. No quotes, no explanations.\n\n" +
		"Content preview:\n" + firstRunes(content, titlePreviewLen) + "\n\nTitle:"

	resp, err := p.Generate(ctx, Request{
		Prompt:      prompt,
		Model:       model,
		Temperature: titleTemperature,
		MaxTokens:   titleMaxTokens,
	})
	if err != nil {
		return DefaultTitle
	}
	return cleanTitle(resp.Text)
}

// cleanTitle trims whitespace and surrounding quotes and bounds the length.
func cleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.Trim(title, `"'`)
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle
	}
	if utf8.RuneCountInString(title) > titleMaxLen {
		title = firstRunes(title, titleMaxLen-3) + "..."
	}
	return title
}

// firstRunes returns at most n leading runes of s.
func firstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// lastRunes returns at most n trailing runes of s.
func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// describe renders a provider and model pair for error messages.
func describe(name, model string) string {
	if model == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, model)
}
