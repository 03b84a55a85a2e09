package pipeline

import (
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// inlineParser finds emphasis, code spans and links with CommonMark's
// delimiter rules. Only the parser is used; nothing is rendered.
var inlineParser = goldmark.New().Parser()

// stripInlineMarkup deletes the delimiters of every emphasis, code span, link
// and image the parser finds and leaves all other bytes where they were, so
// line structure survives. Single-delimiter emphasis glued to a word
// character (a*b*c) is kept as written.
func stripInlineMarkup(s string) string {
	src := []byte(s)
	doc := inlineParser.Parse(text.NewReader(src))

	drop := make([]bool, len(src))
	cut := func(from, to int) {
		for i := max(from, 0); i < to && i < len(drop); i++ {
			drop[i] = true
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Emphasis, *ast.CodeSpan, *ast.Link, *ast.Image:
		default:
			return ast.WalkContinue, nil
		}
		start, stop, ok := extent(n, src)
		if !ok {
			return ast.WalkContinue, nil
		}
		in0, in1, ok := inner(n, src)
		if !ok {
			return ast.WalkContinue, nil
		}
		if e, isEm := n.(*ast.Emphasis); isEm && e.Level == 1 && gluedToWord(src, start, stop) {
			return ast.WalkContinue, nil
		}
		cut(start, in0)
		cut(in1, stop)
		return ast.WalkContinue, nil
	})

	out := make([]byte, 0, len(src))
	for i, b := range src {
		if !drop[i] {
			out = append(out, b)
		}
	}
	return string(out)
}

// extent returns the source byte range of n including its delimiters.
func extent(n ast.Node, src []byte) (start, stop int, ok bool) {
	switch v := n.(type) {
	case *ast.Text:
		return v.Segment.Start, v.Segment.Stop, true

	case *ast.Emphasis:
		in0, in1, ok := inner(n, src)
		if !ok {
			return 0, 0, false
		}
		start, stop = in0-v.Level, in1+v.Level
		if start < 0 || stop > len(src) {
			return 0, 0, false
		}
		d := src[start]
		if d != '*' && d != '_' {
			return 0, 0, false
		}
		for i := 0; i < v.Level; i++ {
			if src[start+i] != d || src[in1+i] != d {
				return 0, 0, false
			}
		}
		return start, stop, true

	case *ast.CodeSpan:
		in0, in1, ok := inner(n, src)
		if !ok {
			return 0, 0, false
		}
		start = in0
		for start > 0 && src[start-1] == ' ' {
			start--
		}
		ticks := 0
		for start > 0 && src[start-1] == '`' {
			start--
			ticks++
		}
		stop = in1
		for stop < len(src) && src[stop] == ' ' {
			stop++
		}
		for i := 0; i < ticks; i++ {
			if stop >= len(src) || src[stop] != '`' {
				return 0, 0, false
			}
			stop++
		}
		return start, stop, ticks > 0

	case *ast.Link, *ast.Image:
		in0, in1, ok := inner(n, src)
		if !ok {
			return 0, 0, false
		}
		open := "["
		if _, isImage := n.(*ast.Image); isImage {
			open = "!["
		}
		start = in0 - len(open)
		if start < 0 || string(src[start:in0]) != open {
			return 0, 0, false
		}
		stop, ok = linkTail(src, in1)
		return start, stop, ok

	default:
		in0, in1, ok := inner(n, src)
		return in0, in1, ok
	}
}

// inner returns the source range spanned by the children of n.
func inner(n ast.Node, src []byte) (start, stop int, ok bool) {
	first, last := n.FirstChild(), n.LastChild()
	if first == nil || last == nil {
		return 0, 0, false
	}
	start, _, ok = extent(first, src)
	if !ok {
		return 0, 0, false
	}
	_, stop, ok = extent(last, src)
	return start, stop, ok
}

// linkTail returns the end of "](dest)", "][ref]" or "]" starting at i.
func linkTail(src []byte, i int) (int, bool) {
	if i >= len(src) || src[i] != ']' {
		return 0, false
	}
	i++
	if i >= len(src) {
		return i, true
	}
	switch src[i] {
	case '(':
		depth := 0
		for j := i; j < len(src); j++ {
			switch src[j] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return j + 1, true
				}
			case '\n':
				return 0, false
			}
		}
		return 0, false
	case '[':
		for j := i + 1; j < len(src); j++ {
			if src[j] == ']' {
				return j + 1, true
			}
			if src[j] == '\n' {
				return 0, false
			}
		}
		return 0, false
	}
	return i, true
}

// gluedToWord reports whether the delimiters at start and stop touch a word
// character on the outside.
func gluedToWord(src []byte, start, stop int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRune(src[:start]); isWordRune(r) {
			return true
		}
	}
	if stop < len(src) {
		if r, _ := utf8.DecodeRune(src[stop:]); isWordRune(r) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
