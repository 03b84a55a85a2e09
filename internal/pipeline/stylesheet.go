package pipeline

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync"
)

// PointsPerInch converts inches to PDF points.
const PointsPerInch = 72.0

// Align is the horizontal alignment of a text block.
type Align int

// Alignments supported by both backends.
const (
	AlignLeft Align = iota
	AlignCenter
	AlignJustify
)

// css returns the CSS text-align value.
func (a Align) css() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignJustify:
		return "justify"
	}
	return "left"
}

// Color is a "#rrggbb" hex colour.
type Color string

// RGB returns the colour components, or black if c is malformed.
func (c Color) RGB() (r, g, b int) {
	s := strings.TrimPrefix(string(c), "#")
	if len(s) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

// Style describes the typography and spacing of one block kind.
// Sizes and spacing are in points.
type Style struct {
	FontSize    float64
	Leading     float64
	Color       Color
	Bold        bool
	SpaceBefore float64
	SpaceAfter  float64
	Align       Align
	Indent      float64
}

// TableStyle describes table grids.
type TableStyle struct {
	HeaderBackground Color
	HeaderText       Color
	BodyText         Color
	RowBackgrounds   [2]Color // alternating body row shading
	GridColor        Color
	GridWidth        float64
	RuleColor        Color // heavy rule above the header and below the last row
	RuleWidth        float64
	HeaderFontSize   float64
	HeaderLeading    float64
	BodyFontSize     float64
	BodyLeading      float64
	HeaderPadding    float64
	BodyPadding      float64
	SpaceBefore      float64
	SpaceAfter       float64
}

// StyleSheet maps block kinds to styles. Renderers only read it, so one
// sheet can serve concurrent renders.
type StyleSheet struct {
	FontFamily string
	TextColor  Color
	TitleGap   float64 // fixed gap below the title, in points
	Styles     map[Kind]Style
	Table      TableStyle
}

// Style returns the style for kind, falling back to the paragraph style.
func (s *StyleSheet) Style(kind Kind) Style {
	if st, ok := s.Styles[kind]; ok {
		return st
	}
	return s.Styles[KindParagraph]
}

// Clone returns a deep copy of s.
func (s *StyleSheet) Clone() *StyleSheet {
	c := *s
	c.Styles = maps.Clone(s.Styles)
	return &c
}

// DefaultStyleSheet returns a copy of the default style sheet that the
// caller may modify.
func DefaultStyleSheet() *StyleSheet {
	return defaultStyleSheet().Clone()
}

var defaultStyleSheet = sync.OnceValue(func() *StyleSheet {
	return &StyleSheet{
		FontFamily: "Helvetica, Arial, sans-serif",
		TextColor:  "#000000",
		TitleGap:   0.4 * PointsPerInch,
		Styles: map[Kind]Style{
			KindTitle: {
				FontSize: 24, Leading: 29, Color: "#1f3a70", Bold: true,
				SpaceAfter: 20, Align: AlignCenter,
			},
			KindMajorHeading: {
				FontSize: 14, Leading: 17, Color: "#2c5aa0", Bold: true,
				SpaceBefore: 12 + 0.2*PointsPerInch, SpaceAfter: 12 + 0.05*PointsPerInch,
			},
			KindSectionHeading: {
				FontSize: 12, Leading: 15, Color: "#4a5568", Bold: true,
				SpaceBefore: 10 + 0.15*PointsPerInch, SpaceAfter: 8 + 0.05*PointsPerInch,
			},
			KindSubsectionHeading: {
				FontSize: 11, Leading: 14, Color: "#5a6b7a", Bold: true,
				SpaceBefore: 8 + 0.1*PointsPerInch, SpaceAfter: 6,
			},
			KindParagraph: {
				FontSize: 11, Leading: 16, Color: "#000000",
				SpaceAfter: 12, Align: AlignJustify,
			},
			KindListItem: {
				FontSize: 11, Leading: 16, Color: "#000000",
				SpaceAfter: 6, Align: AlignJustify, Indent: 20,
			},
		},
		Table: TableStyle{
			HeaderBackground: "#2c5aa0",
			HeaderText:       "#f5f5f5",
			BodyText:         "#000000",
			RowBackgrounds:   [2]Color{"#ffffff", "#f8fafc"},
			GridColor:        "#d0d0d0",
			GridWidth:        1,
			RuleColor:        "#2c5aa0",
			RuleWidth:        2,
			HeaderFontSize:   10,
			HeaderLeading:    12,
			BodyFontSize:     9,
			BodyLeading:      11,
			HeaderPadding:    8,
			BodyPadding:      8,
			SpaceBefore:      0.15 * PointsPerInch,
			SpaceAfter:       0.15 * PointsPerInch,
		},
	}
})

// DefaultCSS returns the CSS rendition of the default style sheet.
func DefaultCSS() string {
	return defaultCSS()
}

var defaultCSS = sync.OnceValue(func() string {
	return defaultStyleSheet().CSS()
})

// cssSelectors maps block kinds to the elements RenderHTML emits.
var cssSelectors = map[Kind]string{
	KindTitle:             "h1.title",
	KindMajorHeading:      "h2.major-heading",
	KindSectionHeading:    "h3.section-heading",
	KindSubsectionHeading: "h4.subsection-heading",
	KindParagraph:         "p.paragraph",
	KindListItem:          "p.list-item",
}

// cssKindOrder fixes the rule order so CSS output is deterministic.
var cssKindOrder = []Kind{
	KindTitle,
	KindMajorHeading,
	KindSectionHeading,
	KindSubsectionHeading,
	KindParagraph,
	KindListItem,
}

// CSS renders the style sheet as print CSS for the HTML document.
func (s *StyleSheet) CSS() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, `
/* Base */
html, body {
  margin: 0;
  padding: 0;
  font-family: %s;
  color: %s;
  -webkit-print-color-adjust: exact;
  print-color-adjust: exact;
}
h1, h2, h3, h4 {
  margin: 0;
  break-after: avoid;
  page-break-after: avoid;
  break-inside: avoid;
  page-break-inside: avoid;
}
p {
  margin: 0;
  orphans: 2;
  widows: 2;
}
`, s.FontFamily, s.TextColor)

	for _, kind := range cssKindOrder {
		st := s.Style(kind)
		weight := "normal"
		if st.Bold {
			weight = "bold"
		}
		fmt.Fprintf(&buf, `%s {
  font-size: %gpt;
  line-height: %gpt;
  font-weight: %s;
  color: %s;
  margin: %gpt 0 %gpt %gpt;
  text-align: %s;
}
`, cssSelectors[kind], st.FontSize, st.Leading, weight, st.Color,
			st.SpaceBefore, st.SpaceAfter, st.Indent, st.Align.css())
	}

	fmt.Fprintf(&buf, `.title-gap {
  height: %gpt;
}
.list-item .marker {
  display: inline-block;
  min-width: 1.4em;
}
`, s.TitleGap)

	t := s.Table
	fmt.Fprintf(&buf, `
/* Tables */
table.grid {
  width: 100%%;
  table-layout: fixed;
  border-collapse: collapse;
  margin: %gpt 0 %gpt 0;
  border-top: %gpt solid %s;
  border-bottom: %gpt solid %s;
}
table.grid thead {
  display: table-header-group;
}
table.grid tr {
  break-inside: avoid;
  page-break-inside: avoid;
}
table.grid th, table.grid td {
  border: %gpt solid %s;
  text-align: left;
  overflow-wrap: anywhere;
  word-break: break-word;
}
table.grid th {
  background: %s;
  color: %s;
  font-weight: bold;
  font-size: %gpt;
  line-height: %gpt;
  padding: %gpt;
  vertical-align: middle;
}
table.grid td {
  color: %s;
  font-size: %gpt;
  line-height: %gpt;
  padding: %gpt;
  vertical-align: top;
}
table.grid tbody tr:nth-child(odd) td {
  background: %s;
}
table.grid tbody tr:nth-child(even) td {
  background: %s;
}
`, t.SpaceBefore, t.SpaceAfter, t.RuleWidth, t.RuleColor, t.RuleWidth, t.RuleColor,
		t.GridWidth, t.GridColor,
		t.HeaderBackground, t.HeaderText, t.HeaderFontSize, t.HeaderLeading, t.HeaderPadding,
		t.BodyText, t.BodyFontSize, t.BodyLeading, t.BodyPadding,
		t.RowBackgrounds[0], t.RowBackgrounds[1])

	return buf.String()
}
