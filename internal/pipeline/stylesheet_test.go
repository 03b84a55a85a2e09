package pipeline

import (
	"strings"
	"testing"
)

func TestColor_RGB(t *testing.T) {
	t.Parallel()

	tests := []struct {
		color   Color
		r, g, b int
	}{
		{"#2c5aa0", 44, 90, 160},
		{"#ffffff", 255, 255, 255},
		{"1f3a70", 31, 58, 112},
		{"#fff", 0, 0, 0},
		{"#zzzzzz", 0, 0, 0},
		{"", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.color), func(t *testing.T) {
			t.Parallel()

			r, g, b := tt.color.RGB()
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("%q.RGB() = (%d, %d, %d), want (%d, %d, %d)", tt.color, r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestDefaultStyleSheet(t *testing.T) {
	t.Parallel()

	sheet := DefaultStyleSheet()
	if sheet == DefaultStyleSheet() {
		t.Error("DefaultStyleSheet() should return a fresh copy")
	}

	tests := []struct {
		kind     Kind
		fontSize float64
		color    Color
	}{
		{KindTitle, 24, "#1f3a70"},
		{KindMajorHeading, 14, "#2c5aa0"},
		{KindSectionHeading, 12, "#4a5568"},
		{KindSubsectionHeading, 11, "#5a6b7a"},
		{KindParagraph, 11, "#000000"},
		{KindListItem, 11, "#000000"},
	}
	for _, tt := range tests {
		st := sheet.Style(tt.kind)
		if st.FontSize != tt.fontSize || st.Color != tt.color {
			t.Errorf("Style(%s) = %gpt %s, want %gpt %s", tt.kind, st.FontSize, st.Color, tt.fontSize, tt.color)
		}
	}

	if got := sheet.Style(KindTitle).Align; got != AlignCenter {
		t.Errorf("title align = %v, want center", got)
	}
	if got := sheet.Style(KindParagraph).Align; got != AlignJustify {
		t.Errorf("paragraph align = %v, want justify", got)
	}
	if got := sheet.Style(KindListItem).Indent; got != 20 {
		t.Errorf("list indent = %g, want 20", got)
	}
	if got := sheet.TitleGap; got != 28.8 {
		t.Errorf("title gap = %g, want 28.8", got)
	}
}

func TestDefaultStyleSheet_CallerChangesDoNotLeak(t *testing.T) {
	t.Parallel()

	css := DefaultCSS()

	sheet := DefaultStyleSheet()
	sheet.TitleGap = 0
	sheet.Table.RowBackgrounds[0] = "#ff0000"
	sheet.Styles[KindParagraph] = Style{FontSize: 99}
	delete(sheet.Styles, KindTitle)

	fresh := DefaultStyleSheet()
	if fresh.TitleGap != 28.8 {
		t.Errorf("TitleGap = %g, want 28.8", fresh.TitleGap)
	}
	if fresh.Table.RowBackgrounds[0] != "#ffffff" {
		t.Errorf("row background = %s, want #ffffff", fresh.Table.RowBackgrounds[0])
	}
	if got := fresh.Style(KindParagraph).FontSize; got != 11 {
		t.Errorf("paragraph font size = %g, want 11", got)
	}
	if got := fresh.Style(KindTitle).FontSize; got != 24 {
		t.Errorf("title font size = %g, want 24", got)
	}
	if DefaultCSS() != css {
		t.Error("DefaultCSS changed after a caller modified its sheet")
	}
}

func TestStyleSheet_StyleFallback(t *testing.T) {
	t.Parallel()

	sheet := DefaultStyleSheet()
	if sheet.Style(KindTable) != sheet.Style(KindParagraph) {
		t.Error("kinds without a style should fall back to the paragraph style")
	}
}

func TestStyleSheet_CSS(t *testing.T) {
	t.Parallel()

	css := DefaultCSS()
	if css != DefaultStyleSheet().CSS() {
		t.Error("DefaultCSS() should match the default sheet's CSS")
	}

	wants := []string{
		"h1.title {\n  font-size: 24pt;",
		"h2.major-heading {\n  font-size: 14pt;",
		"margin: 26.4pt 0 15.6pt 0pt;",
		"p.list-item {",
		"text-align: justify;",
		"display: table-header-group;",
		"table-layout: fixed;",
		"background: #2c5aa0;",
		"background: #f8fafc;",
		"border: 1pt solid #d0d0d0;",
		"border-top: 2pt solid #2c5aa0;",
		"break-inside: avoid;",
		".title-gap {\n  height: 28.8pt;",
	}
	for _, want := range wants {
		if !strings.Contains(css, want) {
			t.Errorf("CSS missing %q", want)
		}
	}
}
