package docgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/alnah/go-docgen/internal/pipeline"
)

// fixedDate makes native output reproducible.
var fixedDate = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func nativeJob(blocks []Block) *renderJob {
	meta := Metadata{Title: "Report", Author: "Ann", Subject: "Testing"}
	return &renderJob{
		Blocks: pipeline.WithTitle(meta.Title, blocks),
		Meta:   meta,
		Page:   DefaultPageSettings(),
		Sheet:  pipeline.DefaultStyleSheet(),
	}
}

func TestFpdfBackend_Render(t *testing.T) {
	t.Parallel()

	blocks := Classify(Normalize(`EXECUTIVE SUMMARY
Revenue grew in every region this year.

Key Points:
- Costs fell
- Margins rose

1. First Finding
| Name | Age |
|---|---|
| Ann | 30 |
| Bob | 41 |`))

	pdf, err := newFpdfBackend(fixedDate).Render(context.Background(), nativeJob(blocks))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF: %q", pdf[:min(len(pdf), 16)])
	}
	for _, key := range []string{"/Title", "/Author", "/Subject", "/Creator"} {
		if !bytes.Contains(pdf, []byte(key)) {
			t.Errorf("Info dictionary missing %s", key)
		}
	}
}

func TestFpdfBackend_TitleOnly(t *testing.T) {
	t.Parallel()

	pdf, err := newFpdfBackend(fixedDate).Render(context.Background(), nativeJob(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("expected a PDF for a title-only document")
	}
}

func TestFpdfBackend_Deterministic(t *testing.T) {
	t.Parallel()

	blocks := []Block{
		{Kind: KindMajorHeading, Text: "OVERVIEW AND SCOPE"},
		{Kind: KindParagraph, Text: "Déjà vu • naïve café"},
	}

	first, err := newFpdfBackend(fixedDate).Render(context.Background(), nativeJob(blocks))
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := newFpdfBackend(fixedDate).Render(context.Background(), nativeJob(blocks))
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("renders with a fixed creation date should be identical")
	}
}

func TestFpdfBackend_UnicodeText(t *testing.T) {
	t.Parallel()

	blocks := []Block{
		{Kind: KindParagraph, Text: "Growth ≥ 5% → target"},
		{Kind: KindListItem, Marker: "•", Text: "Ελληνικά και кириллица"},
		{Kind: KindTable, Rows: [][]string{{"Metric", "Δ"}, {"Margin", "≤ 2 €"}}},
	}

	pdf, err := newFpdfBackend(fixedDate).Render(context.Background(), nativeJob(blocks))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(pdf, []byte("/FontFile2")) {
		t.Error("expected an embedded TrueType font")
	}
}

func TestFpdfBackend_UnsupportedGlyph(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		block Block
	}{
		{"paragraph", Block{Kind: KindParagraph, Text: "Office in 東京"}},
		{"table cell", Block{Kind: KindTable, Rows: [][]string{{"City"}, {"東京"}}}},
		{"emoji", Block{Kind: KindParagraph, Text: "Done 😀"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pdf, err := newFpdfBackend(fixedDate).Render(context.Background(), nativeJob([]Block{tt.block}))
			if !errors.Is(err, ErrUnsupportedGlyph) || !errors.Is(err, ErrPDFGeneration) {
				t.Fatalf("error = %v, want ErrUnsupportedGlyph wrapped in ErrPDFGeneration", err)
			}
			if pdf != nil {
				t.Error("no bytes should be returned on error")
			}
		})
	}
}

func TestFpdfBackend_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newFpdfBackend(fixedDate).Render(ctx, nativeJob(nil))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFpdfBackend_PageSizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page *PageSettings
	}{
		{"letter", &PageSettings{Size: PageSizeLetter, Orientation: OrientationPortrait, Margin: 0.75}},
		{"a4 landscape", &PageSettings{Size: PageSizeA4, Orientation: OrientationLandscape, Margin: 1}},
		{"legal", &PageSettings{Size: PageSizeLegal, Orientation: OrientationPortrait, Margin: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			job := nativeJob([]Block{{Kind: KindParagraph, Text: "x"}})
			job.Page = tt.page

			pdf, err := newFpdfBackend(fixedDate).Render(context.Background(), job)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			w, h := tt.page.dimensions()
			box := fmt.Sprintf("/MediaBox [0 0 %.2f %.2f]", w*72, h*72)
			if !bytes.Contains(pdf, []byte(box)) {
				t.Errorf("expected %s in output", box)
			}
		})
	}
}

// newTestLayout returns a layout on a fresh letter page.
func newTestLayout() *fpdfLayout {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: 612, Ht: 792},
	})
	pdf.SetMargins(54, 54, 54)
	pdf.SetAutoPageBreak(true, 54)
	registerFonts(pdf)
	pdf.AddPage()

	return &fpdfLayout{
		pdf:    pdf,
		sheet:  pipeline.DefaultStyleSheet(),
		left:   54,
		top:    54,
		margin: 54,
		width:  504,
		bottom: 738,
	}
}

func TestFpdfLayout_TableSpansPages(t *testing.T) {
	t.Parallel()

	rows := [][]string{{"Region", "Revenue", "Notes"}}
	for i := range 120 {
		rows = append(rows, []string{fmt.Sprintf("R%d", i), "100", "steady growth"})
	}

	l := newTestLayout()
	l.table(rows)

	if l.pdf.Err() {
		t.Fatalf("layout error: %v", l.pdf.Error())
	}
	if l.pdf.PageNo() < 2 {
		t.Errorf("PageNo() = %d, want a multi-page table", l.pdf.PageNo())
	}
	if y := l.pdf.GetY(); y > l.bottom+l.sheet.Table.SpaceAfter {
		t.Errorf("table ended below the page break line: y = %g", y)
	}
}

func TestFpdfLayout_WrapRow(t *testing.T) {
	t.Parallel()

	l := newTestLayout()
	st := l.bodyStyle(0)
	colW := 100.0

	_, short := l.wrapRow([]string{"a", "b"}, colW, st)
	if want := st.leading + 2*st.pad; short != want {
		t.Errorf("single-line row height = %g, want %g", short, want)
	}

	lines, long := l.wrapRow([]string{"a", strings.Repeat("wrapping words ", 20)}, colW, st)
	if long <= short {
		t.Errorf("wrapped row height = %g, want more than %g", long, short)
	}
	if len(lines[1]) < 2 {
		t.Errorf("long cell wrapped into %d lines, want several", len(lines[1]))
	}

	_, empty := l.wrapRow([]string{"", ""}, colW, st)
	if empty != short {
		t.Errorf("empty row height = %g, want %g", empty, short)
	}
}

func TestFpdfLayout_TallRowSplitsAcrossPages(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("This cell holds far more text than one page can show. ", 200)
	rows := [][]string{
		{"Item", "Notes"},
		{"A", "short"},
		{"B", long},
		{"C", "after"},
	}

	l := newTestLayout()
	l.table(rows)

	if l.pdf.Err() {
		t.Fatalf("layout error: %v", l.pdf.Error())
	}
	if l.pdf.PageNo() < 3 {
		t.Errorf("PageNo() = %d, want the tall row spread over several pages", l.pdf.PageNo())
	}
	if y := l.pdf.GetY(); y > l.bottom+l.sheet.Table.SpaceAfter {
		t.Errorf("table ended below the page break line: y = %g", y)
	}
}

func TestFpdfLayout_DrawRowStaysAboveBreakLine(t *testing.T) {
	t.Parallel()

	l := newTestLayout()
	st := l.bodyStyle(0)
	lines, _ := l.wrapRow([]string{strings.Repeat("line ", 2000)}, l.width, st)

	pages := 0
	l.drawRow(lines, l.width, st, func() {
		pages++
		l.pdf.AddPage()
	})

	if pages == 0 {
		t.Fatal("an over-tall row should continue on a new page")
	}
	if y := l.pdf.GetY(); y > l.bottom {
		t.Errorf("row ended below the page break line: y = %g, bottom = %g", y, l.bottom)
	}
}

func TestFpdfLayout_ListAndHeadings(t *testing.T) {
	t.Parallel()

	l := newTestLayout()
	start := l.pdf.GetY()

	for _, b := range []Block{
		{Kind: KindTitle, Text: "Report"},
		{Kind: KindMajorHeading, Text: "REVENUE AND EXPENSES"},
		{Kind: KindListItem, Marker: "•", Text: "point"},
		{Kind: KindListItem, Marker: "12.", Text: "numbered"},
	} {
		l.block(b)
	}

	if l.pdf.Err() {
		t.Fatalf("layout error: %v", l.pdf.Error())
	}
	if l.pdf.GetY() <= start {
		t.Error("blocks should advance the cursor")
	}
}

func TestAlignStr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		align Align
		want  string
	}{
		{pipeline.AlignLeft, "L"},
		{pipeline.AlignCenter, "C"},
		{pipeline.AlignJustify, "J"},
	}
	for _, tt := range tests {
		if got := alignStr(tt.align); got != tt.want {
			t.Errorf("alignStr(%d) = %q, want %q", tt.align, got, tt.want)
		}
	}
}
