package docgen

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/alnah/go-docgen/internal/pipeline"
)

// listMarkerWidth is the width reserved for list markers, in points.
const listMarkerWidth = 14

// layoutEpsilon absorbs rounding when a row ends exactly on the break line.
const layoutEpsilon = 1e-6

// fpdfBackend draws blocks directly with gofpdf. It holds no resources, so a
// single instance can render any number of documents.
type fpdfBackend struct {
	creationDate time.Time // zero means now
}

// newFpdfBackend creates the native backend.
func newFpdfBackend(creationDate time.Time) *fpdfBackend {
	return &fpdfBackend{creationDate: creationDate}
}

// Render lays out job.Blocks on pages sized by job.Page.
func (b *fpdfBackend) Render(ctx context.Context, job *renderJob) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkGlyphs(job.Blocks); err != nil {
		return nil, err
	}

	page := job.Page.orDefault()
	wIn, hIn := page.dimensions()
	margin := page.Margin * pipeline.PointsPerInch

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: wIn * pipeline.PointsPerInch, Ht: hIn * pipeline.PointsPerInch},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetCatalogSort(true)
	registerFonts(pdf)

	created := b.creationDate
	if created.IsZero() {
		created = time.Now()
	}
	pdf.SetCreationDate(created)

	pdf.SetTitle(job.Meta.Title, true)
	pdf.SetAuthor(job.Meta.Author, true)
	pdf.SetSubject(job.Meta.Subject, true)
	pdf.SetCreator(Creator, true)

	l := &fpdfLayout{
		pdf:    pdf,
		sheet:  job.Sheet,
		left:   margin,
		top:    margin,
		margin: margin,
		width:  wIn*pipeline.PointsPerInch - 2*margin,
		bottom: hIn*pipeline.PointsPerInch - margin,
	}
	if l.sheet == nil {
		l.sheet = pipeline.DefaultStyleSheet()
	}

	pdf.AddPage()
	for _, block := range job.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l.block(block)
		if pdf.Err() {
			return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	return buf.Bytes(), nil
}

// Close is a no-op; the native backend holds no resources.
func (b *fpdfBackend) Close() error {
	return nil
}

// fpdfLayout draws blocks onto one gofpdf document.
// All measures are in points.
type fpdfLayout struct {
	pdf    *gofpdf.Fpdf
	sheet  *StyleSheet
	left   float64
	top    float64
	margin float64
	width  float64 // usable width
	bottom float64 // page break line
}

func (l *fpdfLayout) block(b Block) {
	if b.Kind == KindTable {
		l.table(b.Rows)
		return
	}
	l.text(b)
}

// text draws a heading, paragraph or list item.
func (l *fpdfLayout) text(b Block) {
	st := l.sheet.Style(b.Kind)

	// Keep headings with at least two lines of what follows.
	if isHeading(b.Kind) && l.pdf.GetY()+st.SpaceBefore+3*st.Leading > l.bottom {
		l.pdf.AddPage()
	}
	l.space(st.SpaceBefore)

	l.setFont(st.FontSize, st.Bold)
	l.setTextColor(st.Color)

	x := l.left + st.Indent
	w := l.width - st.Indent
	l.pdf.SetX(x)

	if b.Kind == KindListItem {
		l.pdf.CellFormat(listMarkerWidth, st.Leading, b.Marker, "", 0, "L", false, 0, "")
		w -= listMarkerWidth
	}

	l.pdf.MultiCell(w, st.Leading, b.Text, "", alignStr(st.Align), false)

	after := st.SpaceAfter
	if b.Kind == KindTitle {
		after += l.sheet.TitleGap
	}
	l.pdf.Ln(after)
}

// rowStyle carries the colours and metrics of a header or body row.
type rowStyle struct {
	bg, fg  Color
	size    float64
	leading float64
	pad     float64
	bold    bool
}

// table draws a grid with a repeated header row. A row that does not fit
// starts a new page under a fresh header; only a row taller than a whole
// page is split, line by line, across pages.
func (l *fpdfLayout) table(rows [][]string) {
	if len(rows) == 0 {
		return
	}
	ts := l.sheet.Table
	colW := l.width / float64(len(rows[0]))
	head := rowStyle{ts.HeaderBackground, ts.HeaderText, ts.HeaderFontSize, ts.HeaderLeading, ts.HeaderPadding, true}

	// Row placement is managed here, so automatic breaks would only split
	// cells.
	l.pdf.SetAutoPageBreak(false, l.margin)
	defer l.pdf.SetAutoPageBreak(true, l.margin)

	header, headerH := l.wrapRow(rows[0], colW, head)
	repeatHeader := func() {
		l.pdf.AddPage()
		l.drawRow(header, colW, head, nil)
	}
	room := l.bottom - l.top - headerH

	// Header plus the first body row must fit together, or the first line of
	// that row when it is taller than a page.
	need := headerH
	if len(rows) > 1 {
		body := l.bodyStyle(0)
		_, firstH := l.wrapRow(rows[1], colW, body)
		if firstH > room {
			firstH = body.leading + 2*body.pad
		}
		need += firstH
	}
	l.space(ts.SpaceBefore)
	if l.pdf.GetY()+need > l.bottom {
		l.pdf.AddPage()
	}

	l.rule(l.pdf.GetY())
	l.drawRow(header, colW, head, nil)

	for i, row := range rows[1:] {
		body := l.bodyStyle(i)
		lines, h := l.wrapRow(row, colW, body)
		if l.pdf.GetY()+h > l.bottom && h <= room {
			repeatHeader()
		}
		l.drawRow(lines, colW, body, repeatHeader)
	}

	l.rule(l.pdf.GetY())
	l.pdf.SetX(l.left)
	l.pdf.Ln(ts.SpaceAfter)
}

// bodyStyle returns the style of the i-th body row; backgrounds alternate.
func (l *fpdfLayout) bodyStyle(i int) rowStyle {
	ts := l.sheet.Table
	return rowStyle{ts.RowBackgrounds[i%2], ts.BodyText, ts.BodyFontSize, ts.BodyLeading, ts.BodyPadding, false}
}

// drawRow draws wrapped cells at the current Y and moves below them. When the
// lines run past the page break line, the row is closed, newPage is called
// and the remaining lines continue on the next page. A nil newPage only adds
// a page.
func (l *fpdfLayout) drawRow(cells [][]string, colW float64, st rowStyle, newPage func()) {
	if newPage == nil {
		newPage = l.pdf.AddPage
	}
	total := 1
	for _, lines := range cells {
		total = max(total, len(lines))
	}

	fresh := false
	for from := 0; from < total; {
		fit := int((l.bottom - l.pdf.GetY() - 2*st.pad + layoutEpsilon) / st.leading)
		if fit < 1 {
			if !fresh {
				newPage()
				fresh = true
				continue
			}
			fit = 1
		}
		to := min(from+fit, total)
		l.drawSlice(cells, from, to, colW, st)
		from = to
		if from < total {
			newPage()
			fresh = true
		}
	}
}

// drawSlice draws lines [from, to) of every cell as one framed band.
func (l *fpdfLayout) drawSlice(cells [][]string, from, to int, colW float64, st rowStyle) {
	ts := l.sheet.Table
	y := l.pdf.GetY()
	h := float64(to-from)*st.leading + 2*st.pad

	l.setFillColor(st.bg)
	l.setDrawColor(ts.GridColor)
	l.pdf.SetLineWidth(ts.GridWidth)
	l.setFont(st.size, st.bold)
	l.setTextColor(st.fg)

	for i, lines := range cells {
		x := l.left + float64(i)*colW
		l.pdf.Rect(x, y, colW, h, "FD")
		for n := from; n < to && n < len(lines); n++ {
			l.pdf.SetXY(x+st.pad, y+st.pad+float64(n-from)*st.leading)
			l.pdf.CellFormat(colW-2*st.pad, st.leading, lines[n], "", 0, "L", false, 0, "")
		}
	}

	l.pdf.SetXY(l.left, y+h)
}

// wrapRow splits every cell into lines that fit the column and returns them
// with the height of the tallest cell plus padding.
func (l *fpdfLayout) wrapRow(cells []string, colW float64, st rowStyle) ([][]string, float64) {
	l.setFont(st.size, st.bold)
	wrapped := make([][]string, len(cells))
	lines := 1
	for i, cell := range cells {
		wrapped[i] = l.pdf.SplitText(cell, colW-2*st.pad)
		lines = max(lines, len(wrapped[i]))
	}
	return wrapped, float64(lines)*st.leading + 2*st.pad
}

// rule draws the heavy horizontal line above the header or below the last row.
func (l *fpdfLayout) rule(y float64) {
	ts := l.sheet.Table
	l.setDrawColor(ts.RuleColor)
	l.pdf.SetLineWidth(ts.RuleWidth)
	l.pdf.Line(l.left, y, l.left+l.width, y)
}

// space adds vertical space, except at the top of a page.
func (l *fpdfLayout) space(h float64) {
	if h <= 0 || l.pdf.GetY() <= l.top {
		return
	}
	if l.pdf.GetY()+h > l.bottom {
		l.pdf.AddPage()
		return
	}
	l.pdf.Ln(h)
}

func (l *fpdfLayout) setFont(size float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	l.pdf.SetFont(fontFamily, style, size)
}

func (l *fpdfLayout) setTextColor(c Color) {
	r, g, b := c.RGB()
	l.pdf.SetTextColor(r, g, b)
}

func (l *fpdfLayout) setFillColor(c Color) {
	r, g, b := c.RGB()
	l.pdf.SetFillColor(r, g, b)
}

func (l *fpdfLayout) setDrawColor(c Color) {
	r, g, b := c.RGB()
	l.pdf.SetDrawColor(r, g, b)
}

// isHeading reports whether kind is one of the heading kinds.
func isHeading(kind Kind) bool {
	switch kind {
	case KindMajorHeading, KindSectionHeading, KindSubsectionHeading:
		return true
	}
	return false
}

// alignStr maps an alignment to the gofpdf alignment string.
func alignStr(a Align) string {
	switch a {
	case pipeline.AlignCenter:
		return "C"
	case pipeline.AlignJustify:
		return "J"
	}
	return "L"
}
