package pipeline

// Kind identifies the layout role of a Block.
type Kind int

// Block kinds, from the document title down to tables.
const (
	KindTitle Kind = iota
	KindMajorHeading
	KindSectionHeading
	KindSubsectionHeading
	KindParagraph
	KindListItem
	KindTable
)

// String returns the kind name used in CSS classes and logs.
func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindMajorHeading:
		return "major-heading"
	case KindSectionHeading:
		return "section-heading"
	case KindSubsectionHeading:
		return "subsection-heading"
	case KindParagraph:
		return "paragraph"
	case KindListItem:
		return "list-item"
	case KindTable:
		return "table"
	}
	return "unknown"
}

// Block is one classified unit of content.
// Text blocks carry Text; list items also carry their Marker ("•" for
// bullets, "3." or "3)" for numbered items); table blocks carry Rows, whose
// first row is the header.
type Block struct {
	Kind   Kind
	Text   string
	Marker string
	Rows   [][]string
}

// Columns returns the column count of a table block, 0 for other kinds.
func (b Block) Columns() int {
	if b.Kind != KindTable || len(b.Rows) == 0 {
		return 0
	}
	return len(b.Rows[0])
}
