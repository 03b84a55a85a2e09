package docgen

import (
	"fmt"
	"sync"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// fontFamily is the name the Go fonts are registered under in gofpdf.
const fontFamily = "GoSans"

// goRegular is parsed once to answer glyph coverage queries. The bold face
// covers the same characters.
var goRegular = sync.OnceValues(func() (*sfnt.Font, error) {
	return sfnt.Parse(goregular.TTF)
})

// registerFonts embeds the Go Sans regular and bold faces as UTF-8 fonts.
func registerFonts(pdf *gofpdf.Fpdf) {
	pdf.AddUTF8FontFromBytes(fontFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", gobold.TTF)
}

// checkGlyphs returns ErrUnsupportedGlyph for the first character in blocks
// the embedded font cannot draw. Control characters are layout, not text.
func checkGlyphs(blocks []Block) error {
	face, err := goRegular()
	if err != nil {
		return fmt.Errorf("%w: parsing font: %v", ErrPDFGeneration, err)
	}

	var buf sfnt.Buffer
	seen := make(map[rune]bool)
	check := func(s string) error {
		for _, r := range s {
			if seen[r] || unicode.IsControl(r) {
				continue
			}
			seen[r] = true
			idx, err := face.GlyphIndex(&buf, r)
			if err != nil || idx == 0 {
				return fmt.Errorf("%w: %w: %q (U+%04X)", ErrPDFGeneration, ErrUnsupportedGlyph, r, r)
			}
		}
		return nil
	}

	for _, b := range blocks {
		if err := check(b.Marker); err != nil {
			return err
		}
		if err := check(b.Text); err != nil {
			return err
		}
		for _, row := range b.Rows {
			for _, cell := range row {
				if err := check(cell); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
