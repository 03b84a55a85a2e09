// Package pdfmeta sets the document information dictionary of an existing
// PDF. The file is parsed and written back by pdfcpu, so both classic
// cross-reference tables and cross-reference streams are accepted.
package pdfmeta

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/unicode"
)

// ErrMalformed is returned when the input cannot be parsed as a PDF.
var ErrMalformed = errors.New("pdfmeta: malformed PDF")

// Info holds the document information entries. Empty fields leave the
// existing entry untouched.
type Info struct {
	Title   string
	Author  string
	Subject string
	Creator string
}

var disableConfigDir sync.Once

// newConfig returns a pdfcpu configuration that never touches the user's
// config directory and tolerates the small deviations browsers produce.
func newConfig() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Amend returns a copy of pdf whose Info dictionary carries the non-empty
// fields of info. Other Info entries are kept.
func Amend(pdf []byte, info Info) ([]byte, error) {
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		return nil, fmt.Errorf("%w: missing %%PDF header", ErrMalformed)
	}

	conf := newConfig()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdf), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	d, err := infoDict(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries(info) {
		if e.value == "" {
			continue
		}
		d[e.key] = encodeString(e.value)
	}

	var buf bytes.Buffer
	buf.Grow(len(pdf) + 512)
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("pdfmeta: writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// infoDict returns the document's Info dictionary, creating it when the
// trailer has none.
func infoDict(ctx *model.Context) (types.Dict, error) {
	if ctx.Info == nil {
		d := types.NewDict()
		ref, err := ctx.IndRefForNewObject(d)
		if err != nil {
			return nil, fmt.Errorf("pdfmeta: creating Info: %w", err)
		}
		ctx.Info = ref
		return d, nil
	}

	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil {
		return nil, fmt.Errorf("%w: Info: %v", ErrMalformed, err)
	}
	if d == nil {
		return nil, fmt.Errorf("%w: Info is not a dictionary", ErrMalformed)
	}
	return d, nil
}

type entry struct{ key, value string }

func entries(info Info) []entry {
	return []entry{
		{"Title", info.Title},
		{"Author", info.Author},
		{"Subject", info.Subject},
		{"Creator", info.Creator},
	}
}

var utf16BOM = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)

// encodeString returns a PDF text string: a literal string for printable
// ASCII, UTF-16BE hex with a byte order mark otherwise.
func encodeString(s string) types.Object {
	ascii := true
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c > 0x7e {
			ascii = false
			break
		}
	}

	if ascii {
		r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
		return types.StringLiteral(r.Replace(s))
	}

	// Encoding valid UTF-8 to UTF-16 cannot fail; invalid bytes become U+FFFD.
	raw, _ := utf16BOM.NewEncoder().String(s)
	return types.HexLiteral(strings.ToUpper(hex.EncodeToString([]byte(raw))))
}
