package legacy

import (
	"fmt"

	"github.com/lepinkainen/bookshelf/internal/csvutil"
)

// Column names of the legacy export.
const (
	ColISBN        = "ISBN-nr"
	ColTitle       = "Titel"
	ColAuthor      = "Forfatter"
	ColPublisher   = "Forlag"
	ColYear        = "Årstal"
	ColLanguage    = "Sprog"
	ColPages       = "Sideantal"
	ColDescription = "Beskrivelse"
	ColCountry     = "Land"
)

// Columns lists every column a legacy export must carry.
var Columns = []string{
	ColISBN, ColTitle, ColAuthor, ColPublisher, ColYear,
	ColLanguage, ColPages, ColDescription, ColCountry,
}

// Row is one book of the legacy catalog, as exported from the joined
// Udgave/Titel tables.
type Row struct {
	Line        int    `json:"line"`
	ISBN        string `json:"isbn_nr,omitempty"`
	Title       string `json:"titel"`
	Author      string `json:"forfatter,omitempty"`
	Publisher   string `json:"forlag,omitempty"`
	Year        string `json:"aarstal,omitempty"`
	Language    string `json:"sprog,omitempty"`
	Pages       string `json:"sideantal,omitempty"`
	Description string `json:"beskrivelse,omitempty"`
	Country     string `json:"land,omitempty"`
}

func (r Row) String() string {
	if r.ISBN != "" {
		return fmt.Sprintf("line %d (%s, %q)", r.Line, r.ISBN, r.Title)
	}
	return fmt.Sprintf("line %d (%q)", r.Line, r.Title)
}

func parseRow(rec csvutil.Record) (Row, error) {
	return Row{
		Line:        rec.Line,
		ISBN:        rec.Get(ColISBN),
		Title:       rec.Get(ColTitle),
		Author:      rec.Get(ColAuthor),
		Publisher:   rec.Get(ColPublisher),
		Year:        rec.Get(ColYear),
		Language:    rec.Get(ColLanguage),
		Pages:       rec.Get(ColPages),
		Description: rec.Get(ColDescription),
		Country:     rec.Get(ColCountry),
	}, nil
}

// Load reads a legacy CSV export. The delimiter is ',' unless comma is set.
func Load(path string, comma rune) ([]Row, error) {
	rows, err := csvutil.ProcessCSV(path, parseRow, csvutil.ProcessorOptions{
		Comma:           comma,
		RequiredColumns: Columns,
	})
	if err != nil {
		return nil, fmt.Errorf("loading legacy catalog %s: %w", path, err)
	}
	return rows, nil
}
