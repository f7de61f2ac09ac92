// Package legacy reads the DBKK spreadsheet export and maps its rows to
// canonical records. It is the last-priority source and the only one that
// knows where a book sits on the shelf.
package legacy

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/lepinkainen/bookshelf/internal/enrichment/book"
	"github.com/lepinkainen/bookshelf/internal/errors"
	"github.com/lepinkainen/bookshelf/internal/isbn"
)

var errNoTitle = stdErrors.New("missing title")

// Map converts a legacy row into a canonical record. An unknown shelf category
// or region is a mapping error: the legacy data is expected to be clean.
func Map(row Row) (*book.Record, error) {
	canonical := isbn.Canonical(row.ISBN)
	id := canonical
	if id == "" {
		id = row.String()
	}

	if row.Title == "" {
		return nil, errors.NewMappingError(book.SourceLegacy, id, "", errNoTitle)
	}

	location, err := LocationLabel(row.Description, row.Country)
	if err != nil {
		return nil, errors.NewMappingError(book.SourceLegacy, id, row.Title, err)
	}

	rec := &book.Record{
		Title:      row.Title,
		Authors:    ReverseAuthor(row.Author),
		Publisher:  row.Publisher,
		Year:       row.Year,
		Language:   LanguageTable[row.Language],
		Pages:      row.Pages,
		Categories: row.Description,
		Location:   location,
	}
	// A malformed ISBN is dropped so the row is keyed by title and authors.
	switch {
	case isbn.IsISBN13(canonical):
		rec.ISBN, rec.ISBN13 = canonical, canonical
	case isbn.IsISBN10(canonical):
		rec.ISBN, rec.ISBN10 = canonical, canonical
	}
	return rec, nil
}

// LocationLabel returns the shelf label for a category, e.g. "3", or
// "2.<region>" for travel books.
func LocationLabel(category, country string) (string, error) {
	shelf, ok := CategoryTable[category]
	if !ok {
		return "", fmt.Errorf("unknown category %q", category)
	}
	if category != TravelCategory {
		return fmt.Sprint(shelf), nil
	}
	region, ok := RegionTable[country]
	if !ok {
		return "", fmt.Errorf("unknown region %q", country)
	}
	return regionLabel(region), nil
}

// ReverseAuthor turns "Last, First" into "First Last". Names without a comma
// are returned unchanged.
func ReverseAuthor(author string) string {
	if !strings.Contains(author, ",") {
		return author
	}
	parts := strings.Split(author, ", ")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " ")
}
