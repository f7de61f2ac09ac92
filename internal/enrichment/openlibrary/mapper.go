package openlibrary

import (
	stdErrors "errors"
	"strconv"
	"strings"

	"github.com/lepinkainen/bookshelf/internal/enrichment/book"
	"github.com/lepinkainen/bookshelf/internal/errors"
	"github.com/lepinkainen/bookshelf/internal/isbn"
)

const (
	listSeparator  = " ;"
	multiSeparator = "; "
)

var (
	errNoTitle   = stdErrors.New("missing title")
	errNoAuthors = stdErrors.New("missing authors")
)

// MapBook converts a books API entry into a canonical record. Lookups by ISBN
// must echo an isbn_10 or isbn_13 that is equivalent to the requested ISBN.
func MapBook(key BibKey, data *BookData) (*book.Record, error) {
	if data == nil {
		return nil, nil
	}

	if strings.TrimSpace(data.Title) == "" {
		return nil, errors.NewMappingError(book.SourceOpenLibrary, key.String(), "", errNoTitle)
	}
	title := assembleTitle(data.Title, data.Subtitle)

	authors := make([]string, 0, len(data.Authors))
	for _, a := range data.Authors {
		if a.Name != "" {
			authors = append(authors, a.Name)
		}
	}
	if len(authors) == 0 {
		return nil, errors.NewMappingError(book.SourceOpenLibrary, key.String(), title, errNoAuthors)
	}

	isbn10 := data.Identifiers["isbn_10"]
	isbn13 := data.Identifiers["isbn_13"]

	rec := &book.Record{
		Title:       title,
		Authors:     strings.Join(authors, listSeparator),
		ISBN10:      strings.Join(isbn10, multiSeparator),
		ISBN13:      strings.Join(isbn13, multiSeparator),
		OLID:        first(data.Identifiers["openlibrary"]),
		Goodreads:   first(data.Identifiers["goodreads"]),
		LCCN:        first(data.Identifiers["lccn"]),
		OCLC:        first(data.Identifiers["oclc"]),
		Year:        book.ExtractYear(data.PublishDate),
		Language:    data.Language,
		Description: string(data.Description),
	}

	if rec.OLID == "" && key.Kind == KindOLID {
		rec.OLID = key.Value
	}
	if len(data.Publishers) > 0 {
		rec.Publisher = data.Publishers[0].Name
	}
	if data.NumberOfPages > 0 {
		rec.Pages = strconv.Itoa(data.NumberOfPages)
	}
	if len(data.Subjects) > 0 {
		subjects := make([]string, 0, len(data.Subjects))
		for _, s := range data.Subjects {
			if s.Name != "" {
				subjects = append(subjects, s.Name)
			}
		}
		rec.Categories = strings.Join(subjects, listSeparator)
	}
	if data.Cover != nil {
		rec.Thumbnail = data.Cover.Medium
	}
	if len(data.Ebooks) > 0 {
		rec.PreviewURL = data.Ebooks[0].PreviewURL
	}

	if key.Kind == KindISBN {
		if len(isbn10) == 0 && len(isbn13) == 0 {
			return nil, errors.NewMappingError(book.SourceOpenLibrary, key.String(), title, errors.ErrMissingIdentifier)
		}
		echoed := append(append([]string{}, isbn10...), isbn13...)
		if !containsEquivalent(echoed, key.Value) {
			return nil, errors.NewInconsistencyError(book.SourceOpenLibrary, key.Value, echoed)
		}
		rec.ISBN = key.Value
	}

	return rec, nil
}

// assembleTitle normalizes " :" to ":" and appends the subtitle as " - subtitle".
func assembleTitle(title, subtitle string) string {
	title = strings.ReplaceAll(title, " :", ":")
	if subtitle != "" {
		return title + " - " + subtitle
	}
	return title
}

func containsEquivalent(echoed []string, requested string) bool {
	for _, id := range echoed {
		if isbn.Equivalent(id, requested) {
			return true
		}
	}
	return false
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
