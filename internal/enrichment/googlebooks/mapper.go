package googlebooks

import (
	stdErrors "errors"
	"strconv"
	"strings"

	"github.com/lepinkainen/bookshelf/internal/enrichment/book"
	"github.com/lepinkainen/bookshelf/internal/errors"
	"github.com/lepinkainen/bookshelf/internal/isbn"
)

const listSeparator = " ;"

var (
	errNoTitle   = stdErrors.New("missing title")
	errNoAuthors = stdErrors.New("missing authors")
)

// Identifiers flattens industryIdentifiers into lower-cased type keys, e.g.
// {"isbn_10": ["0261102214"], "isbn_13": ["9780261102217"]}.
func Identifiers(ids []IndustryIdentifier) map[string][]string {
	out := make(map[string][]string, len(ids))
	for _, id := range ids {
		if id.Type == "" || id.Identifier == "" {
			continue
		}
		key := strings.ToLower(id.Type)
		out[key] = append(out[key], id.Identifier)
	}
	return out
}

// MapVolume converts a volumeInfo looked up by requested into a canonical record.
func MapVolume(requested string, info *VolumeInfo) (*book.Record, error) {
	if info == nil {
		return nil, nil
	}

	if strings.TrimSpace(info.Title) == "" {
		return nil, errors.NewMappingError(book.SourceGoogleBooks, requested, "", errNoTitle)
	}
	title := strings.ReplaceAll(info.Title, " :", ":")
	if info.Subtitle != "" {
		title = title + " - " + info.Subtitle
	}
	if len(info.Authors) == 0 {
		return nil, errors.NewMappingError(book.SourceGoogleBooks, requested, title, errNoAuthors)
	}

	ids := Identifiers(info.IndustryIdentifiers)
	isbn10, isbn13 := ids["isbn_10"], ids["isbn_13"]
	if len(isbn10) == 0 && len(isbn13) == 0 {
		return nil, errors.NewMappingError(book.SourceGoogleBooks, requested, title, errors.ErrMissingIdentifier)
	}

	echoed := append(append([]string{}, isbn10...), isbn13...)
	consistent := false
	for _, id := range echoed {
		if isbn.Equivalent(id, requested) {
			consistent = true
			break
		}
	}
	if !consistent {
		return nil, errors.NewInconsistencyError(book.SourceGoogleBooks, requested, echoed)
	}

	rec := &book.Record{
		ISBN:        requested,
		ISBN10:      strings.Join(isbn10, "; "),
		ISBN13:      strings.Join(isbn13, "; "),
		Title:       title,
		Authors:     strings.Join(info.Authors, listSeparator),
		Publisher:   strings.Trim(info.Publisher, `"`),
		Language:    info.Language,
		Categories:  strings.Join(info.Categories, listSeparator),
		Description: info.Description,
		PreviewURL:  info.PreviewLink,
		Year:        book.ExtractYear(info.PublishedDate),
	}
	if info.PageCount > 0 {
		rec.Pages = strconv.Itoa(info.PageCount)
	}
	if info.ImageLinks != nil {
		rec.Thumbnail = info.ImageLinks.Thumbnail
	}
	if oclc := ids["oclc"]; len(oclc) > 0 {
		rec.OCLC = oclc[0]
	}
	return rec, nil
}
