package datastore

import "github.com/lepinkainen/bookshelf/internal/enrichment/book"

// LocationSchema defines the shelf location lookup table.
const LocationSchema = `
CREATE TABLE IF NOT EXISTS location (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	label_name TEXT NOT NULL UNIQUE,
	full_name TEXT
);
`

// BookSchema defines the catalog table. Text columns default to '' so that
// empty and unknown read the same.
const BookSchema = `
CREATE TABLE IF NOT EXISTS book (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	isbn TEXT NOT NULL DEFAULT '',
	isbn_10 TEXT NOT NULL DEFAULT '',
	isbn_13 TEXT NOT NULL DEFAULT '',
	olid TEXT NOT NULL DEFAULT '',
	goodreads TEXT NOT NULL DEFAULT '',
	lccn TEXT NOT NULL DEFAULT '',
	oclc TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL,
	authors TEXT NOT NULL,
	publisher TEXT NOT NULL DEFAULT '',
	publish_date TEXT NOT NULL DEFAULT '',
	number_of_pages TEXT NOT NULL DEFAULT '',
	subjects TEXT NOT NULL DEFAULT '',
	openlibrary_medcover_url TEXT NOT NULL DEFAULT '',
	location INTEGER REFERENCES location(id),
	language TEXT NOT NULL DEFAULT '',
	openlibrary_preview_url TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	in_lib INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_book_isbn ON book(isbn);
CREATE INDEX IF NOT EXISTS idx_book_title_authors ON book(title, authors);
`

// AllSchemas lists the catalog tables in creation order.
var AllSchemas = []string{LocationSchema, BookSchema}

// bookColumns maps every canonical text field to its book column. Location is
// stored as a foreign key and handled separately.
var bookColumns = map[book.Field]string{
	book.FieldISBN:        "isbn",
	book.FieldISBN10:      "isbn_10",
	book.FieldISBN13:      "isbn_13",
	book.FieldOLID:        "olid",
	book.FieldGoodreads:   "goodreads",
	book.FieldLCCN:        "lccn",
	book.FieldOCLC:        "oclc",
	book.FieldTitle:       "title",
	book.FieldAuthors:     "authors",
	book.FieldPublisher:   "publisher",
	book.FieldYear:        "publish_date",
	book.FieldPages:       "number_of_pages",
	book.FieldCategories:  "subjects",
	book.FieldThumbnail:   "openlibrary_medcover_url",
	book.FieldLanguage:    "language",
	book.FieldPreviewURL:  "openlibrary_preview_url",
	book.FieldDescription: "description",
}

// textFields is bookColumns in storage order.
var textFields = func() []book.Field {
	fields := make([]book.Field, 0, len(bookColumns))
	for _, f := range book.AllFields {
		if _, ok := bookColumns[f]; ok {
			fields = append(fields, f)
		}
	}
	return fields
}()
