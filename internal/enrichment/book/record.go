package book

// Field names a column of the canonical record. The string values double as
// the keys reported in a merge's filled map and as JSON/YAML keys.
type Field string

const (
	FieldISBN        Field = "isbn"
	FieldISBN10      Field = "isbn_10"
	FieldISBN13      Field = "isbn_13"
	FieldOLID        Field = "olid"
	FieldGoodreads   Field = "goodreads"
	FieldLCCN        Field = "lccn"
	FieldOCLC        Field = "oclc"
	FieldTitle       Field = "title"
	FieldAuthors     Field = "authors"
	FieldPublisher   Field = "publisher"
	FieldYear        Field = "year"
	FieldLanguage    Field = "language"
	FieldPages       Field = "pages"
	FieldCategories  Field = "categories"
	FieldDescription Field = "description"
	FieldThumbnail   Field = "thumbnail"
	FieldPreviewURL  Field = "preview_url"
	FieldLocation    Field = "location"
)

// AllFields lists every canonical field in storage column order.
var AllFields = []Field{
	FieldISBN, FieldISBN10, FieldISBN13, FieldOLID, FieldGoodreads, FieldLCCN, FieldOCLC,
	FieldTitle, FieldAuthors, FieldPublisher, FieldYear, FieldPages, FieldCategories,
	FieldThumbnail, FieldLocation, FieldLanguage, FieldPreviewURL, FieldDescription,
}

// Record is the canonical book shape every source maps into. An empty string
// means the source had nothing for that field.
type Record struct {
	ISBN        string `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	ISBN10      string `json:"isbn_10,omitempty" yaml:"isbn_10,omitempty"`
	ISBN13      string `json:"isbn_13,omitempty" yaml:"isbn_13,omitempty"`
	OLID        string `json:"olid,omitempty" yaml:"olid,omitempty"`
	Goodreads   string `json:"goodreads,omitempty" yaml:"goodreads,omitempty"`
	LCCN        string `json:"lccn,omitempty" yaml:"lccn,omitempty"`
	OCLC        string `json:"oclc,omitempty" yaml:"oclc,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Authors     string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Publisher   string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Year        string `json:"year,omitempty" yaml:"year,omitempty"`
	Language    string `json:"language,omitempty" yaml:"language,omitempty"`
	Pages       string `json:"pages,omitempty" yaml:"pages,omitempty"`
	Categories  string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	PreviewURL  string `json:"preview_url,omitempty" yaml:"preview_url,omitempty"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty"`
}

// Get returns the value of f.
func (r *Record) Get(f Field) string {
	if p := r.ptr(f); p != nil {
		return *p
	}
	return ""
}

// Set assigns v to f. Unknown fields are ignored.
func (r *Record) Set(f Field, v string) {
	if p := r.ptr(f); p != nil {
		*p = v
	}
}

// IsEmpty reports whether every field is empty.
func (r *Record) IsEmpty() bool {
	if r == nil {
		return true
	}
	for _, f := range AllFields {
		if r.Get(f) != "" {
			return false
		}
	}
	return true
}

// HasIdentifier reports whether any ISBN column is populated.
func (r *Record) HasIdentifier() bool {
	return r.ISBN != "" || r.ISBN10 != "" || r.ISBN13 != ""
}

func (r *Record) ptr(f Field) *string {
	switch f {
	case FieldISBN:
		return &r.ISBN
	case FieldISBN10:
		return &r.ISBN10
	case FieldISBN13:
		return &r.ISBN13
	case FieldOLID:
		return &r.OLID
	case FieldGoodreads:
		return &r.Goodreads
	case FieldLCCN:
		return &r.LCCN
	case FieldOCLC:
		return &r.OCLC
	case FieldTitle:
		return &r.Title
	case FieldAuthors:
		return &r.Authors
	case FieldPublisher:
		return &r.Publisher
	case FieldYear:
		return &r.Year
	case FieldLanguage:
		return &r.Language
	case FieldPages:
		return &r.Pages
	case FieldCategories:
		return &r.Categories
	case FieldDescription:
		return &r.Description
	case FieldThumbnail:
		return &r.Thumbnail
	case FieldPreviewURL:
		return &r.PreviewURL
	case FieldLocation:
		return &r.Location
	}
	return nil
}
