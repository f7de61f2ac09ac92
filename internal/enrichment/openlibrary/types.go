package openlibrary

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the identifier namespace of a bibkey lookup.
type Kind string

const (
	KindISBN Kind = "ISBN"
	KindOLID Kind = "OLID"
	KindLCCN Kind = "LCCN"
	KindOCLC Kind = "OCLC"
)

// BibKey addresses one record of the books API, e.g. ISBN:9780143127741.
type BibKey struct {
	Kind  Kind
	Value string
}

func (k BibKey) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, k.Value)
}

// ParseBibKey parses "KIND:value". Kind matching is case-insensitive.
func ParseBibKey(s string) (BibKey, error) {
	kind, value, ok := strings.Cut(s, ":")
	if !ok || value == "" {
		return BibKey{}, fmt.Errorf("malformed bibkey %q", s)
	}
	k := Kind(strings.ToUpper(strings.TrimSpace(kind)))
	switch k {
	case KindISBN, KindOLID, KindLCCN, KindOCLC:
		return BibKey{Kind: k, Value: strings.TrimSpace(value)}, nil
	}
	return BibKey{}, fmt.Errorf("unsupported bibkey kind %q", kind)
}

type namedRef struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type cover struct {
	Small  string `json:"small,omitempty"`
	Medium string `json:"medium,omitempty"`
	Large  string `json:"large,omitempty"`
}

type ebook struct {
	PreviewURL   string `json:"preview_url"`
	Availability string `json:"availability,omitempty"`
}

// description is either a bare string or {"type": ..., "value": ...}.
type description string

func (d *description) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = description(s)
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("description: %w", err)
	}
	*d = description(obj.Value)
	return nil
}

// BookData is one entry of the books API answered with jscmd=data.
type BookData struct {
	Key           string              `json:"key"`
	Title         string              `json:"title"`
	Subtitle      string              `json:"subtitle,omitempty"`
	Authors       []namedRef          `json:"authors,omitempty"`
	Publishers    []namedRef          `json:"publishers,omitempty"`
	PublishDate   string              `json:"publish_date,omitempty"`
	NumberOfPages int                 `json:"number_of_pages,omitempty"`
	Subjects      []namedRef          `json:"subjects,omitempty"`
	Identifiers   map[string][]string `json:"identifiers,omitempty"`
	Cover         *cover              `json:"cover,omitempty"`
	Ebooks        []ebook             `json:"ebooks,omitempty"`
	Language      string              `json:"language,omitempty"`
	Description   description         `json:"description,omitempty"`
}

// booksResponse is keyed by the requested bibkey.
type booksResponse map[string]BookData

// Work is one hit of search.json.
type Work struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name,omitempty"`
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
	EditionCount     int      `json:"edition_count,omitempty"`
}

// OLID returns the bare work id, e.g. OL17930368W.
func (w Work) OLID() string {
	return strings.TrimPrefix(w.Key, "/works/")
}

// Author returns the first listed author or "".
func (w Work) Author() string {
	if len(w.AuthorName) == 0 {
		return ""
	}
	return w.AuthorName[0]
}

type searchResponse struct {
	NumFound int    `json:"numFound"`
	Docs     []Work `json:"docs"`
}

type editionsResponse struct {
	Size    int `json:"size"`
	Entries []struct {
		Key string `json:"key"`
	} `json:"entries"`
}

// cachedBook wraps a books API entry for the response cache.
type cachedBook struct {
	Data     *BookData `json:"data"`
	NotFound bool      `json:"not_found"`
}

type cachedSearch struct {
	Works []Work `json:"works"`
}

type cachedEditions struct {
	OLIDs []string `json:"olids"`
}
