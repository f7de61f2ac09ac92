package catalog

import (
	"strings"
	"unicode"

	"github.com/lepinkainen/bookshelf/internal/enrichment/openlibrary"
	"github.com/lepinkainen/bookshelf/internal/legacy"
)

// WorkSelector picks the OpenLibrary work that matches a legacy row. It
// returns nil when none of the candidates is the book. Returning a
// StopProcessingError ends the batch.
type WorkSelector interface {
	SelectWork(row legacy.Row, candidates []openlibrary.Work) (*openlibrary.Work, error)
}

// TitleMatcher selects the first work whose title equals the row title,
// ignoring case, punctuation and spacing. A legacy title of the form
// "Title - Subtitle" also matches a work titled "Title".
type TitleMatcher struct{}

// SelectWork implements WorkSelector.
func (TitleMatcher) SelectWork(row legacy.Row, candidates []openlibrary.Work) (*openlibrary.Work, error) {
	want := normalizeTitle(row.Title)
	short := want
	if head, _, ok := strings.Cut(row.Title, " - "); ok {
		short = normalizeTitle(head)
	}

	for i := range candidates {
		got := normalizeTitle(candidates[i].Title)
		if got != "" && (got == want || got == short) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

func normalizeTitle(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}
