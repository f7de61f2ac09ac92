package catalog

import (
	"github.com/lepinkainen/bookshelf/internal/enrichment/book"
	"github.com/lepinkainen/bookshelf/internal/legacy"
)

// Outcome is what happened to one legacy row.
type Outcome string

const (
	OutcomeCataloged Outcome = "cataloged"
	OutcomeUpdated   Outcome = "updated"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Result reports the handling of one row.
type Result struct {
	Row     legacy.Row
	Outcome Outcome

	// Source names the source that supplied the title, or "no identifier".
	Source string

	// Record is the reconciled record, nil for skipped rows.
	Record *book.Record

	// Filled lists the fields a lower-priority source supplied. In update
	// mode it lists the fields written to the stored row.
	Filled map[book.Field]string

	// Unresolved is set when no networked source knew the book.
	Unresolved bool

	// Err is the row-level error of a failed row.
	Err error
}

// Unresolved is a row no networked source could resolve.
type Unresolved struct {
	Row    legacy.Row `json:"row"`
	Reason string     `json:"reason"`
}

// Summary aggregates the results of a batch.
type Summary struct {
	Processed  int            `json:"processed"`
	Cataloged  int            `json:"cataloged"`
	Updated    int            `json:"updated"`
	Skipped    int            `json:"skipped"`
	Failed     int            `json:"failed"`
	BySource   map[string]int `json:"by_source"`
	Unresolved []Unresolved   `json:"unresolved,omitempty"`
}

func newSummary() *Summary {
	return &Summary{BySource: make(map[string]int)}
}

func (s *Summary) add(r *Result) {
	s.Processed++
	switch r.Outcome {
	case OutcomeCataloged:
		s.Cataloged++
	case OutcomeUpdated:
		s.Updated++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
	if r.Source != "" && r.Outcome != OutcomeSkipped {
		s.BySource[r.Source]++
	}
	if r.Unresolved {
		reason := "no data from OpenLibrary or Google Books"
		if r.Source == book.SourceNoIdentifier {
			reason = "no ISBN and no matching OpenLibrary work"
		}
		s.Unresolved = append(s.Unresolved, Unresolved{Row: r.Row, Reason: reason})
	}
}
