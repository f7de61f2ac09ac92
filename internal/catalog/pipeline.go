// Package catalog drives the batch reconciliation of the legacy catalog:
// every row is looked up on OpenLibrary and Google Books, merged with the
// legacy data in priority order and written to the local store.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lepinkainen/bookshelf/internal/datastore"
	"github.com/lepinkainen/bookshelf/internal/enrichment/book"
	"github.com/lepinkainen/bookshelf/internal/enrichment/openlibrary"
	"github.com/lepinkainen/bookshelf/internal/errors"
	"github.com/lepinkainen/bookshelf/internal/isbn"
	"github.com/lepinkainen/bookshelf/internal/legacy"
)

const (
	// DefaultSourceTimeout bounds every call to a networked source.
	DefaultSourceTimeout = 10 * time.Second

	legacyPriority = 3
	locationTable  = "location"
)

// Store is the persistence the pipeline needs.
type Store interface {
	Exists(ctx context.Context, key datastore.Key) (bool, error)
	Find(ctx context.Context, key datastore.Key) (*datastore.StoredBook, error)
	Insert(ctx context.Context, rec *book.Record, locationID int64) (int64, bool, error)
	UpdateFields(ctx context.Context, id int64, fields map[book.Field]string, locationID int64) error
}

// WorkSearcher finds OpenLibrary works by title and author and folds their
// editions into one record.
type WorkSearcher interface {
	Search(ctx context.Context, title, author string) ([]openlibrary.Work, error)
	WorkRecord(ctx context.Context, workOLID string) (*book.Record, error)
}

// Options configures a Pipeline.
type Options struct {
	Store Store

	// Locations maps shelf labels ("3", "2.5") to location row ids.
	Locations map[string]int64

	// Primary and Secondary are the ISBN sources, OpenLibrary and Google Books.
	// Either may be nil.
	Primary   book.Enricher
	Secondary book.Enricher

	// Search resolves rows without an ISBN. Nil disables the search.
	Search WorkSearcher

	// Selector picks a work among search candidates. Defaults to TitleMatcher.
	Selector WorkSelector

	// Update merges reconciled data into already stored rows instead of
	// skipping them.
	Update bool

	// SourceTimeout bounds each networked source call.
	SourceTimeout time.Duration

	// MaxEditions is the edition limit of Search.WorkRecord; the work fetch
	// gets one SourceTimeout per edition plus one for the listing.
	// Defaults to openlibrary.DefaultMaxEditions.
	MaxEditions int
}

// Pipeline reconciles legacy rows into the store. It is not safe for
// concurrent use; rows are processed strictly one after another.
type Pipeline struct {
	store     Store
	locations map[string]int64
	primary   book.Enricher
	secondary book.Enricher
	search    WorkSearcher
	selector  WorkSelector
	merger    book.Merger
	update    bool
	timeout   time.Duration
	editions  int
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	timeout := opts.SourceTimeout
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	editions := opts.MaxEditions
	if editions <= 0 {
		editions = openlibrary.DefaultMaxEditions
	}
	selector := opts.Selector
	if selector == nil {
		selector = TitleMatcher{}
	}
	return &Pipeline{
		store:     opts.Store,
		locations: opts.Locations,
		primary:   opts.Primary,
		secondary: opts.Secondary,
		search:    opts.Search,
		selector:  selector,
		merger:    book.NewPriorityMerger(),
		update:    opts.Update,
		timeout:   timeout,
		editions:  editions,
	}
}

// Run processes rows in order. Row-level failures are counted and logged;
// configuration errors, legacy mapping errors, a stop request and context
// cancellation end the batch and are returned with the summary so far.
func (p *Pipeline) Run(ctx context.Context, rows []legacy.Row) (*Summary, error) {
	summary := newSummary()

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := p.ProcessRow(ctx, row)
		if err != nil {
			slog.Error("Stopping batch", "row", row.String(), "error", err)
			return summary, fmt.Errorf("%s: %w", row, err)
		}
		summary.add(result)
		logResult(result)
	}

	return summary, nil
}

func logResult(r *Result) {
	switch r.Outcome {
	case OutcomeSkipped:
		slog.Info("Already cataloged", "row", r.Row.Line, "title", r.Row.Title)
	case OutcomeFailed:
		slog.Warn("Row failed", "row", r.Row.Line, "title", r.Row.Title, "source", r.Source, "error", r.Err)
	default:
		slog.Info("Book "+string(r.Outcome), "row", r.Row.Line, "title", r.Record.Title,
			"source", r.Source, "unresolved", r.Unresolved, "filled", len(r.Filled))
	}
}

// ProcessRow runs one row through the pipeline. The returned error is fatal
// for the batch; row-level failures are reported in Result.Err.
func (p *Pipeline) ProcessRow(ctx context.Context, row legacy.Row) (*Result, error) {
	result := &Result{Row: row}

	canonical := isbn.Canonical(row.ISBN)
	hasISBN := canonical != "" && isbn.IsValid(canonical)

	// Legacy data is mapped first: a malformed row halts the batch before
	// any network traffic is spent on it.
	legacyRec, err := legacy.Map(row)
	if err != nil {
		return nil, err
	}

	var key datastore.Key
	if hasISBN {
		key = datastore.Key{ISBN: canonical, ISBN10: canonical, ISBN13: canonical}
	} else {
		key = datastore.Key{Title: legacyRec.Title, Authors: legacyRec.Authors}
	}

	if key.IsIdentifier() || legacyRec.Authors != "" {
		exists, err := p.store.Exists(ctx, key)
		if err != nil {
			result.Outcome, result.Err = OutcomeFailed, err
			return result, nil
		}
		if exists && !p.update {
			result.Outcome = OutcomeSkipped
			return result, nil
		}
	}

	var results []book.EnricherResult
	if hasISBN {
		results, err = p.lookupISBN(ctx, canonical)
	} else {
		results, err = p.lookupWork(ctx, row, legacyRec)
	}
	if err != nil {
		return nil, err
	}
	result.Unresolved = len(results) == 0

	results = append(results, book.EnricherResult{Data: legacyRec, Source: book.SourceLegacy, Priority: legacyPriority})
	merged := p.merger.Merge(results)
	result.Record = merged.Record
	result.Filled = merged.Filled

	result.Source = merged.SourceOf(book.FieldTitle)
	if !hasISBN && result.Source == book.SourceLegacy {
		result.Source = book.SourceNoIdentifier
	}

	locationID, err := p.locationID(merged.Record.Location)
	if err != nil {
		return nil, err
	}

	if err := p.persist(ctx, result, locationID); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result.Outcome, result.Err = OutcomeFailed, err
	}
	return result, nil
}

// Reconcile looks an ISBN up on the networked sources without touching the
// store. It returns nil when no source knows the book.
func (p *Pipeline) Reconcile(ctx context.Context, value string) (*book.Merged, error) {
	canonical := isbn.Canonical(value)
	if !isbn.IsValid(canonical) {
		return nil, fmt.Errorf("%w: %q", book.ErrInvalidISBN, value)
	}

	results, err := p.lookupISBN(ctx, canonical)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return p.merger.Merge(results), nil
}

// lookupISBN queries the primary source and, only when it has nothing, the
// secondary one.
func (p *Pipeline) lookupISBN(ctx context.Context, canonical string) ([]book.EnricherResult, error) {
	var results []book.EnricherResult
	for _, src := range []book.Enricher{p.primary, p.secondary} {
		if src == nil {
			continue
		}
		rec, err := p.enrich(ctx, src, canonical)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			results = append(results, book.EnricherResult{Data: rec, Source: src.Name(), Priority: src.Priority()})
			break
		}
	}
	return results, nil
}

// enrich calls one source with a bounded timeout. Source failures degrade to
// "no data"; only cancellation of the batch context is returned.
func (p *Pipeline) enrich(ctx context.Context, src book.Enricher, canonical string) (*book.Record, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rec, err := src.Enrich(callCtx, canonical)
	if err == nil {
		return rec, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	switch {
	case errors.IsInconsistencyError(err), errors.IsMappingError(err):
		slog.Warn("Discarding source record", "source", src.Name(), "isbn", canonical, "error", err)
	case errors.IsRateLimitError(err):
		slog.Warn("Source rate limited", "source", src.Name(), "isbn", canonical, "error", err)
	default:
		slog.Debug("Source lookup failed", "source", src.Name(), "isbn", canonical, "error", err)
	}
	return nil, nil
}

// lookupWork resolves a row without ISBN through the OpenLibrary search.
func (p *Pipeline) lookupWork(ctx context.Context, row legacy.Row, legacyRec *book.Record) ([]book.EnricherResult, error) {
	if p.search == nil {
		return nil, nil
	}

	searchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	works, err := p.search.Search(searchCtx, legacyRec.Title, primaryAuthor(legacyRec.Authors))
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Debug("OpenLibrary search failed", "title", legacyRec.Title, "error", err)
		return nil, nil
	}
	if len(works) == 0 {
		return nil, nil
	}

	work, err := p.selector.SelectWork(row, works)
	if err != nil {
		return nil, err
	}
	if work == nil {
		slog.Debug("No matching work", "title", legacyRec.Title, "candidates", len(works))
		return nil, nil
	}

	workCtx, cancel := context.WithTimeout(ctx, p.workTimeout())
	defer cancel()
	rec, err := p.search.WorkRecord(workCtx, work.OLID())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Debug("Fetching work editions failed", "work", work.OLID(), "error", err)
		return nil, nil
	}
	if rec == nil {
		return nil, nil
	}
	return []book.EnricherResult{{Data: rec, Source: book.SourceOpenLibrary, Priority: 1}}, nil
}

// workTimeout is the budget for fetching a work: every edition is a separate
// request, as is the edition listing.
func (p *Pipeline) workTimeout() time.Duration {
	return p.timeout * time.Duration(p.editions+1)
}

// primaryAuthor returns the first of a list of authors.
func primaryAuthor(authors string) string {
	head, _, _ := strings.Cut(authors, ";")
	head, _, _ = strings.Cut(head, " & ")
	return strings.TrimSpace(head)
}

// locationID remaps a shelf label to its location row id.
func (p *Pipeline) locationID(label string) (int64, error) {
	id, ok := p.locations[label]
	if !ok {
		return 0, errors.NewConfigurationError(locationTable, label)
	}
	return id, nil
}

func (p *Pipeline) persist(ctx context.Context, result *Result, locationID int64) error {
	rec := result.Record

	if key := datastore.KeyFor(rec); p.update && (key.IsIdentifier() || key.Authors != "") {
		stored, err := p.store.Find(ctx, key)
		if err != nil {
			return err
		}
		if stored != nil {
			return p.updateStored(ctx, result, stored)
		}
	}

	_, inserted, err := p.store.Insert(ctx, rec, locationID)
	if err != nil {
		return err
	}
	if inserted {
		result.Outcome = OutcomeCataloged
	} else {
		result.Outcome = OutcomeSkipped
	}
	return nil
}

// updateStored fills the stored row's empty fields from the reconciled record.
func (p *Pipeline) updateStored(ctx context.Context, result *Result, stored *datastore.StoredBook) error {
	merged, filled := book.Merge(&stored.Record, result.Record)
	result.Record = merged
	result.Filled = filled

	if len(filled) == 0 {
		result.Outcome = OutcomeSkipped
		return nil
	}

	var locationID int64
	if label, ok := filled[book.FieldLocation]; ok {
		id, err := p.locationID(label)
		if err != nil {
			return err
		}
		locationID = id
	}

	if err := p.store.UpdateFields(ctx, stored.ID, filled, locationID); err != nil {
		return err
	}
	result.Outcome = OutcomeUpdated
	return nil
}
