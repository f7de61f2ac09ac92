// Package book defines the canonical book record, the merge rules used to
// reconcile records from several sources, and the Enricher contract that
// every networked source implements.
package book

import (
	"context"
)

// Source names used for provenance reporting.
const (
	SourceOpenLibrary  = "OpenLibrary"
	SourceGoogleBooks  = "Google Books"
	SourceLegacy       = "DBKK"
	SourceNoIdentifier = "no identifier"
)

// Enricher defines the interface for fetching book information from external sources.
// Each implementation should handle its own rate limiting, caching and mapping to
// the canonical Record.
type Enricher interface {
	// Name returns the human-readable name of the source (e.g., "OpenLibrary").
	Name() string

	// Priority returns the priority when merging data. Lower values indicate
	// higher priority.
	Priority() int

	// Ping tests the connection to the source and returns an error if it
	// cannot be reached for whatever reason.
	Ping(ctx context.Context) error

	// Enrich retrieves book information using the provided ISBN.
	// Returns nil, nil if book not found (allows other enrichers to try).
	// Returns a MappingError or InconsistencyError when the source answered
	// with a record that cannot be used, and a plain error for transport failures.
	Enrich(ctx context.Context, isbn string) (*Record, error)
}
