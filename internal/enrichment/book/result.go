package book

// EnricherResult represents the data fetched from a single source.
type EnricherResult struct {
	// Data is the canonical record produced by the source's mapper.
	// May be nil if the book was not found.
	Data *Record

	// Source is the human-readable name of the source.
	Source string

	// Priority is the priority of the source when merging data.
	Priority int
}
