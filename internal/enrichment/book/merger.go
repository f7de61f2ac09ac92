package book

import (
	"sort"
)

// Merge combines two canonical records. Every field that is empty in primary
// takes fallback's value; filled reports exactly those fields whose value came
// from fallback. Neither input is modified.
func Merge(primary, fallback *Record) (*Record, map[Field]string) {
	merged := &Record{}
	if primary != nil {
		*merged = *primary
	}
	filled := make(map[Field]string)
	if fallback == nil {
		return merged, filled
	}

	for _, f := range AllFields {
		v := fallback.Get(f)
		if v == "" || merged.Get(f) != "" {
			continue
		}
		merged.Set(f, v)
		filled[f] = v
	}
	return merged, filled
}

// Merged is the outcome of folding several source results together.
type Merged struct {
	// Record is the reconciled canonical record.
	Record *Record

	// Filled holds the fields supplied by any source after the first non-empty one.
	Filled map[Field]string

	// Sources maps each populated field to the name of the source that supplied it.
	Sources map[Field]string
}

// SourceOf returns the name of the source that supplied f, or "".
func (m *Merged) SourceOf(f Field) string {
	if m == nil {
		return ""
	}
	return m.Sources[f]
}

// Merger defines the interface for merging book information from multiple sources.
type Merger interface {
	// Merge folds results together so that the highest-precedence non-empty
	// value wins for every field.
	Merge(results []EnricherResult) *Merged
}

// PriorityMerger implements Merger as a left fold over results ordered by
// priority (lower value = higher precedence). Results with equal priority keep
// their input order.
type PriorityMerger struct{}

// NewPriorityMerger creates a new PriorityMerger.
func NewPriorityMerger() *PriorityMerger {
	return &PriorityMerger{}
}

// Merge combines results into one record: merge(merge(a, b), c) in priority order.
func (m *PriorityMerger) Merge(results []EnricherResult) *Merged {
	ordered := make([]EnricherResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	out := &Merged{
		Record:  &Record{},
		Filled:  make(map[Field]string),
		Sources: make(map[Field]string),
	}

	first := true
	for _, result := range ordered {
		if result.Data == nil {
			continue
		}

		merged, filled := Merge(out.Record, result.Data)
		for f, v := range filled {
			out.Sources[f] = result.Source
			if !first {
				out.Filled[f] = v
			}
		}
		out.Record = merged
		first = false
	}

	return out
}
