package book

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergePrefersPrimary(t *testing.T) {
	primary := &Record{ISBN: "9780143127741", Title: "Sapiens", Authors: "Yuval Noah Harari", Publisher: ""}
	fallback := &Record{Title: "Sapiens - A Brief History", Publisher: "Harper", Year: "2015", Location: "5"}

	merged, filled := Merge(primary, fallback)

	want := &Record{
		ISBN:      "9780143127741",
		Title:     "Sapiens",
		Authors:   "Yuval Noah Harari",
		Publisher: "Harper",
		Year:      "2015",
		Location:  "5",
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged record mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[Field]string{
		FieldPublisher: "Harper",
		FieldYear:      "2015",
		FieldLocation:  "5",
	}, filled)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	primary := &Record{Title: "Kept"}
	fallback := &Record{Authors: "Someone", Title: "Ignored"}
	primaryCopy, fallbackCopy := *primary, *fallback

	merged, _ := Merge(primary, fallback)
	merged.Title = "changed"

	assert.Equal(t, primaryCopy, *primary)
	assert.Equal(t, fallbackCopy, *fallback)
}

func TestMergeNilInputs(t *testing.T) {
	merged, filled := Merge(nil, &Record{Title: "Only"})
	assert.Equal(t, "Only", merged.Title)
	assert.Equal(t, map[Field]string{FieldTitle: "Only"}, filled)

	merged, filled = Merge(&Record{Title: "Alone"}, nil)
	assert.Equal(t, "Alone", merged.Title)
	assert.Empty(t, filled)
}

// Every field in isolation, every empty/non-empty combination of three records.
func TestMergeLeftFoldPrecedence(t *testing.T) {
	values := []string{"", "v"}
	for _, f := range AllFields {
		for _, a := range values {
			for _, b := range values {
				for _, c := range values {
					ra, rb, rc := &Record{}, &Record{}, &Record{}
					if a != "" {
						ra.Set(f, "a")
					}
					if b != "" {
						rb.Set(f, "b")
					}
					if c != "" {
						rc.Set(f, "c")
					}

					ab, filledAB := Merge(ra, rb)
					abc, filledABC := Merge(ab, rc)

					want := ""
					switch {
					case a != "":
						want = "a"
					case b != "":
						want = "b"
					case c != "":
						want = "c"
					}
					require.Equal(t, want, abc.Get(f), "field %s a=%q b=%q c=%q", f, a, b, c)

					_, inAB := filledAB[f]
					assert.Equal(t, a == "" && b != "", inAB, "filled(a,b) for %s", f)
					_, inABC := filledABC[f]
					assert.Equal(t, a == "" && b == "" && c != "", inABC, "filled(ab,c) for %s", f)
				}
			}
		}
	}
}

func TestPriorityMergerOrdersByPriority(t *testing.T) {
	merger := NewPriorityMerger()

	results := []EnricherResult{
		{Source: SourceLegacy, Priority: 3, Data: &Record{Title: "DBKK title", Authors: "A", Location: "2.5"}},
		{Source: SourceGoogleBooks, Priority: 2, Data: &Record{Title: "Google title", Publisher: "Pub"}},
		{Source: SourceOpenLibrary, Priority: 1, Data: &Record{Title: "OL title"}},
	}

	merged := merger.Merge(results)
	require.NotNil(t, merged)

	assert.Equal(t, "OL title", merged.Record.Title)
	assert.Equal(t, "Pub", merged.Record.Publisher)
	assert.Equal(t, "A", merged.Record.Authors)
	assert.Equal(t, "2.5", merged.Record.Location)

	assert.Equal(t, SourceOpenLibrary, merged.SourceOf(FieldTitle))
	assert.Equal(t, SourceGoogleBooks, merged.SourceOf(FieldPublisher))
	assert.Equal(t, SourceLegacy, merged.SourceOf(FieldLocation))

	assert.Equal(t, map[Field]string{
		FieldPublisher: "Pub",
		FieldAuthors:   "A",
		FieldLocation:  "2.5",
	}, merged.Filled)

	// Input order is untouched.
	assert.Equal(t, SourceLegacy, results[0].Source)
}

func TestPriorityMergerSkipsMissingData(t *testing.T) {
	merged := NewPriorityMerger().Merge([]EnricherResult{
		{Source: SourceOpenLibrary, Priority: 1},
		{Source: SourceLegacy, Priority: 3, Data: &Record{Title: "Fallback", Authors: "B"}},
	})

	assert.Equal(t, "Fallback", merged.Record.Title)
	assert.Equal(t, SourceLegacy, merged.SourceOf(FieldTitle))
	assert.Empty(t, merged.Filled)
}

func TestPriorityMergerEmpty(t *testing.T) {
	merged := NewPriorityMerger().Merge(nil)
	require.NotNil(t, merged)
	assert.True(t, merged.Record.IsEmpty())
	assert.Equal(t, "", merged.SourceOf(FieldTitle))
}
