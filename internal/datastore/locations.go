package datastore

import (
	"context"
	"fmt"
)

// Location is one row of the location table.
type Location struct {
	ID       int64
	Label    string
	FullName string
}

// InitLocations inserts every location whose label is not yet stored and
// returns how many were added. Existing rows keep their ids.
func (s *SQLiteStore) InitLocations(ctx context.Context, locs []Location) (int, error) {
	existing, err := s.LocationIDs(ctx)
	if err != nil {
		return 0, err
	}

	var records []map[string]any
	for _, l := range locs {
		if _, ok := existing[l.Label]; ok {
			continue
		}
		existing[l.Label] = 0
		records = append(records, map[string]any{"label_name": l.Label, "full_name": l.FullName})
	}

	if err := s.BatchInsert("", "location", records); err != nil {
		return 0, fmt.Errorf("populating locations: %w", err)
	}
	return len(records), nil
}

// Locations returns the location table ordered by id.
func (s *SQLiteStore) Locations(ctx context.Context) ([]Location, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, label_name, COALESCE(full_name, '') FROM location ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var locs []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Label, &l.FullName); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		locs = append(locs, l)
	}
	return locs, rows.Err()
}

// LocationIDs returns the label → row id map used to remap shelf labels.
func (s *SQLiteStore) LocationIDs(ctx context.Context) (map[string]int64, error) {
	locs, err := s.Locations(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(locs))
	for _, l := range locs {
		ids[l.Label] = l.ID
	}
	return ids, nil
}
