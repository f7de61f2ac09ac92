package datastore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lepinkainen/bookshelf/internal/isbn"
)

type idValue struct {
	id    int64
	value string
}

func (s *SQLiteStore) selectIDValues(ctx context.Context, query string) ([]idValue, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []idValue
	for rows.Next() {
		var iv idValue
		if err := rows.Scan(&iv.id, &iv.value); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// BackfillISBN10 copies a valid isbn into an empty isbn_10 column. Returns
// the number of rows updated.
func (s *SQLiteStore) BackfillISBN10(ctx context.Context) (int, error) {
	candidates, err := s.selectIDValues(ctx, "SELECT id, isbn FROM book WHERE isbn_10 = '' AND isbn != ''")
	if err != nil {
		return 0, fmt.Errorf("selecting isbn_10 candidates: %w", err)
	}

	updated := 0
	for _, c := range candidates {
		if !isbn.IsISBN10(isbn.Canonical(c.value)) {
			slog.Warn("Not a valid ISBN-10, skipping", "id", c.id, "isbn", c.value)
			continue
		}
		if err := s.execOne(ctx, "UPDATE book SET isbn_10 = ? WHERE id = ?", c.value, c.id); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// BackfillISBN13 computes isbn_13 from every "; "-separated value of isbn_10
// when isbn_13 is empty. Returns the number of rows updated.
func (s *SQLiteStore) BackfillISBN13(ctx context.Context) (int, error) {
	candidates, err := s.selectIDValues(ctx, "SELECT id, isbn_10 FROM book WHERE isbn_13 = '' AND isbn_10 != ''")
	if err != nil {
		return 0, fmt.Errorf("selecting isbn_13 candidates: %w", err)
	}

	updated := 0
	for _, c := range candidates {
		var converted []string
		for _, v := range strings.Split(c.value, "; ") {
			isbn13 := isbn.ToISBN13(v)
			if isbn13 == "" {
				slog.Warn("Not a valid ISBN-10, skipping", "id", c.id, "isbn_10", v)
				continue
			}
			converted = append(converted, isbn13)
		}
		if len(converted) == 0 {
			continue
		}
		if err := s.execOne(ctx, "UPDATE book SET isbn_13 = ? WHERE id = ?", strings.Join(converted, "; "), c.id); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}
